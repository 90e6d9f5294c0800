// Package io reads and writes normalized package documents.
//
// # JSON Format
//
// Every source adapter produces the same document shape:
//
//	{
//	  "pkgs": [
//	    {
//	      "name": "requests",
//	      "versions": {
//	        "2.31.0": {
//	          "timestamp": "2023-05-22T15:12:42+00:00",
//	          "dependencies": {"idna": "<4,>=2.5", "certifi": ">=2017.4.17"}
//	        }
//	      }
//	    }
//	  ]
//	}
//
// Packages keep the order in which the normalizer first saw them. Version and
// dependency maps are written with sorted keys, so the same input always
// produces the same bytes. HTML escaping is disabled so constraints such as
// "<4,>=2" are written literally.
//
// # Legacy Format
//
// Older exports of the registry cache were written as a bare array of
// packages without the "pkgs" wrapper. [ReadDocument] accepts both shapes and
// reports which one it saw; [WriteDocument] only writes the wrapped shape.
//
// # Import
//
// Use [ImportDocument] to read a document from a file path, or
// [ReadDocument] to read from any io.Reader:
//
//	doc, format, err := io.ImportDocument("data/output/bq_results.json")
//
// # Export
//
// Use [ExportDocument] to write a document to a file, or [WriteDocument] to
// write to any io.Writer:
//
//	err := io.ExportDocument(doc, "data/output/bq_results.json")
//
// ExportDocument writes to a temporary file in the target directory and
// renames it into place, so a failed run never leaves a truncated document.
package io
