package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/matzehuels/pkgnorm/pkg/errors"
)

// DecodeArray streams the elements of a top-level JSON array from r,
// calling fn with each element's 1-based index. The whole document is never
// held in memory at once.
func DecodeArray[T any](ctx context.Context, r io.Reader, fn func(index int, v *T) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read opening bracket")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errors.New(errors.ErrCodeInvalidInput, "expected a JSON array, got %v", tok)
	}

	for i := 1; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode element %d", i)
		}
		if err := fn(i, &v); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read closing bracket")
	}
	return nil
}

// DecodeLines streams line-delimited JSON values from r, calling fn with
// each value's 1-based position.
func DecodeLines[T any](ctx context.Context, r io.Reader, fn func(line int, v *T) error) error {
	dec := json.NewDecoder(r)
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var v T
		err := dec.Decode(&v)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode record %d", i)
		}
		if err := fn(i, &v); err != nil {
			return err
		}
	}
}

// FirstEntry returns the key and raw value of the first member of a JSON
// object in document order. It reports ok=false when raw is not an object
// or the object is empty.
func FirstEntry(raw json.RawMessage) (key string, value json.RawMessage, ok bool) {
	if len(raw) == 0 {
		return "", nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", nil, false
	}
	if d, isDelim := tok.(json.Delim); !isDelim || d != '{' {
		return "", nil, false
	}
	if !dec.More() {
		return "", nil, false
	}
	tok, err = dec.Token()
	if err != nil {
		return "", nil, false
	}
	key, _ = tok.(string)
	if err := dec.Decode(&value); err != nil {
		return "", nil, false
	}
	return key, value, true
}
