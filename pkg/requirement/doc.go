// Package requirement extracts package names and version constraints from
// free-text dependency declarations.
//
// # Overview
//
// Registry metadata such as PyPI's requires_dist carries dependencies as
// loosely formatted strings:
//
//	requests (>=2.0,<3.0); extra == 'http'
//	idna
//	colorama; sys_platform == "win32"
//
// There is no fixed grammar to rely on, so extraction is deliberately
// lenient. [Name] keeps everything before the first "(" and then before the
// first ";". [Constraint] returns the text of the first parenthesized clause
// or [DefaultConstraint] when none is present. Neither function validates
// constraint syntax.
//
// # Extras
//
// Declarations that mention "extra" anywhere are optional installs. [Parse]
// discards them when asked to, before any extraction runs:
//
//	dep, ok := requirement.Parse("pytest (>=7); extra == 'test'", true)
//	// ok == false
//
//	dep, ok = requirement.Parse("urllib3 (<3,>=1.21.1)", true)
//	// dep == Dependency{Name: "urllib3", Constraint: "<3,>=1.21.1"}, ok == true
package requirement
