// Package timestamp converts source upload times into one canonical
// ISO-8601 form with a fixed UTC offset.
//
// Every conversion takes an explicit *time.Location so that output does not
// depend on the timezone of the machine running the job. A nil location
// means UTC.
package timestamp

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/pkgnorm/pkg/errors"
)

// Source layouts accepted by [ParseQuery], tried in order.
const (
	LayoutQueryFractional = "2006-01-02 15:04:05.999999 MST"
	LayoutQuery           = "2006-01-02 15:04:05 MST"
)

// LayoutRelease is the zone-less layout of registry release upload times.
const LayoutRelease = "2006-01-02T15:04:05"

const (
	layoutCanonical      = "2006-01-02T15:04:05-07:00"
	layoutCanonicalMicro = "2006-01-02T15:04:05.000000-07:00"
)

// Format renders t in loc as "YYYY-MM-DDTHH:MM:SS[.ffffff]±HH:MM".
// Microseconds are printed only when non-zero; sub-microsecond precision is
// truncated.
func Format(t time.Time, loc *time.Location) string {
	t = t.In(orUTC(loc)).Truncate(time.Microsecond)
	if t.Nanosecond() != 0 {
		return t.Format(layoutCanonicalMicro)
	}
	return t.Format(layoutCanonical)
}

// ParseQuery parses a bulk query timestamp such as
// "2023-01-01 12:30:00.123456 UTC" or "2023-01-01 12:30:00 UTC".
// The fractional-second form is tried first. The value is an instant: it is
// converted to loc, not reinterpreted in it.
//
// The trailing zone abbreviation must be UTC, GMT or a name loc defines
// (e.g. CET for Europe/Amsterdam). Other abbreviations are rejected since
// their offset is unknown.
func ParseQuery(raw string, loc *time.Location) (time.Time, error) {
	loc = orUTC(loc)
	s := strings.TrimSpace(raw)
	t, err := time.ParseInLocation(LayoutQueryFractional, s, loc)
	if err != nil {
		t, err = time.ParseInLocation(LayoutQuery, s, loc)
	}
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidTimestamp, err, "unrecognized timestamp %q", raw)
	}
	if !knownZone(t, loc) {
		name, _ := t.Zone()
		return time.Time{}, errors.New(errors.ErrCodeInvalidTimestamp, "unknown time zone %q in timestamp %q", name, raw)
	}
	return t, nil
}

// knownZone reports whether the zone of t, as returned by ParseInLocation,
// has a real offset. The time package resolves abbreviations loc defines to
// loc itself and turns any other name into a fixed zone with offset zero.
func knownZone(t time.Time, loc *time.Location) bool {
	if t.Location() == loc {
		return true
	}
	name, offset := t.Zone()
	return offset == 0 && (name == "UTC" || name == "GMT")
}

// ParseRelease parses a zone-less registry upload time. Having no zone, the
// wall clock is interpreted in loc rather than converted.
func ParseRelease(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutRelease, strings.TrimSpace(raw), orUTC(loc))
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidTimestamp, err, "unrecognized release time %q", raw)
	}
	return t, nil
}

// ParseRFC3339 parses RFC 3339 timestamps with optional fractional seconds,
// as used by npm registry documents.
func ParseRFC3339(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidTimestamp, err, "unrecognized timestamp %q", raw)
	}
	return t, nil
}

// NormalizeQuery parses a bulk query timestamp and formats it canonically.
func NormalizeQuery(raw string, loc *time.Location) (string, error) {
	t, err := ParseQuery(raw, loc)
	if err != nil {
		return "", err
	}
	return Format(t, loc), nil
}

// NormalizeRelease parses a registry release time and formats it canonically.
func NormalizeRelease(raw string, loc *time.Location) (string, error) {
	t, err := ParseRelease(raw, loc)
	if err != nil {
		return "", err
	}
	return Format(t, loc), nil
}

// LoadLocation resolves a timezone setting. It accepts IANA names
// ("Europe/Amsterdam"), "Local", "UTC", the empty string (UTC), and fixed
// offsets of the form "+02:00" or "-0530".
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	if name[0] == '+' || name[0] == '-' {
		for _, layout := range []string{"-07:00", "-0700", "-07"} {
			if t, err := time.Parse(layout, name); err == nil {
				_, offset := t.Zone()
				return time.FixedZone(name, offset), nil
			}
		}
		return nil, errors.New(errors.ErrCodeInvalidTimezone, "invalid UTC offset %q", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTimezone, err, "unknown timezone %q", name)
	}
	return loc, nil
}

// Key identifies loc in cache keys. Named and fixed zones are identified by
// name. Local is resolved to the zones it uses in January and July, so
// machines in different zones do not share cached results.
func Key(loc *time.Location) string {
	loc = orUTC(loc)
	if loc != time.Local {
		return loc.String()
	}
	year := time.Now().Year()
	jan, janOffset := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	jul, julOffset := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()
	return fmt.Sprintf("Local(%s%+d,%s%+d)", jan, janOffset, jul, julOffset)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
