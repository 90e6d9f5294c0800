package requirement

import (
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"", "", false},
		{"requests", "requests", true},
		{"  requests  ", "requests", true},
		{"requests>=2.0", "requests>=2.0", true},
		{"requests (>=2.0,<3.0)", "requests", true},
		{"requests (>=2.0); extra == 'http'", "requests", true},
		{"colorama; sys_platform == \"win32\"", "colorama", true},
		{"pywin32; os_name == 'nt' (legacy)", "pywin32", true},
		{"foo (>=1.0,<2.0); extra == 'x'", "foo", true},
		{"(>=1.0)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Name(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Name(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConstraint(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", DefaultConstraint},
		{"requests", DefaultConstraint},
		{"requests>=2.0", DefaultConstraint},
		{"colorama; sys_platform == \"win32\"", DefaultConstraint},
		{"requests (>=2.0,<3.0)", ">=2.0,<3.0"},
		{"foo (>=1.0,<2.0); extra == 'x'", ">=1.0,<2.0"},
		{"dep (>=1.0)", ">=1.0"},
		{"odd (>=1 (nested))", ">=1 "},
		{"unbalanced (>=1.0", ">=1.0"},
		{"close-only >=1.0)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Constraint(tt.raw); got != tt.want {
				t.Errorf("Constraint(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		noExtra bool
		want    Dependency
		wantOK  bool
	}{
		{"bare", "idna", true, Dependency{"idna", DefaultConstraint}, true},
		{"constraint", "urllib3 (<3,>=1.21.1)", true, Dependency{"urllib3", "<3,>=1.21.1"}, true},
		{"extra skipped", "pytest (>=7); extra == 'test'", true, Dependency{}, false},
		{"extra kept", "pytest (>=7); extra == 'test'", false, Dependency{"pytest", ">=7"}, true},
		{"extra anywhere", "extras-helper", true, Dependency{}, false},
		{"extra is case sensitive", "foo; EXTRA == 'x'", true, Dependency{"foo", DefaultConstraint}, true},
		{"empty", "", true, Dependency{}, false},
		{"empty name", "(>=1.0)", false, Dependency{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.raw, tt.noExtra)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Parse(%q, %v) = (%+v, %v), want (%+v, %v)", tt.raw, tt.noExtra, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBareDeclarations(t *testing.T) {
	for _, raw := range []string{"six", " numpy", "zope.interface ", "a-b_c.d"} {
		name, ok := Name(raw)
		if !ok {
			t.Fatalf("Name(%q) ok = false", raw)
		}
		if want := strings.TrimSpace(raw); name != want {
			t.Errorf("Name(%q) = %q, want %q", raw, name, want)
		}
		if c := Constraint(raw); c != DefaultConstraint {
			t.Errorf("Constraint(%q) = %q, want %q", raw, c, DefaultConstraint)
		}
	}
}
