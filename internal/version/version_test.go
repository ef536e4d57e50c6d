// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is defined and not a placeholder
package version

import (
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	values := map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	}

	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}
	for name, v := range values {
		if v == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(v) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
		for _, p := range placeholders {
			if v == p {
				t.Errorf("%s should not be placeholder value: %s", name, p)
			}
		}
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Product) || !strings.HasSuffix(s, Version) {
		t.Errorf("unexpected version string: %q", s)
	}
}
