package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range OutputFormats {
		if err := ValidateOutputFormat(format); err != nil {
			t.Errorf("ValidateOutputFormat(%q) unexpected error: %v", format, err)
		}
	}

	// Formats are matched exactly; callers pass flag or config values untouched.
	for _, format := range []string{"", "PRETTY", "Csv", " json ", "xml", "markdown"} {
		err := ValidateOutputFormat(format)
		if err == nil {
			t.Errorf("ValidateOutputFormat(%q) expected error but got none", format)
			continue
		}
		if !strings.Contains(err.Error(), "pretty, csv, json, html") {
			t.Errorf("error %q should list the supported formats", err)
		}
	}
}
