package validation

import "testing"

func TestValidateTagColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"lowercase hex", "#a1b2c3", false},
		{"uppercase hex", "#A1B2C3", false},
		{"digits", "#001122", false},
		{"missing hash", "a1b2c3", true},
		{"too short", "#abc", true},
		{"too long", "#a1b2c3d", true},
		{"non-hex character", "#a1b2cg", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateTagColor(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTagColor(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps newline and tab", "a\nb\tc", "a\nb\tc"},
		{"strips control characters", "a\x00b\x07c", "abc"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newlines collapse to spaces", "Methods\nSection", "Methods Section"},
		{"tabs collapse to spaces", "a\tb", "a b"},
		{"trimmed", "  Results ", "Results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeLabel(tt.input); got != tt.expected {
				t.Errorf("SanitizeLabel(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
