package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Should never fail in normal operation.
	if err := Validate.RegisterValidation("tag_color", validateTagColor); err != nil {
		panic(fmt.Sprintf("failed to register tag_color validator: %v", err))
	}
}

// validateTagColor validates a #rrggbb hex color.
func validateTagColor(fl validator.FieldLevel) bool {
	return ValidateTagColor(fl.Field().String()) == nil
}

// ValidateTagColor validates a tag color string value.
func ValidateTagColor(value string) error {
	if len(value) != 7 || value[0] != '#' {
		return fmt.Errorf("invalid color: %s (must be #rrggbb)", value)
	}
	for _, r := range value[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("invalid color: %s (must be #rrggbb)", value)
		}
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters except newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// SanitizeLabel sanitizes a tag label: newlines and tabs collapse to spaces,
// other control characters are stripped, and the result is trimmed.
func SanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, "\t", " ")
	return SanitizeText(label)
}
