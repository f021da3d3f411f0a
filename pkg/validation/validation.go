package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Stored reports are plain files named drift_report_*.html; anything else
	// requested through the report endpoint is refused.
	reportNameRegex = regexp.MustCompile(`^drift_report_[a-zA-Z0-9_]+\.html$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateFeatureVector checks that every required feature is present and
// carries a usable numeric value. Extra keys are allowed and ignored by the
// model; missing or non-finite values reject the request before it touches
// the buffer.
func ValidateFeatureVector(features map[string]float64, required []string) error {
	if len(features) == 0 {
		return errors.New("feature vector cannot be empty")
	}

	var missing []string
	for _, name := range required {
		value, ok := features[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("feature %q must be a finite number", name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required features: %s", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateReportName checks that a requested report filename is one the
// store could have written. Rejects path separators and dot segments so the
// report endpoint can never read outside the reports directory.
func ValidateReportName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("report name cannot be empty")
	}

	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.New("report name must not contain path separators")
	}

	if len(name) > 100 {
		return errors.New("report name must not exceed 100 characters")
	}

	if !reportNameRegex.MatchString(name) {
		return errors.New("report name must match drift_report_*.html")
	}

	return nil
}
