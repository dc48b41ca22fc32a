package transition

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidInput = "BULK_STATUS_INVALID_INPUT"
	TextCodeInvalidURL   = "BULK_STATUS_INVALID_URL"
	TextCodeCancelled    = "BULK_STATUS_CANCELLED"
)

const messageFieldsRequired = "All fields are required."

// Validate checks that the request names at least one URL and two known statuses.
// A missing value yields the "All fields are required." message.
func Validate(req Request) error {
	var fields []goerrors.FieldError
	missing := false

	if len(req.URLs) == 0 {
		missing = true
		fields = append(fields, goerrors.FieldError{Field: "urls", Message: "at least one URL is required"})
	}
	for _, field := range []struct {
		name  string
		value string
		valid bool
	}{
		{"expected_status", req.ExpectedStatus.String(), req.ExpectedStatus.IsValid()},
		{"new_status", req.NewStatus.String(), req.NewStatus.IsValid()},
	} {
		switch {
		case strings.TrimSpace(field.value) == "":
			missing = true
			fields = append(fields, goerrors.FieldError{Field: field.name, Message: "status is required"})
		case !field.valid:
			fields = append(fields, goerrors.FieldError{
				Field:   field.name,
				Message: fmt.Sprintf("unknown status %q", field.value),
				Value:   field.value,
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	message := "invalid bulk status request"
	if missing {
		message = messageFieldsRequired
	}
	return goerrors.NewValidation(message, fields...).WithTextCode(TextCodeInvalidInput)
}

// firstInvalidURL returns the index of the first malformed URL or -1.
func firstInvalidURL(urls []string) int {
	for i, raw := range urls {
		if !ValidURL(raw) {
			return i
		}
	}
	return -1
}

// ValidURL accepts absolute http(s) URLs with a host and no whitespace or control characters.
func ValidURL(raw string) bool {
	if raw == "" {
		return false
	}
	for _, r := range raw {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return parsed.Hostname() != ""
}

func invalidURLError(raw string) error {
	return goerrors.NewValidation(
		"Invalid URL detected: "+raw,
		goerrors.FieldError{Field: "urls", Message: "malformed url", Value: raw},
	).WithTextCode(TextCodeInvalidURL)
}
