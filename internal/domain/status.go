package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStatusRequired indicates an empty status value.
var ErrStatusRequired = errors.New("status: value is required")

// ErrStatusUnknown indicates a value outside the status enumeration.
var ErrStatusUnknown = errors.New("status: unknown value")

var statusAliases = map[string]Status{
	"publish":        StatusPublish,
	"published":      StatusPublish,
	"draft":          StatusDraft,
	"pending":        StatusPending,
	"pending-review": StatusPending,
	"pending_review": StatusPending,
	"review":         StatusPending,
	"private":        StatusPrivate,
	"trash":          StatusTrash,
	"trashed":        StatusTrash,
	"deleted":        StatusTrash,
}

// Statuses lists the canonical statuses in presentation order.
func Statuses() []Status {
	return []Status{StatusPublish, StatusDraft, StatusPending, StatusPrivate, StatusTrash}
}

// ParseStatus maps user input (case-insensitive, aliases accepted) to a canonical Status.
func ParseStatus(input string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return "", ErrStatusRequired
	}
	status, ok := statusAliases[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrStatusUnknown, input)
	}
	return status, nil
}

// NormalizeStatus returns the canonical status for input or the trimmed input when it is unknown.
// It is used when reading persisted values that may have been written by other tools.
func NormalizeStatus(input string) Status {
	if status, err := ParseStatus(input); err == nil {
		return status
	}
	return Status(strings.TrimSpace(input))
}
