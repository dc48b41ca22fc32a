package content

import (
	"errors"
	"fmt"
)

var (
	ErrItemIDRequired     = errors.New("content: item id required")
	ErrSlugRequired       = errors.New("content: slug is required")
	ErrPathRequired       = errors.New("content: permalink path is required")
	ErrStatusInvalid      = errors.New("content: status invalid")
	ErrStatusConflict     = errors.New("content: status changed since it was read")
	ErrStoreNotConfigured = errors.New("content: store requires a database")
)

// NotFoundError reports a missing item or permalink.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "content: not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
