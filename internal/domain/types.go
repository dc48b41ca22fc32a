package domain

// Status represents the lifecycle states a content item can be moved between.
type Status string

const (
	// StatusPublish identifies content available to visitors
	StatusPublish Status = "publish"
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPending marks content waiting for editorial review
	StatusPending Status = "pending"
	// StatusPrivate marks content visible only to authorised users
	StatusPrivate Status = "private"
	// StatusTrash marks content moved to the trash but not yet purged
	StatusTrash Status = "trash"
)

// String returns the persisted representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the canonical values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPublish, StatusDraft, StatusPending, StatusPrivate, StatusTrash:
		return true
	}
	return false
}

// IsRoutable reports whether items in this status are reachable through public routes.
func (s Status) IsRoutable() bool {
	return s == StatusPublish || s == StatusPrivate
}
