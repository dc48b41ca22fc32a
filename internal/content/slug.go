package content

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-slug"
)

// NormalizeSlug decodes a path segment and applies the default slug rules. Segments
// the normalizer rejects fall back to their lower-cased form so lookups still run.
func NormalizeSlug(segment string) string {
	value := strings.TrimSpace(segment)
	if decoded, err := url.PathUnescape(value); err == nil {
		value = decoded
	}
	if value == "" {
		return ""
	}
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(value)
}

// SlugCandidates lists the lookup keys for a path segment in the order they are tried:
// the segment as written, its percent-decoded form, then the normalised slug.
// Duplicates and empty values are dropped.
func SlugCandidates(segment string) []string {
	raw := strings.TrimSpace(segment)
	if raw == "" {
		return nil
	}
	candidates := []string{raw}
	add := func(value string) {
		if value == "" {
			return
		}
		for _, existing := range candidates {
			if existing == value {
				return
			}
		}
		candidates = append(candidates, value)
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		add(decoded)
	}
	add(NormalizeSlug(raw))
	return candidates
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// LookupSlugCandidates runs lookup for every candidate of segment and returns the first
// hit. Not-found results move on to the next candidate; any other error stops the search.
func LookupSlugCandidates(ctx context.Context, segment string, lookup func(context.Context, string) (ItemID, error)) (ItemID, error) {
	for _, candidate := range SlugCandidates(segment) {
		id, err := lookup(ctx, candidate)
		if err == nil {
			return id, nil
		}
		if !IsNotFound(err) {
			return 0, err
		}
	}
	return 0, &NotFoundError{Resource: "content_item", Key: segment}
}
