package resolver

import (
	"context"
	"strings"

	"github.com/goliatone/go-status-updater/internal/content"
)

// RouteStrategy asks the store's native routing: query permalinks and route templates.
type RouteStrategy struct {
	Store content.Store
}

func (RouteStrategy) Name() string { return StrategyRoute }

func (s RouteStrategy) Resolve(ctx context.Context, target Target) (content.ItemID, bool, error) {
	if target.URL == nil {
		return 0, false, nil
	}
	id, err := s.Store.RouteLookup(ctx, target.URL)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// CustomPathStrategy looks the base-stripped path up in the custom permalink table.
type CustomPathStrategy struct {
	Store content.Store
}

func (CustomPathStrategy) Name() string { return StrategyCustomPath }

func (s CustomPathStrategy) Resolve(ctx context.Context, target Target) (content.ItemID, bool, error) {
	if target.Path == "" {
		return 0, false, nil
	}
	id, err := s.Store.CustomPathLookup(ctx, target.Path)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// SlugStrategy treats the last path segment as a slug and matches any item carrying it.
// The segment is tried verbatim, then decoded, then normalised.
type SlugStrategy struct {
	Store content.Store
}

func (SlugStrategy) Name() string { return StrategySlug }

func (s SlugStrategy) Resolve(ctx context.Context, target Target) (content.ItemID, bool, error) {
	path := target.EscapedPath
	if path == "" {
		path = target.Path
	}
	segment := LastSegment(path)
	if segment == "" {
		return 0, false, nil
	}
	id, err := content.LookupSlugCandidates(ctx, segment, s.Store.QueryBySlug)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LastSegment returns the final non-empty segment of a slash separated path.
func LastSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
