package routing

import (
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// DefaultGroup names the group built by DefaultConfig.
const DefaultGroup = "frontend"

// DefaultPaths are the public permalink shapes recognised when no routes are configured.
func DefaultPaths() map[string]string {
	return map[string]string{
		"post_dated": "/:year/:month/:day/:slug",
		"post_month": "/:year/:month/:slug",
		"archive":    "/archives/:id",
		"page":       "/:slug",
	}
}

// DefaultConfig mounts DefaultPaths under baseURL in a single group. An empty group
// name falls back to DefaultGroup.
func DefaultConfig(group, baseURL string) *urlkit.Config {
	group = strings.TrimSpace(group)
	if group == "" {
		group = DefaultGroup
	}
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    group,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths:   DefaultPaths(),
			},
		},
	}
}
