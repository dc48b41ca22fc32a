package content

import (
	"context"
	"net/url"
)

// queryRouteKeys are the plain permalink parameters recognised before templates are tried.
var queryRouteKeys = []string{"p", "page_id", "post"}

type routeFinder struct {
	router Router
	exists func(ctx context.Context, id ItemID) (bool, error)
	bySlug func(ctx context.Context, slug string) (ItemID, error)
}

func (f routeFinder) lookup(ctx context.Context, target *url.URL) (ItemID, error) {
	if target == nil {
		return 0, &NotFoundError{Resource: "route", Key: ""}
	}

	query := target.Query()
	for _, key := range queryRouteKeys {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		if id, ok, err := f.existing(ctx, raw); err != nil || ok {
			return id, err
		}
	}

	if f.router != nil {
		if match, ok := f.router.Match(target); ok {
			if raw := match.Param("id"); raw != "" {
				if id, ok, err := f.existing(ctx, raw); err != nil || ok {
					return id, err
				}
			}
			if slug := match.Param("slug"); slug != "" && f.bySlug != nil {
				return LookupSlugCandidates(ctx, slug, f.bySlug)
			}
		}
	}

	return 0, &NotFoundError{Resource: "route", Key: target.String()}
}

func (f routeFinder) existing(ctx context.Context, raw string) (ItemID, bool, error) {
	id, err := ParseItemID(raw)
	if err != nil {
		return 0, false, nil
	}
	ok, err := f.exists(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return id, ok, nil
}
