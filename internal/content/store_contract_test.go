package content

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/goliatone/go-status-updater/internal/routing"
	urlkit "github.com/goliatone/go-urlkit"
)

type seedableStore interface {
	Store
	Seeder
}

type storeFactory func(t *testing.T, opts StoreOptions) seedableStore

func newTestRouter(t *testing.T) *routing.Router {
	t.Helper()
	router, err := routing.New(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com/blog",
				Paths: map[string]string{
					"post":    "/:year/:slug",
					"archive": "/archives/:id",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("routing.New() error = %v", err)
	}
	return router
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func seed(t *testing.T, store seedableStore, slug string, status domain.Status) *Item {
	t.Helper()
	item, err := store.Create(context.Background(), &Item{Slug: slug, Title: slug, Status: status})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", slug, err)
	}
	if item.ID == 0 {
		t.Fatalf("Create(%s) did not assign an id", slug)
	}
	return item
}

func runStoreContract(t *testing.T, factory storeFactory) {
	t.Run("load and update status", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})
		item := seed(t, store, "hello", domain.StatusDraft)

		if err := store.UpdateStatus(ctx, item.ID, domain.StatusDraft, domain.StatusPublish); err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		loaded, err := store.Load(ctx, item.ID)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.Status != domain.StatusPublish {
			t.Fatalf("expected publish, got %s", loaded.Status)
		}
	})

	t.Run("update status is conditional", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})
		item := seed(t, store, "guarded", domain.StatusPending)

		err := store.UpdateStatus(ctx, item.ID, domain.StatusDraft, domain.StatusPublish)
		if !errors.Is(err, ErrStatusConflict) {
			t.Fatalf("expected ErrStatusConflict, got %v", err)
		}
		loaded, err := store.Load(ctx, item.ID)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.Status != domain.StatusPending {
			t.Fatalf("expected status untouched, got %s", loaded.Status)
		}
	})

	t.Run("missing items report not found", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})

		if _, err := store.Load(ctx, 999); !IsNotFound(err) {
			t.Fatalf("expected not found on load, got %v", err)
		}
		if err := store.UpdateStatus(ctx, 999, domain.StatusDraft, domain.StatusPublish); !IsNotFound(err) {
			t.Fatalf("expected not found on update, got %v", err)
		}
		if _, err := store.QueryBySlug(ctx, "nope"); !IsNotFound(err) {
			t.Fatalf("expected not found on slug, got %v", err)
		}
		if _, err := store.CustomPathLookup(ctx, "nope"); !IsNotFound(err) {
			t.Fatalf("expected not found on permalink, got %v", err)
		}
	})

	t.Run("query by slug ignores status and picks lowest id", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})
		first := seed(t, store, "shared", domain.StatusTrash)
		seed(t, store, "shared", domain.StatusPublish)

		id, err := store.QueryBySlug(ctx, "shared")
		if err != nil {
			t.Fatalf("QueryBySlug() error = %v", err)
		}
		if id != first.ID {
			t.Fatalf("expected %d, got %d", first.ID, id)
		}
	})

	t.Run("custom permalinks", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})
		item := seed(t, store, "custom", domain.StatusDraft)
		other := seed(t, store, "other", domain.StatusDraft)

		if err := store.PutPermalink(ctx, "/landing/special/", item.ID); err != nil {
			t.Fatalf("PutPermalink() error = %v", err)
		}
		id, err := store.CustomPathLookup(ctx, "landing/special")
		if err != nil {
			t.Fatalf("CustomPathLookup() error = %v", err)
		}
		if id != item.ID {
			t.Fatalf("expected %d, got %d", item.ID, id)
		}

		if err := store.PutPermalink(ctx, "landing/special", other.ID); err != nil {
			t.Fatalf("PutPermalink() repoint error = %v", err)
		}
		id, err = store.CustomPathLookup(ctx, "/landing/special/")
		if err != nil {
			t.Fatalf("CustomPathLookup() error = %v", err)
		}
		if id != other.ID {
			t.Fatalf("expected repointed permalink %d, got %d", other.ID, id)
		}
	})

	t.Run("route lookup", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{BasePath: "/blog/", Router: newTestRouter(t)})
		published := seed(t, store, "launch", domain.StatusPublish)
		draft := seed(t, store, "hidden", domain.StatusDraft)
		underscored := seed(t, store, "launch_notes", domain.StatusPublish)

		if store.BasePath() != "/blog" {
			t.Fatalf("expected normalized base path, got %q", store.BasePath())
		}

		cases := []struct {
			raw  string
			want ItemID
		}{
			{raw: "https://example.com/blog/?p=" + draft.ID.String(), want: draft.ID},
			{raw: "https://example.com/blog/?page_id=" + published.ID.String(), want: published.ID},
			{raw: "https://example.com/blog/archives/" + draft.ID.String(), want: draft.ID},
			{raw: "https://example.com/blog/2024/launch/", want: published.ID},
			{raw: "https://example.com/blog/2024/launch_notes/", want: underscored.ID},
		}
		for _, tc := range cases {
			id, err := store.RouteLookup(ctx, mustURL(t, tc.raw))
			if err != nil {
				t.Fatalf("RouteLookup(%s) error = %v", tc.raw, err)
			}
			if id != tc.want {
				t.Fatalf("RouteLookup(%s) = %d, want %d", tc.raw, id, tc.want)
			}
		}

		misses := []string{
			"https://example.com/blog/2024/hidden/",
			"https://example.com/blog/?p=4242",
			"https://example.com/blog/unknown",
		}
		for _, raw := range misses {
			if _, err := store.RouteLookup(ctx, mustURL(t, raw)); !IsNotFound(err) {
				t.Fatalf("RouteLookup(%s) expected not found, got %v", raw, err)
			}
		}
	})

	t.Run("create validates input", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t, StoreOptions{})
		if _, err := store.Create(ctx, &Item{Status: domain.StatusDraft}); !errors.Is(err, ErrSlugRequired) {
			t.Fatalf("expected ErrSlugRequired, got %v", err)
		}
		if _, err := store.Create(ctx, &Item{Slug: "x", Status: "archived"}); !errors.Is(err, ErrStatusInvalid) {
			t.Fatalf("expected ErrStatusInvalid, got %v", err)
		}
		if err := store.PutPermalink(ctx, "/", 1); !errors.Is(err, ErrPathRequired) {
			t.Fatalf("expected ErrPathRequired, got %v", err)
		}
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T, opts StoreOptions) seedableStore {
		return NewMemoryStore(opts)
	})
}

func TestMemoryStoreListOrdersByID(t *testing.T) {
	store := NewMemoryStore(StoreOptions{})
	seed(t, store, "b", domain.StatusDraft)
	seed(t, store, "a", domain.StatusDraft)

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 || items[0].Slug != "b" || items[1].Slug != "a" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(StoreOptions{})
	item := seed(t, store, "copy", domain.StatusDraft)

	loaded, err := store.Load(ctx, item.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loaded.Status = domain.StatusTrash

	again, err := store.Load(ctx, item.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Status != domain.StatusDraft {
		t.Fatalf("expected stored copy to stay draft, got %s", again.Status)
	}
}
