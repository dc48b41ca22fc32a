package content

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/goliatone/go-status-updater/internal/routing"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ItemID identifies a content item inside the store.
type ItemID int64

// String renders the identifier in decimal form.
func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseItemID parses a positive decimal identifier.
func ParseItemID(raw string) (ItemID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("content: invalid item id %q: %w", raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrItemIDRequired, value)
	}
	return ItemID(value), nil
}

// Item is an addressable unit of content (post, page, ...) with a lifecycle status.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID        ItemID        `bun:"id,pk,autoincrement" json:"id"`
	Type      string        `bun:"type,notnull,default:'post'" json:"type"`
	Slug      string        `bun:"slug,notnull" json:"slug"`
	Title     string        `bun:"title" json:"title,omitempty"`
	Status    domain.Status `bun:"status,notnull,default:'draft'" json:"status"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Permalink maps a custom path override to a content item.
type Permalink struct {
	bun.BaseModel `bun:"table:custom_permalinks,alias:cp"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Path      string    `bun:"path,notnull,unique" json:"path"`
	ItemID    ItemID    `bun:"item_id,notnull" json:"item_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Store is the content store contract consumed by the resolver and the batch transitioner.
// Lookups report a *NotFoundError when nothing matches.
type Store interface {
	RouteLookup(ctx context.Context, target *url.URL) (ItemID, error)
	CustomPathLookup(ctx context.Context, path string) (ItemID, error)
	Load(ctx context.Context, id ItemID) (*Item, error)
	UpdateStatus(ctx context.Context, id ItemID, from, to domain.Status) error
	QueryBySlug(ctx context.Context, slug string) (ItemID, error)
	BasePath() string
}

// Seeder loads fixtures into a store. The transition path never calls it.
type Seeder interface {
	Create(ctx context.Context, record *Item) (*Item, error)
	PutPermalink(ctx context.Context, path string, id ItemID) error
	List(ctx context.Context) ([]*Item, error)
}

// Router maps site URLs to route templates and their captured params.
type Router interface {
	Match(target *url.URL) (routing.Match, bool)
}

// StoreOptions configures the store implementations.
type StoreOptions struct {
	// BasePath is the path prefix the site is mounted under (e.g. "/blog").
	BasePath string
	Router   Router
	Clock    func() time.Time
}

func (o StoreOptions) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

// NormalizeBasePath renders a base path as "/segment" or "" for the site root.
func NormalizeBasePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// NormalizePermalinkPath trims whitespace and surrounding slashes from a custom permalink.
func NormalizePermalinkPath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}
