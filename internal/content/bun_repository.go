package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore implements Store on top of a bun database.
type BunStore struct {
	db         *bun.DB
	permalinks repository.Repository[*Permalink]
	basePath   string
	router     Router
	now        func() time.Time
}

var (
	_ Store  = (*BunStore)(nil)
	_ Seeder = (*BunStore)(nil)
)

// NewBunStore constructs a SQL-backed store. Tables are created by storage.Migrate.
func NewBunStore(db *bun.DB, opts StoreOptions) *BunStore {
	store := &BunStore{
		db:       db,
		basePath: NormalizeBasePath(opts.BasePath),
		router:   opts.Router,
		now:      opts.clock(),
	}
	if db != nil {
		store.permalinks = NewPermalinkRepository(db)
	}
	return store
}

// Create inserts the supplied item and returns it with its assigned identifier.
func (s *BunStore) Create(ctx context.Context, record *Item) (*Item, error) {
	if s.db == nil {
		return nil, ErrStoreNotConfigured
	}
	if record == nil {
		return nil, ErrItemIDRequired
	}
	if strings.TrimSpace(record.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if !record.Status.IsValid() {
		return nil, ErrStatusInvalid
	}

	copied := cloneItem(record)
	if copied.Type == "" {
		copied.Type = "post"
	}
	now := s.now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(copied).Exec(ctx); err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	return copied, nil
}

// PutPermalink creates or repoints a custom permalink.
func (s *BunStore) PutPermalink(ctx context.Context, path string, id ItemID) error {
	if s.permalinks == nil {
		return ErrStoreNotConfigured
	}
	key := NormalizePermalinkPath(path)
	if key == "" {
		return ErrPathRequired
	}
	if id <= 0 {
		return ErrItemIDRequired
	}

	existing, err := s.permalinks.GetByIdentifier(ctx, key)
	if err != nil {
		if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return mapRepositoryError(err, "permalink", key)
		}
		_, err = s.permalinks.Create(ctx, &Permalink{
			ID:        uuid.New(),
			Path:      key,
			ItemID:    id,
			CreatedAt: s.now().UTC(),
		})
		return err
	}

	existing.ItemID = id
	_, err = s.permalinks.Update(ctx, existing,
		repository.UpdateByID(existing.ID.String()),
		repository.UpdateColumns("item_id"),
	)
	return err
}

// RouteLookup resolves the URL through plain query permalinks and the configured router.
func (s *BunStore) RouteLookup(ctx context.Context, target *url.URL) (ItemID, error) {
	finder := routeFinder{
		router: s.router,
		exists: s.exists,
		bySlug: func(ctx context.Context, slug string) (ItemID, error) {
			return s.firstBySlug(ctx, slug, true)
		},
	}
	return finder.lookup(ctx, target)
}

// CustomPathLookup resolves a base-stripped path through the permalink table.
func (s *BunStore) CustomPathLookup(ctx context.Context, path string) (ItemID, error) {
	if s.permalinks == nil {
		return 0, ErrStoreNotConfigured
	}
	key := NormalizePermalinkPath(path)
	if key == "" {
		return 0, &NotFoundError{Resource: "permalink", Key: path}
	}
	record, err := s.permalinks.GetByIdentifier(ctx, key)
	if err != nil {
		return 0, mapRepositoryError(err, "permalink", key)
	}
	return record.ItemID, nil
}

// Load fetches the item by identifier.
func (s *BunStore) Load(ctx context.Context, id ItemID) (*Item, error) {
	if s.db == nil {
		return nil, ErrStoreNotConfigured
	}
	record := new(Item)
	if err := s.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "content_item", Key: id.String()}
		}
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	return record, nil
}

// UpdateStatus performs a conditional update so the status only changes when it still equals from.
func (s *BunStore) UpdateStatus(ctx context.Context, id ItemID, from, to domain.Status) error {
	if s.db == nil {
		return ErrStoreNotConfigured
	}
	if !to.IsValid() {
		return ErrStatusInvalid
	}

	res, err := s.db.NewUpdate().
		Model((*Item)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("content_item repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("content_item repository error: %w", err)
	}
	if affected == 1 {
		return nil
	}

	ok, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	return ErrStatusConflict
}

// QueryBySlug returns the lowest identifier holding slug, regardless of status or type.
func (s *BunStore) QueryBySlug(ctx context.Context, slug string) (ItemID, error) {
	return s.firstBySlug(ctx, slug, false)
}

// BasePath returns the path prefix the site is mounted under.
func (s *BunStore) BasePath() string {
	return s.basePath
}

// List returns every item ordered by identifier.
func (s *BunStore) List(ctx context.Context) ([]*Item, error) {
	if s.db == nil {
		return nil, ErrStoreNotConfigured
	}
	var records []*Item
	if err := s.db.NewSelect().Model(&records).OrderExpr("?TableAlias.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	return records, nil
}

func (s *BunStore) exists(ctx context.Context, id ItemID) (bool, error) {
	if s.db == nil {
		return false, ErrStoreNotConfigured
	}
	ok, err := s.db.NewSelect().Model((*Item)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("content_item repository error: %w", err)
	}
	return ok, nil
}

func (s *BunStore) firstBySlug(ctx context.Context, slug string, routableOnly bool) (ItemID, error) {
	if s.db == nil {
		return 0, ErrStoreNotConfigured
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, &NotFoundError{Resource: "content_item", Key: slug}
	}

	record := new(Item)
	query := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		OrderExpr("?TableAlias.id ASC").
		Limit(1)
	if routableOnly {
		query = query.Where("?TableAlias.status IN (?)", bun.In([]domain.Status{domain.StatusPublish, domain.StatusPrivate}))
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &NotFoundError{Resource: "content_item", Key: slug}
		}
		return 0, fmt.Errorf("content_item repository error: %w", err)
	}
	return record.ID, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
