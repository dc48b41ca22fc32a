package content

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-status-updater/internal/domain"
)

// MemoryStore is an in-memory Store for scaffolding, embedding and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[ItemID]*Item
	permalinks map[string]ItemID
	nextID     ItemID
	basePath   string
	router     Router
	now        func() time.Time
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Seeder = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts StoreOptions) *MemoryStore {
	return &MemoryStore{
		items:      make(map[ItemID]*Item),
		permalinks: make(map[string]ItemID),
		basePath:   NormalizeBasePath(opts.BasePath),
		router:     opts.Router,
		now:        opts.clock(),
	}
}

// Create inserts the supplied item, assigning an identifier when none is set.
func (m *MemoryStore) Create(_ context.Context, record *Item) (*Item, error) {
	if record == nil {
		return nil, ErrItemIDRequired
	}
	if strings.TrimSpace(record.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if !record.Status.IsValid() {
		return nil, ErrStatusInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneItem(record)
	if copied.ID == 0 {
		m.nextID++
		copied.ID = m.nextID
	} else if copied.ID > m.nextID {
		m.nextID = copied.ID
	}
	if copied.Type == "" {
		copied.Type = "post"
	}
	now := m.now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.items[copied.ID] = copied
	return cloneItem(copied), nil
}

// PutPermalink registers a custom permalink path for an item.
func (m *MemoryStore) PutPermalink(_ context.Context, path string, id ItemID) error {
	key := NormalizePermalinkPath(path)
	if key == "" {
		return ErrPathRequired
	}
	if id <= 0 {
		return ErrItemIDRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permalinks[key] = id
	return nil
}

// RouteLookup resolves the URL through plain query permalinks and the configured router.
func (m *MemoryStore) RouteLookup(ctx context.Context, target *url.URL) (ItemID, error) {
	finder := routeFinder{
		router: m.router,
		exists: func(_ context.Context, id ItemID) (bool, error) {
			m.mu.RLock()
			defer m.mu.RUnlock()
			_, ok := m.items[id]
			return ok, nil
		},
		bySlug: func(_ context.Context, slug string) (ItemID, error) {
			return m.firstBySlug(slug, true)
		},
	}
	return finder.lookup(ctx, target)
}

// CustomPathLookup resolves a base-stripped path through the permalink table.
func (m *MemoryStore) CustomPathLookup(_ context.Context, path string) (ItemID, error) {
	key := NormalizePermalinkPath(path)
	if key == "" {
		return 0, &NotFoundError{Resource: "permalink", Key: path}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.permalinks[key]
	if !ok {
		return 0, &NotFoundError{Resource: "permalink", Key: key}
	}
	return id, nil
}

// Load returns a copy of the item.
func (m *MemoryStore) Load(_ context.Context, id ItemID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	return cloneItem(rec), nil
}

// UpdateStatus moves the item to status to when it still holds status from.
func (m *MemoryStore) UpdateStatus(_ context.Context, id ItemID, from, to domain.Status) error {
	if !to.IsValid() {
		return ErrStatusInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items[id]
	if !ok {
		return &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	if rec.Status != from {
		return ErrStatusConflict
	}
	rec.Status = to
	rec.UpdatedAt = m.now().UTC()
	return nil
}

// QueryBySlug returns the lowest identifier holding slug, regardless of status or type.
func (m *MemoryStore) QueryBySlug(_ context.Context, slug string) (ItemID, error) {
	return m.firstBySlug(slug, false)
}

// BasePath returns the path prefix the site is mounted under.
func (m *MemoryStore) BasePath() string {
	return m.basePath
}

// List returns every item ordered by identifier.
func (m *MemoryStore) List(_ context.Context) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Item, 0, len(m.items))
	for _, rec := range m.items {
		out = append(out, cloneItem(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) firstBySlug(slug string, routableOnly bool) (ItemID, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, &NotFoundError{Resource: "content_item", Key: slug}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found ItemID
	for id, rec := range m.items {
		if rec.Slug != slug {
			continue
		}
		if routableOnly && !rec.Status.IsRoutable() {
			continue
		}
		if found == 0 || id < found {
			found = id
		}
	}
	if found == 0 {
		return 0, &NotFoundError{Resource: "content_item", Key: slug}
	}
	return found, nil
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
