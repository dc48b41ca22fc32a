package resolver

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

type stubStrategy struct {
	name  string
	id    content.ItemID
	ok    bool
	err   error
	calls []Target
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context, target Target) (content.ItemID, bool, error) {
	s.calls = append(s.calls, target)
	return s.id, s.ok, s.err
}

type stubFollower struct {
	final *url.URL
	err   error
	calls int
}

func (f *stubFollower) Follow(context.Context, string) (*url.URL, error) {
	f.calls++
	return f.final, f.err
}

func seedItem(t *testing.T, store *content.MemoryStore, slug string, status domain.Status) content.ItemID {
	t.Helper()
	item, err := store.Create(context.Background(), &content.Item{Slug: slug, Status: status})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", slug, err)
	}
	return item.ID
}

func TestChainStopsAtFirstMatch(t *testing.T) {
	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second", id: 9, ok: true}
	third := &stubStrategy{name: "third", id: 3, ok: true}

	chain := NewChain([]Strategy{first, second, third}, WithBasePath("/blog"))
	id, res, ok := chain.Resolve(context.Background(), "https://example.com/blog/a/b/")
	if !ok || id != 9 || res.Strategy != "second" {
		t.Fatalf("unexpected resolution id=%d res=%+v ok=%v", id, res, ok)
	}
	if len(third.calls) != 0 {
		t.Fatalf("expected third strategy to be skipped")
	}
	if got := first.calls[0].Path; got != "a/b" {
		t.Fatalf("expected stripped path a/b, got %q", got)
	}
}

func TestChainTreatsErrorsAsNoMatch(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("boom")}
	missing := &stubStrategy{name: "missing", err: &content.NotFoundError{Resource: "item", Key: "x"}}
	fallback := &stubStrategy{name: "fallback", id: 4, ok: true}

	chain := NewChain([]Strategy{failing, missing, fallback})
	id, res, ok := chain.Resolve(context.Background(), "https://example.com/x")
	if !ok || id != 4 || res.Strategy != "fallback" {
		t.Fatalf("unexpected resolution id=%d res=%+v ok=%v", id, res, ok)
	}
}

func TestChainReportsNoMatch(t *testing.T) {
	chain := NewChain([]Strategy{&stubStrategy{name: "none"}})
	if _, _, ok := chain.Resolve(context.Background(), "https://example.com/x"); ok {
		t.Fatal("expected no match")
	}
	if _, _, ok := chain.Resolve(context.Background(), "://bad"); ok {
		t.Fatal("expected unparsable URL to yield no match")
	}
}

func TestChainHonoursCancelledContext(t *testing.T) {
	strategy := &stubStrategy{name: "any", id: 1, ok: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, ok := NewChain([]Strategy{strategy}).Resolve(ctx, "https://example.com/x"); ok {
		t.Fatal("expected cancelled context to stop resolution")
	}
	if len(strategy.calls) != 0 {
		t.Fatal("expected no strategy calls after cancellation")
	}
}

func TestStripBasePath(t *testing.T) {
	cases := []struct {
		path, base, want string
	}{
		{"/blog/hello/", "/blog", "hello"},
		{"/blog", "/blog/", ""},
		{"/blogger/hello", "/blog", "blogger/hello"},
		{"/other/hello", "/blog", "other/hello"},
		{"/hello", "", "hello"},
	}
	for _, tc := range cases {
		if got := StripBasePath(tc.path, tc.base); got != tc.want {
			t.Fatalf("StripBasePath(%q, %q) = %q, want %q", tc.path, tc.base, got, tc.want)
		}
	}
}

func TestCustomPathBeatsSlugFallback(t *testing.T) {
	ctx := context.Background()
	store := content.NewMemoryStore(content.StoreOptions{BasePath: "/blog"})
	bySlug := seedItem(t, store, "special", domain.StatusDraft)
	byPath := seedItem(t, store, "landing", domain.StatusDraft)
	if err := store.PutPermalink(ctx, "offers/special", byPath); err != nil {
		t.Fatalf("PutPermalink() error = %v", err)
	}

	chain, err := New(store, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	id, res, ok := chain.Resolve(ctx, "https://example.com/blog/offers/special/")
	if !ok {
		t.Fatal("expected a match")
	}
	if id != byPath || res.Strategy != StrategyCustomPath {
		t.Fatalf("expected custom path %d, got %d via %s (slug item %d)", byPath, id, res.Strategy, bySlug)
	}
}

func TestSlugFallbackMatchesAnyStatus(t *testing.T) {
	store := content.NewMemoryStore(content.StoreOptions{})
	trashed := seedItem(t, store, "old-news", domain.StatusTrash)

	chain, err := New(store, Config{Strategies: []string{StrategyRoute, StrategySlug}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	id, res, ok := chain.Resolve(context.Background(), "https://example.com/2019/Old-News")
	if !ok || id != trashed || res.Strategy != StrategySlug {
		t.Fatalf("unexpected resolution id=%d res=%+v ok=%v", id, res, ok)
	}
}

func TestSlugFallbackMatchesStoredSlugVerbatim(t *testing.T) {
	cases := []struct {
		stored  string
		segment string
	}{
		{stored: "hello_world", segment: "hello_world"},
		{stored: "caf%c3%a9", segment: "caf%c3%a9"},
		{stored: "café", segment: "caf%C3%A9"},
		{stored: "my.post", segment: "my.post"},
		{stored: "Post-2", segment: "Post-2"},
	}
	for _, tc := range cases {
		t.Run(tc.stored, func(t *testing.T) {
			store := content.NewMemoryStore(content.StoreOptions{})
			seedItem(t, store, "decoy", domain.StatusDraft)
			want := seedItem(t, store, tc.stored, domain.StatusDraft)

			chain, err := New(store, Config{Strategies: []string{StrategySlug}})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			id, res, ok := chain.Resolve(context.Background(), "https://example.com/2020/"+tc.segment)
			if !ok || id != want || res.Strategy != StrategySlug {
				t.Fatalf("Resolve(%s) = %d via %+v ok=%v, want %d", tc.segment, id, res, ok, want)
			}
		})
	}
}

func TestRouteStrategyUsesQueryPermalink(t *testing.T) {
	store := content.NewMemoryStore(content.StoreOptions{})
	id := seedItem(t, store, "post", domain.StatusDraft)

	chain, err := New(store, Config{Strategies: []string{StrategyRoute}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, res, ok := chain.Resolve(context.Background(), "https://example.com/?p="+id.String())
	if !ok || got != id || res.Strategy != StrategyRoute {
		t.Fatalf("unexpected resolution id=%d res=%+v ok=%v", got, res, ok)
	}
}

func TestNewSkipsDisabledRedirect(t *testing.T) {
	store := content.NewMemoryStore(content.StoreOptions{})
	follower := &stubFollower{}

	chain, err := New(store, Config{Redirect: RedirectConfig{Enabled: false, Follower: follower}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := []string{StrategyRoute, StrategyCustomPath, StrategySlug}
	got := chain.Strategies()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRedirectStrategyInChain(t *testing.T) {
	store := content.NewMemoryStore(content.StoreOptions{})
	target := seedItem(t, store, "target", domain.StatusDraft)
	final, _ := url.Parse("https://example.com/?p=" + target.String())
	follower := &stubFollower{final: final}

	chain, err := New(store, Config{
		Strategies: []string{StrategyRedirect, StrategySlug},
		Redirect:   RedirectConfig{Enabled: true, Follower: follower},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	id, res, ok := chain.Resolve(context.Background(), "https://short.example/abc")
	if !ok || id != target || res.Strategy != StrategyRedirect {
		t.Fatalf("unexpected resolution id=%d res=%+v ok=%v", id, res, ok)
	}
	if follower.calls != 1 {
		t.Fatalf("expected one follow, got %d", follower.calls)
	}
}

func TestValidateStrategies(t *testing.T) {
	if err := ValidateStrategies([]string{"route", " Slug "}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := ValidateStrategies([]string{"route", "guess"}); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
	if err := ValidateStrategies([]string{"slug", "slug"}); !errors.Is(err, ErrDuplicateStrategy) {
		t.Fatalf("expected ErrDuplicateStrategy, got %v", err)
	}
	if _, err := New(nil, Config{}); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("a/b/c/"); got != "c" {
		t.Fatalf("LastSegment() = %q", got)
	}
	if got := LastSegment(""); got != "" {
		t.Fatalf("LastSegment(empty) = %q", got)
	}
}

func TestChainLogsWithContextFields(t *testing.T) {
	rec := &ctxRecorder{}
	chain := NewChain([]Strategy{&stubStrategy{name: "only", id: 4, ok: true}}, WithLogger(rec))

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"run_id": "run-7"})
	if _, _, ok := chain.Resolve(ctx, "https://example.com/x"); !ok {
		t.Fatal("expected match")
	}
	if len(rec.seen) != 1 || rec.seen[0]["run_id"] != "run-7" {
		t.Fatalf("expected run_id to reach the logger, got %v", rec.seen)
	}
}

type ctxRecorder struct {
	seen []map[string]any
}

func (r *ctxRecorder) Trace(string, ...any) {}
func (r *ctxRecorder) Debug(string, ...any) {}
func (r *ctxRecorder) Info(string, ...any)  {}
func (r *ctxRecorder) Warn(string, ...any)  {}
func (r *ctxRecorder) Error(string, ...any) {}
func (r *ctxRecorder) Fatal(string, ...any) {}

func (r *ctxRecorder) WithContext(ctx context.Context) interfaces.Logger {
	r.seen = append(r.seen, logging.ContextFields(ctx))
	return r
}
