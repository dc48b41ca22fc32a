package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestHTTPFollowerFollowsToShortlink(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
		agents  []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		agents = append(agents, r.UserAgent())
		mu.Unlock()
		switch r.URL.Path {
		case "/go/launch":
			http.Redirect(w, r, "/moved", http.StatusMovedPermanently)
		case "/moved":
			http.Redirect(w, r, "/?p=42", http.StatusFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	strategy := RedirectStrategy{Follower: NewHTTPFollower(HTTPConfig{UserAgent: "tests/1"})}
	id, ok, err := strategy.Resolve(context.Background(), Target{Raw: server.URL + "/go/launch"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ok || id != 42 {
		t.Fatalf("expected id 42, got %d ok=%v", id, ok)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(methods) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(methods))
	}
	for i, method := range methods {
		if method != http.MethodHead {
			t.Fatalf("request %d used %s", i, method)
		}
		if agents[i] != "tests/1" {
			t.Fatalf("request %d sent user agent %q", i, agents[i])
		}
	}
}

func TestHTTPFollowerRejectsNonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/missing?p=7", http.StatusFound)
	}))
	defer server.Close()

	// every hop redirects, so the limit trips first
	_, err := NewHTTPFollower(HTTPConfig{MaxRedirects: 2}).Follow(context.Background(), server.URL+"/start")
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	_, err = NewHTTPFollower(HTTPConfig{}).Follow(context.Background(), notFound.URL+"/?p=7")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestHTTPFollowerTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	follower := NewHTTPFollower(HTTPConfig{Timeout: 50 * time.Millisecond})
	start := time.Now()
	if _, err := follower.Follow(context.Background(), server.URL); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}
}

func TestShortlinkID(t *testing.T) {
	cases := []struct {
		raw  string
		id   int64
		want bool
	}{
		{"https://example.com/?p=12", 12, true},
		{"https://example.com/?lang=en&p=7", 7, true},
		{"https://example.com/?page=3", 0, false},
		{"https://example.com/?p=0", 0, false},
		{"https://example.com/hello", 0, false},
	}
	for _, tc := range cases {
		id, ok := ShortlinkID(tc.raw)
		if ok != tc.want || int64(id) != tc.id {
			t.Fatalf("ShortlinkID(%q) = %d %v", tc.raw, id, ok)
		}
	}
}

func TestRedirectStrategyWithoutMatch(t *testing.T) {
	follower := &stubFollower{}
	id, ok, err := RedirectStrategy{Follower: follower}.Resolve(context.Background(), Target{Raw: "https://example.com"})
	if err != nil || ok || id != 0 {
		t.Fatalf("expected no match, got id=%d ok=%v err=%v", id, ok, err)
	}
}
