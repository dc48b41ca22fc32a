package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/goliatone/go-status-updater/internal/content"
)

var (
	ErrTooManyRedirects = errors.New("resolver: too many redirects")
	ErrUnexpectedStatus = errors.New("resolver: unexpected response status")
)

var shortlinkPattern = regexp.MustCompile(`[?&]p=(\d+)`)

// Follower issues a request for rawURL, follows redirects and returns the final URL.
type Follower interface {
	Follow(ctx context.Context, rawURL string) (*url.URL, error)
}

// RedirectStrategy follows the URL and reads a "p" shortlink parameter from where it lands.
type RedirectStrategy struct {
	Follower Follower
}

func (RedirectStrategy) Name() string { return StrategyRedirect }

func (s RedirectStrategy) Resolve(ctx context.Context, target Target) (content.ItemID, bool, error) {
	if s.Follower == nil || target.Raw == "" {
		return 0, false, nil
	}
	final, err := s.Follower.Follow(ctx, target.Raw)
	if err != nil {
		return 0, false, err
	}
	if final == nil {
		return 0, false, nil
	}
	id, ok := ShortlinkID(final.String())
	return id, ok, nil
}

// ShortlinkID extracts the identifier from a "?p=N" style URL.
func ShortlinkID(raw string) (content.ItemID, bool) {
	match := shortlinkPattern.FindStringSubmatch(raw)
	if len(match) != 2 {
		return 0, false
	}
	id, err := content.ParseItemID(match[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// HTTPConfig tunes the HTTP follower.
type HTTPConfig struct {
	// Timeout bounds the whole exchange, redirects included.
	Timeout      time.Duration
	DialTimeout  time.Duration
	MaxRedirects int
	UserAgent    string
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:      3 * time.Second,
		DialTimeout:  2 * time.Second,
		MaxRedirects: 5,
		UserAgent:    "go-status-updater/1.0",
	}
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	defaults := DefaultHTTPConfig()
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaults.DialTimeout
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaults.MaxRedirects
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	return c
}

// HTTPFollower follows redirects with HEAD requests.
type HTTPFollower struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

var _ Follower = (*HTTPFollower)(nil)

func NewHTTPFollower(cfg HTTPConfig) *HTTPFollower {
	cfg = cfg.withDefaults()

	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}

	return &HTTPFollower{
		client:    client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
	}
}

func (f *HTTPFollower) Follow(ctx context.Context, rawURL string) (*url.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Request.URL, nil
}
