package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alorle/iptv-viewer/internal/cache"
	"github.com/alorle/iptv-viewer/internal/circuitbreaker"
	"github.com/alorle/iptv-viewer/internal/metrics"
)

const (
	defaultFetchTimeout = 8 * time.Second
	defaultUserAgent    = "Mozilla/5.0"
)

// HTTPFetcherConfig configures a PlaylistHTTPFetcher.
// Zero values fall back to the defaults; Cache and Breakers are optional.
type HTTPFetcherConfig struct {
	Timeout   time.Duration
	UserAgent string

	// Cache keeps the last good body of every URL. It is only read when the
	// upstream request fails, and entries older than CacheTTL are ignored.
	// A CacheTTL of zero keeps entries forever.
	Cache    cache.Storage
	CacheTTL time.Duration

	// Breakers guards each upstream host; every playlist URL on a host
	// shares one breaker. Cancelled fetches are not counted.
	Breakers *circuitbreaker.Set
}

// PlaylistHTTPFetcher retrieves playlists over HTTP.
// It implements the driven.PlaylistFetcher port.
type PlaylistHTTPFetcher struct {
	client    *http.Client
	userAgent string
	cache     cache.Storage
	cacheTTL  time.Duration
	breakers  *circuitbreaker.Set
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlaylistHTTPFetcher creates a fetcher. If client is nil, a client with
// cfg.Timeout is created; redirects are followed either way.
func NewPlaylistHTTPFetcher(cfg HTTPFetcherConfig, client *http.Client, logger *slog.Logger) *PlaylistHTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PlaylistHTTPFetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		breakers:  cfg.Breakers,
		logger:    logger,
		now:       time.Now,
	}
}

// Fetch downloads the body at rawURL. When the download fails and a cached
// copy of the same URL exists, the cached copy is returned instead.
func (f *PlaylistHTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := f.guarded(ctx, rawURL)
	if err == nil {
		metrics.RecordFetch("upstream")
		f.store(rawURL, body)
		return body, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	if cached, ok := f.lookup(rawURL); ok {
		f.logger.Warn("serving cached playlist after fetch failure",
			"url", rawURL,
			"error", err,
			"age", cached.Age(f.now()).Round(time.Second).String(),
		)
		metrics.RecordFetch("stale_cache")
		return cached.Content, nil
	}

	metrics.RecordFetch("error")
	return nil, err
}

func (f *PlaylistHTTPFetcher) guarded(ctx context.Context, rawURL string) ([]byte, error) {
	if f.breakers == nil {
		return f.download(ctx, rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing playlist URL: %w", err)
	}

	var body []byte
	err = f.breakers.Get(u.Host).Execute(func() error {
		var err error
		body, err = f.download(ctx, rawURL)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrHalfOpenLimitReached) {
		return nil, fmt.Errorf("fetching playlist from %s: %w", u.Host, err)
	}
	return body, err
}

func (f *PlaylistHTTPFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (f *PlaylistHTTPFetcher) store(rawURL string, body []byte) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(rawURL, body); err != nil {
		f.logger.Warn("failed to cache playlist", "url", rawURL, "error", err)
	}
}

func (f *PlaylistHTTPFetcher) lookup(rawURL string) (*cache.Entry, bool) {
	if f.cache == nil {
		return nil, false
	}

	entry, err := f.cache.Get(rawURL)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			f.logger.Warn("failed to read cached playlist", "url", rawURL, "error", err)
		}
		return nil, false
	}
	if entry.Expired(f.now(), f.cacheTTL) {
		return nil, false
	}
	return entry, true
}
