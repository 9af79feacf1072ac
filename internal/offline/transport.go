package offline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"skyeserver/internal/cache"
)

const offlineBody = `{"error":{"code":"OFFLINE","message":"You are offline. Please check your connection."}}`

// Transport intercepts viewer requests. Requests under the API prefix go
// to the network first and become a synthetic 503 when it is unreachable.
// Other GETs are served from the active cache version when present, and
// stored there after a successful fetch otherwise.
type Transport struct {
	base      http.RoundTripper
	cache     *cache.Cache
	apiPrefix string
	logger    zerolog.Logger

	mu      sync.RWMutex
	version string
}

func NewTransport(base http.RoundTripper, c *cache.Cache, version, apiPrefix string, logger zerolog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:      base,
		cache:     c,
		apiPrefix: apiPrefix,
		logger:    logger,
		version:   version,
	}
}

func (t *Transport) Version() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasPrefix(req.URL.Path, t.apiPrefix) {
		return t.networkFirst(req)
	}
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}
	return t.cacheFirst(req)
}

func (t *Transport) networkFirst(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Context().Err() != nil {
		return nil, err
	}

	t.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("api unreachable, answering offline")
	return &http.Response{
		Status:        "503 Service Unavailable",
		StatusCode:    http.StatusServiceUnavailable,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(strings.NewReader(offlineBody)),
		ContentLength: int64(len(offlineBody)),
		Request:       req,
	}, nil
}

func (t *Transport) cacheFirst(req *http.Request) (*http.Response, error) {
	key := cache.Key(t.Version(), req.URL.String())
	if raw, ok := t.cache.Get(key); ok {
		resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), req)
		if err == nil {
			return resp, nil
		}
		t.cache.Delete(key)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		t.store(key, resp)
	}
	return resp, nil
}

// store keeps a serialized copy of resp. DumpResponse leaves resp.Body
// readable for the caller.
func (t *Transport) store(key string, resp *http.Response) {
	raw, err := httputil.DumpResponse(resp, true)
	if err != nil {
		t.logger.Debug().Err(err).Str("key", key).Msg("response not cached")
		return
	}
	t.cache.Set(key, raw)
}

// Install fetches every url into the current version. A single failure
// aborts the install so a version is never half populated.
func (t *Transport) Install(ctx context.Context, urls []string) error {
	version := t.Version()
	var installed []string

	for _, u := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			t.rollback(version, installed)
			return fmt.Errorf("precache %s: %w", u, err)
		}
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			t.rollback(version, installed)
			return fmt.Errorf("precache %s: %w", u, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			t.rollback(version, installed)
			return fmt.Errorf("precache %s: status %d", u, resp.StatusCode)
		}
		key := cache.Key(version, req.URL.String())
		t.store(key, resp)
		resp.Body.Close()
		installed = append(installed, key)
	}

	t.logger.Info().Str("version", version).Int("count", len(installed)).Msg("offline cache installed")
	return nil
}

// Activate switches to version and drops every entry of older versions.
func (t *Transport) Activate(version string) int {
	t.mu.Lock()
	t.version = version
	t.mu.Unlock()

	removed := t.cache.DeleteFunc(func(key string) bool {
		return cache.VersionOf(key) != version
	})
	if removed > 0 {
		t.logger.Info().Str("version", version).Int("removed", removed).Msg("dropped stale offline cache entries")
	}
	return removed
}

func (t *Transport) rollback(version string, keys []string) {
	for _, key := range keys {
		t.cache.Delete(key)
	}
	if len(keys) > 0 {
		t.logger.Debug().Str("version", version).Int("count", len(keys)).Msg("precache rolled back")
	}
}
