package elemcache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gizatt/skybox/internal/fetch"
	"github.com/gizatt/skybox/internal/metrics"
)

// StatusError reports an element fetch that failed with no cached fallback.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d and no cached copy", e.URL, e.Status)
}

// Options control one FetchText call.
type Options struct {
	// TTL is how long a stored entry is served without any network access.
	TTL time.Duration
	// Revalidate forces a conditional request even inside the TTL window.
	Revalidate bool
}

// Cache serves element-set text through the persistent store, revalidating
// with conditional GETs and degrading to stale content on network failure.
type Cache struct {
	store  Store
	client fetch.Doer
	logger *slog.Logger
}

// New creates a Cache over the given store and HTTP strategy.
func New(store Store, client fetch.Doer, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		client: client,
		logger: logger.With("component", "elemcache"),
	}
}

// FetchText returns the element text for url. A stored entry younger than
// opts.TTL is returned with zero network access unless opts.Revalidate is
// set. Otherwise a conditional GET runs; 304 refreshes validators and keeps
// the stored body, success replaces the record, and any failure falls back to
// the stored body when one exists.
func (c *Cache) FetchText(ctx context.Context, url string, opts Options) (string, error) {
	cached, haveCached, err := c.store.Get(ctx, url)
	if err != nil {
		// A broken store read is recoverable; the network path still works.
		c.logger.Warn("cache read failed", "url", url, "error", err)
		haveCached = false
	}

	now := time.Now().UTC()
	if haveCached && !opts.Revalidate && cached.Fresh(now) {
		metrics.RecordElementFetch("fresh_hit")
		return cached.Body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", url, err)
	}
	// Defeat intermediate caches so the conditional headers reach the origin.
	req.Header.Set("Cache-Control", "no-cache")
	if haveCached {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if haveCached {
			c.logger.Warn("element fetch failed, serving stale copy",
				"url", url, "age", now.Sub(cached.FetchedAt).Round(time.Second).String(), "error", err)
			metrics.RecordElementFetch("stale")
			return cached.Body, nil
		}
		metrics.RecordElementFetch("error")
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusNotModified {
		// Keep the stored body; refresh validators and advance FetchedAt.
		resp.Body.Close()
		entry := cached
		entry.URL = url
		entry.ETag = pickHeader(resp.Header, "ETag", cached.ETag)
		entry.LastModified = pickHeader(resp.Header, "Last-Modified", cached.LastModified)
		entry.FetchedAt = now
		entry.TTL = opts.TTL
		c.persist(ctx, entry)
		metrics.RecordElementFetch("revalidated")
		return entry.Body, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		if haveCached {
			c.logger.Warn("element fetch failed, serving stale copy",
				"url", url, "status", resp.StatusCode, "age", now.Sub(cached.FetchedAt).Round(time.Second).String())
			metrics.RecordElementFetch("stale")
			return cached.Body, nil
		}
		metrics.RecordElementFetch("error")
		return "", &StatusError{URL: url, Status: resp.StatusCode}
	}

	body, err := fetch.ReadBody(resp)
	if err != nil {
		if haveCached {
			c.logger.Warn("element body read failed, serving stale copy", "url", url, "error", err)
			metrics.RecordElementFetch("stale")
			return cached.Body, nil
		}
		metrics.RecordElementFetch("error")
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}

	entry := Entry{
		URL:          url,
		Body:         string(body),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    now,
		TTL:          opts.TTL,
	}
	c.persist(ctx, entry)
	metrics.RecordElementFetch("fetched")
	return entry.Body, nil
}

// persist writes an entry, logging rather than failing: the body is already
// in hand and a write error only costs the next process a refetch.
func (c *Cache) persist(ctx context.Context, entry Entry) {
	if err := c.store.Put(ctx, entry); err != nil {
		c.logger.Warn("cache write failed", "url", entry.URL, "error", err)
	}
}

func pickHeader(h http.Header, key, fallback string) string {
	if v := h.Get(key); v != "" {
		return v
	}
	return fallback
}
