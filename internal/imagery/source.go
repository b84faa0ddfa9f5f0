package imagery

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gizatt/skybox/internal/fetch"
	"github.com/gizatt/skybox/internal/metrics"
)

// Resolved is the outcome of probing one satellite's image sources.
// Timestamp is always a valid instant; "now" stands in when no reliable
// signal was found.
type Resolved struct {
	URL       string
	Image     image.Image
	Timestamp time.Time
}

// Deps carries the injected collaborators a source needs.
type Deps struct {
	Client fetch.Doer
	Loader Loader
	Logger *slog.Logger
}

// Source discovers the most recent available image for one satellite.
// Absence — every candidate failed, nothing matched — is a nil result, never
// an error; per-candidate faults are swallowed so a flaky mirror cannot poison
// resolution.
type Source interface {
	RecentImage(ctx context.Context, deps Deps) *Resolved
}

// CandidateList probes a fixed ordered list of known URLs, highest resolution
// first, and stops at the first that loads.
type CandidateList struct {
	Satellite string
	URLs      []string
}

func (s *CandidateList) RecentImage(ctx context.Context, deps Deps) *Resolved {
	for _, candidate := range s.URLs {
		resolved := s.probe(ctx, deps, candidate)
		if resolved == nil {
			metrics.RecordImageProbe(s.Satellite, "miss")
			continue
		}
		metrics.RecordImageProbe(s.Satellite, "hit")
		return resolved
	}
	return nil
}

func (s *CandidateList) probe(ctx context.Context, deps Deps, candidate string) *Resolved {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		deps.Logger.Debug("bad candidate URL", "satellite", s.Satellite, "url", candidate, "error", err)
		return nil
	}

	resp, err := deps.Client.Do(req)
	if err != nil {
		deps.Logger.Debug("candidate unreachable", "satellite", s.Satellite, "url", candidate, "error", err)
		return nil
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		deps.Logger.Debug("candidate rejected", "satellite", s.Satellite, "url", candidate, "status", resp.StatusCode)
		return nil
	}

	// Redirects may land on a timestamped filename even when the candidate
	// itself is a stable "latest" alias.
	finalURL := candidate
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	ts := captureTime(finalURL, resp.Header, time.Now().UTC())

	img, err := deps.Loader.Load(ctx, finalURL)
	if err != nil {
		deps.Logger.Debug("candidate image failed to load", "satellite", s.Satellite, "url", finalURL, "error", err)
		return nil
	}

	return &Resolved{URL: finalURL, Image: img, Timestamp: ts}
}

// captureTime derives the capture instant in priority order: filename
// pattern in the final URL, then the Last-Modified header, then now.
func captureTime(url string, headers http.Header, now time.Time) time.Time {
	if ts, ok := TimeFromURL(url); ok {
		return ts
	}
	if lm := headers.Get("Last-Modified"); lm != "" {
		if ts, err := http.ParseTime(lm); err == nil {
			return ts.UTC()
		}
	}
	return now
}

// DirectoryListing fetches an HTML index, selects the lexicographically
// greatest filename matching the satellite's pattern, and loads that single
// image. The filename's 11-digit YYYYDDDHHMM token is the authoritative
// capture time.
type DirectoryListing struct {
	Satellite string
	URL       string
	Pattern   *regexp.Regexp
}

func (s *DirectoryListing) RecentImage(ctx context.Context, deps Deps) *Resolved {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		deps.Logger.Debug("bad listing URL", "satellite", s.Satellite, "url", s.URL, "error", err)
		return nil
	}

	resp, err := deps.Client.Do(req)
	if err != nil {
		deps.Logger.Debug("listing unreachable", "satellite", s.Satellite, "url", s.URL, "error", err)
		metrics.RecordImageProbe(s.Satellite, "miss")
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		deps.Logger.Debug("listing rejected", "satellite", s.Satellite, "url", s.URL, "status", resp.StatusCode)
		metrics.RecordImageProbe(s.Satellite, "miss")
		return nil
	}

	body, err := fetch.ReadBody(resp)
	if err != nil {
		deps.Logger.Debug("listing read failed", "satellite", s.Satellite, "url", s.URL, "error", err)
		metrics.RecordImageProbe(s.Satellite, "miss")
		return nil
	}

	names := s.Pattern.FindAllString(string(body), -1)
	if len(names) == 0 {
		deps.Logger.Debug("no listing entries matched", "satellite", s.Satellite, "url", s.URL)
		metrics.RecordImageProbe(s.Satellite, "miss")
		return nil
	}

	// Timestamped names sort chronologically; take the greatest.
	sort.Strings(names)
	latest := names[len(names)-1]

	ts, ok := TimeFromListingToken(latest)
	if !ok {
		deps.Logger.Debug("listing entry has no decodable timestamp", "satellite", s.Satellite, "name", latest)
		ts = time.Now().UTC()
	}

	fileURL := strings.TrimRight(s.URL, "/") + "/" + latest
	img, err := deps.Loader.Load(ctx, fileURL)
	if err != nil {
		deps.Logger.Debug("listing image failed to load", "satellite", s.Satellite, "url", fileURL, "error", err)
		metrics.RecordImageProbe(s.Satellite, "miss")
		return nil
	}

	metrics.RecordImageProbe(s.Satellite, "hit")
	return &Resolved{URL: fileURL, Image: img, Timestamp: ts}
}
