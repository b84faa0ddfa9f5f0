package frame

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gizatt/skybox/internal/config"
	"github.com/gizatt/skybox/internal/elemcache"
	"github.com/gizatt/skybox/internal/fetch"
	"github.com/gizatt/skybox/internal/imagery"
	"github.com/gizatt/skybox/internal/metrics"
	"github.com/gizatt/skybox/internal/tle"
)

// Resolver produces the full set of satellite frames for one catalog. Each
// satellite resolves independently; a failure for one never fails the others.
type Resolver struct {
	cfg      *config.Config
	elements *elemcache.Cache
	deps     imagery.Deps
	logger   *slog.Logger
}

// NewResolver wires a resolver from its injected collaborators.
func NewResolver(cfg *config.Config, elements *elemcache.Cache, client fetch.Doer, loader imagery.Loader, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:      cfg,
		elements: elements,
		deps: imagery.Deps{
			Client: client,
			Loader: loader,
			Logger: logger.With("component", "imagery"),
		},
		logger: logger.With("component", "resolver"),
	}
}

// elementSet is the parsed outcome of fetching one element source URL.
type elementSet struct {
	entries []tle.Entry
	err     error
}

// ResolveAll resolves every configured satellite and returns whichever
// succeeded. Image resolution and element-set fetches run concurrently;
// each distinct element source URL is fetched once per pass.
func (r *Resolver) ResolveAll(ctx context.Context) []Frame {
	start := time.Now()
	sats := r.cfg.Satellites

	// One fetch per distinct element source URL, concurrent with imagery.
	elements := make(map[string]*elementSet)
	var wg sync.WaitGroup
	for _, sat := range sats {
		if _, ok := elements[sat.ElementsURL]; ok {
			continue
		}
		out := &elementSet{}
		elements[sat.ElementsURL] = out
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			body, err := r.elements.FetchText(ctx, url, elemcache.Options{TTL: r.cfg.Cache.TTL()})
			if err != nil {
				out.err = err
				return
			}
			out.entries, out.err = tle.Parse(strings.NewReader(body), r.logger)
		}(sat.ElementsURL)
	}

	images := make([]*imagery.Resolved, len(sats))
	for i, sat := range sats {
		wg.Add(1)
		go func(i int, sat config.Satellite) {
			defer wg.Done()
			images[i] = r.imageSource(sat).RecentImage(ctx, r.deps)
		}(i, sat)
	}

	wg.Wait()

	frames := make([]Frame, 0, len(sats))
	for i, sat := range sats {
		f, ok := r.assembleOne(sat, images[i], elements[sat.ElementsURL])
		if !ok {
			continue
		}
		frames = append(frames, f)
	}

	metrics.RecordResolvePass(time.Since(start), len(frames))
	r.logger.Info("resolution pass complete",
		"satellites", len(sats),
		"frames", len(frames),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return frames
}

func (r *Resolver) assembleOne(sat config.Satellite, resolved *imagery.Resolved, elems *elementSet) (Frame, bool) {
	if resolved == nil {
		r.logger.Info("no image available", "satellite", sat.ID)
		return Frame{}, false
	}
	if elems.err != nil {
		r.logger.Warn("element set unavailable", "satellite", sat.ID, "error", elems.err)
		return Frame{}, false
	}

	entry, ok := tle.Find(elems.entries, sat.Aliases)
	if !ok {
		r.logger.Warn("no element entry matched aliases", "satellite", sat.ID, "aliases", sat.Aliases)
		return Frame{}, false
	}

	f, err := Assemble(sat.ID, resolved, entry, sat.FOV())
	if err != nil {
		r.logger.Warn("frame assembly failed", "satellite", sat.ID, "error", err)
		return Frame{}, false
	}

	r.logger.Info("frame resolved",
		"satellite", sat.ID,
		"image_url", f.ImageURL,
		"timestamp", f.Timestamp.Format(time.RFC3339),
		"aspect", f.Aspect,
		"fov_deg", f.FieldOfViewDeg,
		"expected_fov_deg", ExpectedFieldOfView(f.PositionECEF),
	)
	return f, true
}

func (r *Resolver) imageSource(sat config.Satellite) imagery.Source {
	switch sat.ImageStrategy {
	case config.StrategyListing:
		return &imagery.DirectoryListing{Satellite: sat.ID, URL: sat.ListingURL, Pattern: sat.ListingRe}
	default:
		// Config validation leaves only the candidate-list strategy here.
		return &imagery.CandidateList{Satellite: sat.ID, URLs: sat.ImageURLs}
	}
}
