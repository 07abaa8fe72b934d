package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"immoscope/internal/dataset"
	"immoscope/internal/logging"
)

// Resolution constants, fixed so results are reproducible across runs.
const (
	dvfWindowMonths = 12

	// INSEE-derived estimation: standard affordability ratio over a reference
	// surface, converted to a sale price at an assumed gross yield.
	incomeToRentRatio   = 0.30
	referenceSurfaceSqm = 40.0
	grossYieldAssumed   = 0.04

	proximityNeighbours = 3
)

// DefaultRetryBackoff is the pause before the single retry of an unavailable
// source.
const DefaultRetryBackoff = 200 * time.Millisecond

// source is one resolution tier. A nil estimate with nil error means the
// source has no data for the query; ErrSourceUnavailable (wrapped) means a
// transient failure worth one retry.
type source interface {
	Tier() Source
	Resolve(ctx context.Context, q Query) (*PriceEstimate, error)
}

// ResolverOptions tune cache and retry behavior. Zero values select defaults.
type ResolverOptions struct {
	CacheTTL     time.Duration
	RetryBackoff time.Duration
	Now          func() time.Time // test hook
	Sleep        func(time.Duration)
}

// Resolver attempts sources in priority order and returns the first usable
// estimate. Adding, reordering or disabling a source is a change to the
// sources slice, not to the resolution loop.
type Resolver struct {
	sources []source
	cache   *ttlCache
	logger  *logging.AppLogger
	backoff time.Duration
	sleep   func(time.Duration)
}

// NewResolver wires the standard three-tier chain: DVF, INSEE, proximity.
func NewResolver(ds *dataset.Dataset, geo Geocoder, dvf DVFClient, insee INSEEClient, logger *logging.AppLogger, opts ResolverOptions) *Resolver {
	sources := []source{
		&dvfSource{geo: geo, dvf: dvf},
		&inseeSource{geo: geo, insee: insee},
		&proximitySource{ds: ds, geo: geo},
	}
	return newResolver(sources, logger, opts)
}

func newResolver(sources []source, logger *logging.AppLogger, opts ResolverOptions) *Resolver {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 6 * time.Hour
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Resolver{
		sources: sources,
		cache:   newTTLCache(opts.CacheTTL, opts.Now),
		logger:  logger,
		backoff: opts.RetryBackoff,
		sleep:   opts.Sleep,
	}
}

// Resolve returns a price estimate for a free-text location. Within the cache
// TTL, repeated calls for the same normalized location return identical
// estimates without touching the adapters.
func (r *Resolver) Resolve(ctx context.Context, location string) (*PriceEstimate, error) {
	q, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	if cached, ok := r.cache.get(q.Normalized); ok {
		r.logger.Debug("Market data served from cache", "location", q.Normalized, "source", cached.Source)
		return &cached, nil
	}

	for _, src := range r.sources {
		estimate, err := r.attempt(ctx, src, q)
		if err != nil {
			// Transient failure after retry: treat the source as unavailable
			// and advance to the next tier.
			r.logger.Warn("Market data source failed, advancing to next tier",
				"source", src.Tier(), "location", q.Normalized, "error", err)
			continue
		}
		if estimate == nil {
			r.logger.Debug("Market data source has no data",
				"source", src.Tier(), "location", q.Normalized)
			continue
		}

		estimate.Location = q.Normalized
		r.cache.put(q.Normalized, *estimate)
		r.logger.Info("Market data resolved",
			"location", q.Normalized,
			"source", estimate.Source,
			"confidence", estimate.Confidence,
			"sample_size", estimate.SampleSize,
		)
		return estimate, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoDataAvailable, q.Normalized)
}

// attempt runs one source, retrying once with a short backoff when the source
// reports a transient failure.
func (r *Resolver) attempt(ctx context.Context, src source, q Query) (*PriceEstimate, error) {
	estimate, err := src.Resolve(ctx, q)
	if err == nil || !errors.Is(err, ErrSourceUnavailable) {
		return estimate, err
	}

	r.logger.Debug("Source unavailable, retrying once",
		"source", src.Tier(), "location", q.Normalized, "error", err)
	r.sleep(r.backoff)

	return src.Resolve(ctx, q)
}
