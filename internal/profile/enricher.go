package profile

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/keywords"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

// DefaultMaxConcurrency bounds parallel profile generation calls.
const DefaultMaxConcurrency = 5

// Cache persists generated profiles across runs. *store.Store satisfies it.
type Cache interface {
	GetProfile(name string) (core.MediaProfile, bool, error)
	SaveProfile(name string, profile core.MediaProfile) error
}

// Result is the outcome of one source's profile lookup.
type Result struct {
	Source  string
	Profile core.MediaProfile
	Cached  bool
	Err     error
}

// Enricher resolves profiles for sets of sources: cached profiles are reused,
// the rest are generated concurrently, and all keyword fields pass through
// the canonical encoder together so equivalent terms unify across sources.
type Enricher struct {
	generator      Generator
	cache          Cache
	encoder        *keywords.Encoder
	maxConcurrency int64
	group          singleflight.Group
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithCache attaches a profile cache.
func WithCache(c Cache) EnricherOption {
	return func(e *Enricher) { e.cache = c }
}

// WithEncoder attaches the keyword encoder applied to generated profiles.
func WithEncoder(enc *keywords.Encoder) EnricherOption {
	return func(e *Enricher) { e.encoder = enc }
}

// WithMaxConcurrency overrides the generation concurrency bound.
func WithMaxConcurrency(n int64) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// NewEnricher creates an enricher around a profile generator.
func NewEnricher(generator Generator, opts ...EnricherOption) *Enricher {
	e := &Enricher{generator: generator, maxConcurrency: DefaultMaxConcurrency}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profiles resolves one Result per distinct source, in first-appearance
// order. Generation failures land in the Result, never abort the batch.
func (e *Enricher) Profiles(ctx context.Context, sources []string) []Result {
	distinct := make([]string, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		distinct = append(distinct, s)
	}

	results := make([]Result, len(distinct))
	sem := semaphore.NewWeighted(e.maxConcurrency)
	var wg sync.WaitGroup

	for i, source := range distinct {
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = Result{Source: source, Err: err}
				return
			}
			defer sem.Release(1)
			results[i] = e.resolve(ctx, source)
		}(i, source)
	}
	wg.Wait()

	e.encodeResults(ctx, results)
	return results
}

// resolve returns the cached profile when present, generating otherwise.
// Concurrent requests for the same source share one generation call.
func (e *Enricher) resolve(ctx context.Context, source string) Result {
	if e.cache != nil {
		profile, ok, err := e.cache.GetProfile(source)
		if err != nil {
			logger.Warn("profile cache read failed", "source", source, "error", err)
		} else if ok {
			return Result{Source: source, Profile: profile, Cached: true}
		}
	}

	v, err, _ := e.group.Do(source, func() (any, error) {
		profile, err := e.generator.Profile(ctx, source)
		if err != nil {
			return core.MediaProfile{}, err
		}
		if e.cache != nil {
			if saveErr := e.cache.SaveProfile(source, profile); saveErr != nil {
				logger.Warn("profile cache write failed", "source", source, "error", saveErr)
			}
		}
		return profile, nil
	})
	if err != nil {
		logger.Warn("profile generation failed", "source", source, "error", err)
		return Result{Source: source, Err: err}
	}
	return Result{Source: source, Profile: v.(core.MediaProfile)}
}

// encodeResults canonicalizes the keyword fields of every successful profile
// in one batch, so clustering sees all sources' keywords together.
func (e *Enricher) encodeResults(ctx context.Context, results []Result) {
	if e.encoder == nil {
		return
	}

	entities := make(map[string]map[string]string)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		fields := make(map[string]string, len(core.FieldNamespaces))
		for _, ns := range core.FieldNamespaces {
			fields[ns] = r.Profile.Field(ns)
		}
		entities[r.Source] = fields
	}
	if len(entities) == 0 {
		return
	}

	encoded := e.encoder.BatchEncode(ctx, entities)
	for i := range results {
		fields, ok := encoded[results[i].Source]
		if !ok {
			continue
		}
		for ns, value := range fields {
			results[i].Profile.SetField(ns, value)
		}
	}
}
