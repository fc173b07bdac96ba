// Package keywords canonicalizes free-form profile keywords. Synonymous and
// near-duplicate terms within a field namespace collapse onto a single
// representative, first through fixed override rules and then through
// similarity clustering.
package keywords

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/WiDayn/AutoTopicSum/internal/logger"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
)

// DefaultThreshold is the minimum similarity for two keywords to be merged.
const DefaultThreshold = 0.7

// Persistence stores the canonical mapping and the stats of the last batch
// run across process restarts. *store.Store satisfies it.
type Persistence interface {
	LoadMapping() (map[string]map[string]string, error)
	SaveMapping(mapping map[string]map[string]string) error
	LoadStats() ([]byte, error)
	SaveStats(stats []byte) error
}

// Encoder canonicalizes keyword field values. It is safe for concurrent use.
type Encoder struct {
	engine    *similarity.Engine
	threshold float64
	persist   Persistence

	mu        sync.Mutex
	mapping   map[string]map[string]string // namespace -> original -> canonical
	lastStats *Stats
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithThreshold overrides the merge threshold.
func WithThreshold(t float64) Option {
	return func(e *Encoder) { e.threshold = t }
}

// WithPersistence attaches a mapping store. Previously persisted state is
// loaded immediately; load failures are logged and start from empty state.
func WithPersistence(p Persistence) Option {
	return func(e *Encoder) { e.persist = p }
}

// NewEncoder builds an encoder on top of a similarity engine.
func NewEncoder(engine *similarity.Engine, opts ...Option) *Encoder {
	e := &Encoder{
		engine:    engine,
		threshold: DefaultThreshold,
		mapping:   make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.persist != nil {
		e.loadPersisted()
	}
	return e
}

func (e *Encoder) loadPersisted() {
	mapping, err := e.persist.LoadMapping()
	if err != nil {
		logger.Warn("failed to load encoding mapping, starting empty", "error", err)
	} else if mapping != nil {
		e.mapping = mapping
	}

	raw, err := e.persist.LoadStats()
	if err != nil {
		logger.Warn("failed to load clustering stats", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}
	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		logger.Warn("failed to decode clustering stats", "error", err)
		return
	}
	e.lastStats = &stats
}

// EncodeField canonicalizes one '/'-joined keyword field value. The input is
// split, each keyword is rewritten by the namespace rules and then by the
// clustering representative, and the surviving keywords are deduplicated in
// order of first appearance. A value with no usable keywords is returned
// unchanged.
func (e *Encoder) EncodeField(ctx context.Context, namespace, value string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encodeFieldLocked(ctx, namespace, value)
}

func (e *Encoder) encodeFieldLocked(ctx context.Context, namespace, value string) string {
	parts := splitKeywords(value)
	if len(parts) == 0 {
		return value
	}

	afterRules := applyRules(namespace, parts)

	repMap := e.globalRepMap(namespace)
	if repMap == nil && len(afterRules) > 1 {
		repMap, _, _ = e.cluster(ctx, afterRules)
	}

	final := make([]string, len(afterRules))
	for i, kw := range afterRules {
		canonical := kw
		if rep, ok := repMap[kw]; ok {
			canonical = rep
		}
		final[i] = canonical
		if canonical != parts[i] {
			e.recordMapping(namespace, parts[i], canonical)
		}
	}

	return strings.Join(dedupOrdered(final), "/")
}

// BatchEncode canonicalizes keyword fields across many entities at once. All
// keywords seen in a namespace are clustered together, so the same term maps
// to the same representative everywhere. The run's mapping and stats are
// persisted when a store is attached.
func (e *Encoder) BatchEncode(ctx context.Context, entities map[string]map[string]string) map[string]map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchEncodeLocked(ctx, entities)
}

func (e *Encoder) batchEncodeLocked(ctx context.Context, entities map[string]map[string]string) map[string]map[string]string {
	stats := &Stats{Timestamp: time.Now(), Fields: make(map[string]*FieldStats)}

	byNamespace := make(map[string]map[string]struct{})
	for _, fields := range entities {
		for ns, value := range fields {
			set, ok := byNamespace[ns]
			if !ok {
				set = make(map[string]struct{})
				byNamespace[ns] = set
			}
			for _, kw := range splitKeywords(value) {
				set[kw] = struct{}{}
			}
		}
	}

	for ns, set := range byNamespace {
		raw := sortedKeys(set)
		afterRules := dedupOrdered(applyRules(ns, raw))
		_, matrix, details := e.cluster(ctx, afterRules)

		fs := &FieldStats{
			BeforeCount: len(raw),
			Clusters:    details,
			Matrix:      matrix,
		}
		fs.TotalClusters = len(details)
		for _, d := range details {
			if d.Size > 1 {
				fs.ClusteredKeywords += d.Size
			}
		}
		stats.Fields[ns] = fs
	}
	e.lastStats = stats

	out := make(map[string]map[string]string, len(entities))
	encodedByNS := make(map[string]map[string]struct{})
	for name, fields := range entities {
		encoded := make(map[string]string, len(fields))
		for ns, value := range fields {
			result := e.encodeFieldLocked(ctx, ns, value)
			encoded[ns] = result
			set, ok := encodedByNS[ns]
			if !ok {
				set = make(map[string]struct{})
				encodedByNS[ns] = set
			}
			for _, kw := range splitKeywords(result) {
				set[kw] = struct{}{}
			}
		}
		out[name] = encoded
	}

	for ns, fs := range stats.Fields {
		fs.AfterCount = len(encodedByNS[ns])
		fs.Reduction = fs.BeforeCount - fs.AfterCount
		if fs.BeforeCount > 0 {
			fs.ReductionRate = float64(fs.Reduction) / float64(fs.BeforeCount)
		}
	}

	e.saveLocked()
	return out
}

// Reconcile re-encodes every previously persisted keyword under the current
// rules and threshold, rewriting stale mappings. Call it after changing
// either.
func (e *Encoder) Reconcile(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.mapping) == 0 {
		return
	}

	fields := make(map[string]string, len(e.mapping))
	for ns, m := range e.mapping {
		origs := make(map[string]struct{}, len(m))
		for orig := range m {
			origs[orig] = struct{}{}
		}
		fields[ns] = strings.Join(sortedKeys(origs), "/")
	}
	e.batchEncodeLocked(ctx, map[string]map[string]string{"_reconcile": fields})
}

// Record returns a copy of the encoder's mapping, last stats, and threshold.
func (e *Encoder) Record() Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	mapping := make(map[string]map[string]string, len(e.mapping))
	for ns, m := range e.mapping {
		inner := make(map[string]string, len(m))
		for k, v := range m {
			inner[k] = v
		}
		mapping[ns] = inner
	}
	return Record{Mapping: mapping, Stats: e.lastStats, Threshold: e.threshold}
}

// cluster groups keywords by similarity and returns the keyword to
// representative mapping along with the matrix and per-group details.
//
// Clustering is single-pass: representatives are not re-clustered against
// each other, so re-encoding an already encoded value can merge further when
// the surviving representatives are themselves within merge distance
// (average linkage can hold apart keywords whose representatives later meet
// pairwise). Batch runs avoid this by clustering a namespace's full
// vocabulary at once.
func (e *Encoder) cluster(ctx context.Context, kws []string) (map[string]string, *similarity.Matrix, []ClusterDetail) {
	unique := dedupOrdered(kws)
	repMap := make(map[string]string, len(unique))
	if len(unique) == 0 {
		return repMap, nil, nil
	}
	if len(unique) == 1 {
		repMap[unique[0]] = unique[0]
		return repMap, nil, []ClusterDetail{{Representative: unique[0], Members: unique, Size: 1}}
	}

	matrix := e.engine.Matrix(ctx, unique)
	groups, err := hierarchicalGroups(matrix, 1-e.threshold)
	if err != nil {
		logger.Warn("hierarchical clustering failed, using greedy fallback", "error", err)
		groups = greedyGroups(matrix, e.threshold)
	}

	details := make([]ClusterDetail, 0, len(groups))
	for _, group := range groups {
		members := make([]string, len(group))
		for i, idx := range group {
			members[i] = unique[idx]
		}
		rep := chooseRepresentative(members)
		for _, member := range members {
			repMap[member] = rep
		}
		details = append(details, ClusterDetail{Representative: rep, Members: members, Size: len(members)})
	}
	return repMap, matrix, details
}

// globalRepMap rebuilds the keyword mapping from the last batch run for one
// namespace, or nil when no batch has covered it.
func (e *Encoder) globalRepMap(namespace string) map[string]string {
	if e.lastStats == nil {
		return nil
	}
	fs, ok := e.lastStats.Fields[namespace]
	if !ok || len(fs.Clusters) == 0 {
		return nil
	}
	repMap := make(map[string]string)
	for _, c := range fs.Clusters {
		for _, member := range c.Members {
			repMap[member] = c.Representative
		}
	}
	return repMap
}

func (e *Encoder) recordMapping(namespace, original, canonical string) {
	m, ok := e.mapping[namespace]
	if !ok {
		m = make(map[string]string)
		e.mapping[namespace] = m
	}
	m[original] = canonical
}

func (e *Encoder) saveLocked() {
	if e.persist == nil {
		return
	}
	if err := e.persist.SaveMapping(e.mapping); err != nil {
		logger.Warn("failed to persist encoding mapping", "error", err)
	}
	raw, err := json.Marshal(e.lastStats)
	if err != nil {
		logger.Warn("failed to encode clustering stats", "error", err)
		return
	}
	if err := e.persist.SaveStats(raw); err != nil {
		logger.Warn("failed to persist clustering stats", "error", err)
	}
}

func splitKeywords(value string) []string {
	parts := strings.Split(value, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupOrdered(kws []string) []string {
	seen := make(map[string]struct{}, len(kws))
	out := make([]string, 0, len(kws))
	for _, kw := range kws {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
