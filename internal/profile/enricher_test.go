package profile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/keywords"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	profiles map[string]core.MediaProfile
	errs     map[string]error
}

func (g *fakeGenerator) Profile(_ context.Context, source string) (core.MediaProfile, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if err, ok := g.errs[source]; ok {
		return core.MediaProfile{}, err
	}
	return g.profiles[source], nil
}

type fakeCache struct {
	mu       sync.Mutex
	profiles map[string]core.MediaProfile
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: make(map[string]core.MediaProfile)}
}

func (c *fakeCache) GetProfile(name string) (core.MediaProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[name]
	return p, ok, nil
}

func (c *fakeCache) SaveProfile(name string, p core.MediaProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[name] = p
	return nil
}

func TestProfilesDeduplicatesSources(t *testing.T) {
	gen := &fakeGenerator{profiles: map[string]core.MediaProfile{
		"cnn": {Category: "新闻媒体"},
	}}
	e := NewEnricher(gen)

	results := e.Profiles(context.Background(), []string{"cnn", "cnn", "", "cnn"})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestProfilesUsesCache(t *testing.T) {
	cache := newFakeCache()
	cache.profiles["cnn"] = core.MediaProfile{Category: "新闻媒体"}
	gen := &fakeGenerator{}
	e := NewEnricher(gen, WithCache(cache))

	results := e.Profiles(context.Background(), []string{"cnn"})
	if len(results) != 1 || !results[0].Cached {
		t.Fatalf("expected cached result, got %+v", results)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times for cached source", gen.calls)
	}
}

func TestProfilesWritesCacheAfterGeneration(t *testing.T) {
	cache := newFakeCache()
	gen := &fakeGenerator{profiles: map[string]core.MediaProfile{
		"bbc": {Location: "英国"},
	}}
	e := NewEnricher(gen, WithCache(cache))

	e.Profiles(context.Background(), []string{"bbc"})
	if _, ok := cache.profiles["bbc"]; !ok {
		t.Error("generated profile was not cached")
	}
}

func TestProfilesIsolatesFailures(t *testing.T) {
	gen := &fakeGenerator{
		profiles: map[string]core.MediaProfile{"good": {Category: "新闻媒体"}},
		errs:     map[string]error{"bad": errors.New("model unavailable")},
	}
	e := NewEnricher(gen)

	results := e.Profiles(context.Background(), []string{"good", "bad"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Source] = r
	}
	if byName["good"].Err != nil {
		t.Errorf("good source failed: %v", byName["good"].Err)
	}
	if byName["bad"].Err == nil {
		t.Error("bad source should carry its error")
	}
}

func TestProfilesEncodesKeywords(t *testing.T) {
	gen := &fakeGenerator{profiles: map[string]core.MediaProfile{
		"xinhua": {Location: "中国大陆", Category: "新闻机构"},
	}}
	enc := keywords.NewEncoder(similarity.NewEngine(nil))
	e := NewEnricher(gen, WithEncoder(enc))

	results := e.Profiles(context.Background(), []string{"xinhua"})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if got := results[0].Profile.Location; got != "中国" {
		t.Errorf("location = %q, want 中国", got)
	}
	if got := results[0].Profile.Category; got != "新闻媒体" {
		t.Errorf("category = %q, want 新闻媒体", got)
	}
}
