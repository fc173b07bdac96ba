package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Similarity.Threshold != 0.7 {
		t.Errorf("similarity.threshold = %v, want 0.7", cfg.Similarity.Threshold)
	}
	if cfg.Aggregator.RelevanceThreshold != 0.3 {
		t.Errorf("aggregator.relevance_threshold = %v, want 0.3", cfg.Aggregator.RelevanceThreshold)
	}
	if cfg.Aggregator.MaxConcurrency != 3 {
		t.Errorf("aggregator.max_concurrency = %v, want 3", cfg.Aggregator.MaxConcurrency)
	}
	if cfg.Timeline.DistanceThreshold != 0.6 {
		t.Errorf("timeline.distance_threshold = %v, want 0.6", cfg.Timeline.DistanceThreshold)
	}
	if cfg.Timeline.MembersThreshold != 2 {
		t.Errorf("timeline.members_threshold = %v, want 2", cfg.Timeline.MembersThreshold)
	}
	if cfg.Timeline.TimeWeight != 0.7 {
		t.Errorf("timeline.time_weight = %v, want 0.7", cfg.Timeline.TimeWeight)
	}
	if cfg.Profile.MaxConcurrency != 5 {
		t.Errorf("profile.max_concurrency = %v, want 5", cfg.Profile.MaxConcurrency)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("embedding.dimensions = %v, want 768", cfg.Embedding.Dimensions)
	}
}

func TestLoadCaches(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := Load("")
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}
	if first != second {
		t.Error("Load should return the cached config")
	}
	if Get() != first {
		t.Error("Get should return the cached config")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	bad := []*Config{
		{Similarity: Similarity{Threshold: 1.5}, Aggregator: Aggregator{MaxConcurrency: 1}, Timeline: Timeline{MembersThreshold: 1}},
		{Aggregator: Aggregator{RelevanceThreshold: -0.1, MaxConcurrency: 1}, Timeline: Timeline{MembersThreshold: 1}},
		{Aggregator: Aggregator{MaxConcurrency: 0}, Timeline: Timeline{MembersThreshold: 1}},
		{Aggregator: Aggregator{MaxConcurrency: 1}, Timeline: Timeline{MembersThreshold: 0}},
	}
	for i, cfg := range bad {
		if err := validate(cfg); err == nil {
			t.Errorf("validate(bad[%d]) passed, want error", i)
		}
	}
}
