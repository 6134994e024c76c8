package policy

import (
	"testing"

	"github.com/opensource-finance/shrike/internal/domain"
)

func TestEngineCreation(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.Count() != 0 {
		t.Errorf("expected 0 policies, got %d", engine.Count())
	}
}

func TestLoadPolicy(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	cfg := &domain.PolicyConfig{
		ID:         "high-score",
		Name:       "High Score",
		Expression: "score >= 0.9",
		Tag:        "high_confidence",
		Enabled:    true,
	}

	if err := engine.Load(cfg); err != nil {
		t.Fatalf("failed to load policy: %v", err)
	}
	if engine.Count() != 1 {
		t.Errorf("expected 1 policy, got %d", engine.Count())
	}
}

func TestLoadInvalidPolicy(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	cfg := &domain.PolicyConfig{
		ID:         "broken",
		Expression: "this is not valid CEL !!!",
		Tag:        "broken",
		Enabled:    true,
	}
	if err := engine.Load(cfg); err == nil {
		t.Error("expected error for invalid CEL expression")
	}
}

func TestLoadNonBoolPolicy(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	cfg := &domain.PolicyConfig{
		ID:         "numeric",
		Expression: "score * 2.0",
		Tag:        "numeric",
		Enabled:    true,
	}
	if err := engine.Load(cfg); err == nil {
		t.Error("expected error for non-bool expression")
	}
}

func TestLoadPolicyWithoutTag(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	cfg := &domain.PolicyConfig{
		ID:         "untagged",
		Expression: "score >= 0.5",
		Enabled:    true,
	}
	if err := engine.Load(cfg); err == nil {
		t.Error("expected error for policy without tag")
	}
}

func TestTags(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	engine.Load(&domain.PolicyConfig{
		ID:         "high-score",
		Expression: "score >= 0.9",
		Tag:        "high_confidence",
		Enabled:    true,
	})
	engine.Load(&domain.PolicyConfig{
		ID:         "sanctions-dob",
		Expression: "category == 'sanctions' && dob_match",
		Tag:        "sanctions_dob_confirmed",
		Enabled:    true,
	})
	engine.Load(&domain.PolicyConfig{
		ID:         "pep-only",
		Expression: "category == 'pep'",
		Tag:        "pep",
		Enabled:    true,
	})

	tags := engine.Tags(&domain.PolicyInput{
		Score:        0.95,
		NameScore:    0.90,
		DOBMatch:     true,
		CountryMatch: true,
		ListCode:     "ofac",
		Category:     "sanctions",
		EntityKind:   "individual",
	})

	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d: %v", len(tags), tags)
	}
	// Tags are sorted for stable output.
	if tags[0] != "high_confidence" || tags[1] != "sanctions_dob_confirmed" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestTagsNoPolicies(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	if tags := engine.Tags(&domain.PolicyInput{Score: 1.0}); tags != nil {
		t.Errorf("expected nil tags, got %v", tags)
	}
}

func TestReload(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	engine.Load(&domain.PolicyConfig{
		ID: "old", Expression: "score >= 0.5", Tag: "old", Enabled: true,
	})

	err := engine.Reload([]*domain.PolicyConfig{
		{ID: "new-1", Expression: "score >= 0.8", Tag: "new1", Enabled: true},
		{ID: "new-2", Expression: "dob_match", Tag: "new2", Enabled: true},
		{ID: "disabled", Expression: "true", Tag: "off", Enabled: false},
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if engine.Count() != 2 {
		t.Errorf("expected 2 policies after reload, got %d", engine.Count())
	}
}
