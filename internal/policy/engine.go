// Package policy provides the CEL-Go based match policy engine.
// Policies tag screening matches for reviewer triage; they are
// advisory and never change scores or match decisions.
package policy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/opensource-finance/shrike/internal/domain"
)

// Engine compiles and evaluates match policies.
type Engine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled map[string]*CompiledPolicy
}

// CompiledPolicy holds a pre-compiled CEL program.
type CompiledPolicy struct {
	Config  *domain.PolicyConfig
	Program cel.Program
}

// NewEngine creates a new policy engine.
func NewEngine() (*Engine, error) {
	// CEL environment exposing the match fields policies can inspect
	env, err := cel.NewEnv(
		cel.Variable("score", cel.DoubleType),
		cel.Variable("name_score", cel.DoubleType),
		cel.Variable("dob_match", cel.BoolType),
		cel.Variable("country_match", cel.BoolType),
		cel.Variable("list_code", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("entity_kind", cel.StringType),
		cel.Variable("matched_alias", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:      env,
		compiled: make(map[string]*CompiledPolicy),
	}, nil
}

// Validate compiles a policy without loading it.
func (e *Engine) Validate(cfg *domain.PolicyConfig) error {
	if cfg == nil {
		return fmt.Errorf("policy config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compile(cfg)
	return err
}

// Load compiles and loads a policy into the engine.
func (e *Engine) Load(cfg *domain.PolicyConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compile(cfg)
	if err != nil {
		return err
	}

	e.compiled[cfg.ID] = compiled
	return nil
}

// Reload clears all existing policies and loads new ones.
// This enables hot-reloading of policies from the database.
func (e *Engine) Reload(configs []*domain.PolicyConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*CompiledPolicy)
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compile(cfg)
		if err != nil {
			return err
		}
		next[cfg.ID] = compiled
	}

	e.compiled = next
	return nil
}

// Tags evaluates every loaded policy against a match and returns the
// tags of the policies whose expression is true, sorted for stable
// output. Evaluation errors skip the policy rather than failing the
// screening run.
func (e *Engine) Tags(input *domain.PolicyInput) []string {
	e.mu.RLock()
	policies := make([]*CompiledPolicy, 0, len(e.compiled))
	for _, p := range e.compiled {
		policies = append(policies, p)
	}
	e.mu.RUnlock()

	if len(policies) == 0 {
		return nil
	}

	activation := map[string]any{
		"score":         input.Score,
		"name_score":    input.NameScore,
		"dob_match":     input.DOBMatch,
		"country_match": input.CountryMatch,
		"list_code":     input.ListCode,
		"category":      input.Category,
		"entity_kind":   input.EntityKind,
		"matched_alias": input.MatchedAlias,
	}

	var tags []string
	for _, p := range policies {
		out, _, err := p.Program.Eval(activation)
		if err != nil {
			continue
		}
		if b, ok := out.(types.Bool); ok && bool(b) {
			tags = append(tags, p.Config.Tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Count returns the number of loaded policies.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// Loaded returns the currently loaded policy configurations.
func (e *Engine) Loaded() []*domain.PolicyConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	configs := make([]*domain.PolicyConfig, 0, len(e.compiled))
	for _, p := range e.compiled {
		configs = append(configs, p.Config)
	}
	return configs
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = make(map[string]*CompiledPolicy)
	return nil
}

func (e *Engine) compile(cfg *domain.PolicyConfig) (*CompiledPolicy, error) {
	if cfg.Tag == "" {
		return nil, fmt.Errorf("policy %s: tag is required", cfg.ID)
	}

	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile policy %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for policy %s: %w", cfg.ID, err)
	}

	return &CompiledPolicy{
		Config:  cfg,
		Program: program,
	}, nil
}
