package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

func sampleResult(id, tenantID string) *domain.ScreeningResult {
	return &domain.ScreeningResult{
		ID:         id,
		TenantID:   tenantID,
		RecordID:   "rec-001",
		RecordName: "John Smith",
		Status:     domain.StatusPotentialMatch,
		IsDemoData: true,
		Timestamp:  time.Now().UTC(),
		Matches: []domain.ScreeningMatch{
			{
				ID:    "match-001",
				Seq:   0,
				Score: 0.92,
				Entry: domain.ListEntry{
					ID:       "entry-001",
					Name:     "John Smythe",
					Kind:     domain.KindIndividual,
					List:     domain.ListOFAC,
					Category: domain.CategorySanctions,
				},
				Detail: domain.MatchDetail{
					NameScore: domain.NameScore{
						Score:       0.92,
						Levenshtein: 0.8,
						JaroWinkler: 0.95,
						TokenSet:    1.0,
					},
					DOB:          domain.DOBCheck{Matches: true, Confidence: domain.DOBExact},
					CountryMatch: true,
				},
				Disposition: domain.DispositionPending,
				Tags:        []string{"high_confidence"},
			},
			{
				ID:    "match-002",
				Seq:   1,
				Score: 0.74,
				Entry: domain.ListEntry{
					ID:       "entry-002",
					Name:     "Jon Smith",
					Kind:     domain.KindIndividual,
					List:     domain.ListEU,
					Category: domain.CategorySanctions,
				},
				Detail: domain.MatchDetail{
					NameScore: domain.NameScore{Score: 0.74},
					DOB:       domain.DOBCheck{Confidence: domain.DOBNone},
				},
				Disposition: domain.DispositionPending,
			},
		},
	}
}

func TestSQLiteRepository(t *testing.T) {
	// Create temp database file
	tmpFile, err := os.CreateTemp("", "shrike-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetResult", func(t *testing.T) {
		result := sampleResult("result-001", tenantID)

		if err := repo.SaveResult(ctx, tenantID, result); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}

		retrieved, err := repo.GetResult(ctx, tenantID, result.ID)
		if err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}

		if retrieved.ID != result.ID {
			t.Errorf("expected ID %s, got %s", result.ID, retrieved.ID)
		}
		if retrieved.Status != domain.StatusPotentialMatch {
			t.Errorf("expected status %s, got %s", domain.StatusPotentialMatch, retrieved.Status)
		}
		if !retrieved.IsDemoData {
			t.Error("expected IsDemoData to survive round trip")
		}
		if len(retrieved.Matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(retrieved.Matches))
		}

		top := retrieved.Matches[0]
		if top.Seq != 0 || top.Score != 0.92 {
			t.Errorf("expected top match seq 0 score 0.92, got seq %d score %.2f", top.Seq, top.Score)
		}
		if top.Entry.Name != "John Smythe" {
			t.Errorf("expected entry name 'John Smythe', got %q", top.Entry.Name)
		}
		if top.Entry.List != domain.ListOFAC {
			t.Errorf("expected OFAC entry, got %s", top.Entry.List)
		}
		if top.Detail.DOB.Confidence != domain.DOBExact {
			t.Errorf("expected exact DOB confidence, got %s", top.Detail.DOB.Confidence)
		}
		if len(top.Tags) != 1 || top.Tags[0] != "high_confidence" {
			t.Errorf("expected tags to survive round trip, got %v", top.Tags)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		otherTenant := "tenant-002"

		_, err := repo.GetResult(ctx, otherTenant, "result-001")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		err := repo.SaveResult(ctx, "", sampleResult("result-x", ""))
		if err == nil {
			t.Error("expected error for empty tenantID")
		}

		_, err = repo.GetResult(ctx, "", "result-001")
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("ListResults", func(t *testing.T) {
		second := sampleResult("result-002", tenantID)
		second.Timestamp = time.Now().UTC().Add(time.Minute)
		if err := repo.SaveResult(ctx, tenantID, second); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}

		since := time.Now().Add(-1 * time.Hour)
		results, err := repo.ListResults(ctx, tenantID, since, 100)
		if err != nil {
			t.Fatalf("ListResults failed: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}

		// Newest first
		if results[0].ID != "result-002" {
			t.Errorf("expected newest result first, got %s", results[0].ID)
		}
		if len(results[0].Matches) != 2 {
			t.Errorf("expected matches to be loaded, got %d", len(results[0].Matches))
		}

		limited, err := repo.ListResults(ctx, tenantID, since, 1)
		if err != nil {
			t.Fatalf("ListResults with limit failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 result with limit 1, got %d", len(limited))
		}
	})

	t.Run("UpdateDisposition", func(t *testing.T) {
		updated, err := repo.UpdateDisposition(ctx, tenantID, "result-001", 0, domain.DispositionConfirmed)
		if err != nil {
			t.Fatalf("UpdateDisposition failed: %v", err)
		}

		if updated.Matches[0].Disposition != domain.DispositionConfirmed {
			t.Errorf("expected confirmed disposition, got %s", updated.Matches[0].Disposition)
		}
		if updated.Status != domain.StatusConfirmedMatch {
			t.Errorf("expected confirmed_match status, got %s", updated.Status)
		}

		// Status change persists
		retrieved, err := repo.GetResult(ctx, tenantID, "result-001")
		if err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}
		if retrieved.Status != domain.StatusConfirmedMatch {
			t.Errorf("expected persisted confirmed_match status, got %s", retrieved.Status)
		}
	})

	t.Run("DispositionFalsePositiveReverts", func(t *testing.T) {
		updated, err := repo.UpdateDisposition(ctx, tenantID, "result-001", 0, domain.DispositionFalsePositive)
		if err != nil {
			t.Fatalf("UpdateDisposition failed: %v", err)
		}

		// No confirmed matches remain, so the result drops back to review
		if updated.Status != domain.StatusPotentialMatch {
			t.Errorf("expected potential_match status, got %s", updated.Status)
		}
	})

	t.Run("DispositionValidation", func(t *testing.T) {
		_, err := repo.UpdateDisposition(ctx, tenantID, "result-001", 0, domain.Disposition("maybe"))
		if err == nil {
			t.Error("expected error for unknown disposition")
		}
	})

	t.Run("DispositionNotFound", func(t *testing.T) {
		_, err := repo.UpdateDisposition(ctx, tenantID, "result-001", 99, domain.DispositionConfirmed)
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for unknown seq, got: %v", err)
		}
	})

	t.Run("SaveAndGetPolicyConfig", func(t *testing.T) {
		policy := &domain.PolicyConfig{
			ID:         "policy-001",
			Name:       "High confidence",
			Version:    "1.0.0",
			Expression: `score >= 0.9`,
			Tag:        "high_confidence",
			Enabled:    true,
		}

		if err := repo.SavePolicyConfig(ctx, tenantID, policy); err != nil {
			t.Fatalf("SavePolicyConfig failed: %v", err)
		}

		retrieved, err := repo.GetPolicyConfig(ctx, tenantID, policy.ID)
		if err != nil {
			t.Fatalf("GetPolicyConfig failed: %v", err)
		}

		if retrieved.Tag != policy.Tag {
			t.Errorf("expected tag %s, got %s", policy.Tag, retrieved.Tag)
		}
		if retrieved.Expression != policy.Expression {
			t.Errorf("expected expression %q, got %q", policy.Expression, retrieved.Expression)
		}
	})

	t.Run("PolicyUpsert", func(t *testing.T) {
		policy := &domain.PolicyConfig{
			ID:         "policy-001",
			Name:       "High confidence",
			Version:    "1.0.0",
			Expression: `score >= 0.95`,
			Tag:        "very_high_confidence",
			Enabled:    true,
		}

		if err := repo.SavePolicyConfig(ctx, tenantID, policy); err != nil {
			t.Fatalf("SavePolicyConfig upsert failed: %v", err)
		}

		retrieved, err := repo.GetPolicyConfig(ctx, tenantID, policy.ID)
		if err != nil {
			t.Fatalf("GetPolicyConfig failed: %v", err)
		}
		if retrieved.Tag != "very_high_confidence" {
			t.Errorf("expected upserted tag, got %s", retrieved.Tag)
		}
	})

	t.Run("ListPolicyConfigs", func(t *testing.T) {
		second := &domain.PolicyConfig{
			ID:         "policy-002",
			Name:       "DOB confirmed",
			Version:    "1.0.0",
			Expression: `dob_match && category == "sanctions"`,
			Tag:        "sanctions_dob_confirmed",
			Enabled:    true,
		}
		if err := repo.SavePolicyConfig(ctx, tenantID, second); err != nil {
			t.Fatalf("SavePolicyConfig failed: %v", err)
		}

		configs, err := repo.ListPolicyConfigs(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListPolicyConfigs failed: %v", err)
		}
		if len(configs) != 2 {
			t.Errorf("expected 2 policies, got %d", len(configs))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetResult(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		_, err = repo.GetPolicyConfig(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := domain.RepositoryConfig{
		Driver: "mysql",
	}

	_, err := New(cfg)
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(domain.RepositoryConfig{
		PostgresHost:     "db.internal",
		PostgresPort:     5433,
		PostgresUser:     "screener",
		PostgresPassword: "secret",
		PostgresDB:       "shrike_prod",
		PostgresSSLMode:  "require",
	})

	for _, want := range []string{
		"host=db.internal",
		"port=5433",
		"dbname=shrike_prod",
		"sslmode=require",
		"user=screener",
		"password=secret",
		"application_name=shrike",
		"connect_timeout=5",
	} {
		if !strings.Contains(dsn, want) {
			t.Errorf("expected %q in dsn %q", want, dsn)
		}
	}

	// Defaults when nothing is configured, and no empty credentials.
	dsn = postgresDSN(domain.RepositoryConfig{})
	for _, want := range []string{"host=localhost", "port=5432", "dbname=shrike", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("expected %q in default dsn %q", want, dsn)
		}
	}
	if strings.Contains(dsn, "user=") || strings.Contains(dsn, "password=") {
		t.Errorf("unset credentials leaked into dsn %q", dsn)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("/var/lib/shrike/shrike.db")
	if !strings.HasPrefix(dsn, "file:/var/lib/shrike/shrike.db?") {
		t.Errorf("unexpected dsn prefix: %q", dsn)
	}
	for _, want := range []string{"journal_mode(WAL)", "busy_timeout(5000)", "foreign_keys(ON)"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("expected pragma %q in dsn %q", want, dsn)
		}
	}
}

func TestSQLiteInMemory(t *testing.T) {
	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	})
	if err != nil {
		t.Fatalf("in-memory open failed: %v", err)
	}
	defer repo.Close()

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}

func TestRebind(t *testing.T) {
	repo := &SQLRepository{driver: "postgres"}

	tests := []struct {
		input    string
		expected string
	}{
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"SELECT * FROM t", "SELECT * FROM t"},
	}

	for _, tt := range tests {
		result := repo.rebind(tt.input)
		if result != tt.expected {
			t.Errorf("rebind(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
