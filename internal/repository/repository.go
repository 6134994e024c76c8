// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a screening result and its matches with tenant isolation.
// The result row and match rows are written in a single transaction.
func (r *SQLRepository) SaveResult(ctx context.Context, tenantID string, result *domain.ScreeningResult) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if result == nil || result.ID == "" {
		return fmt.Errorf("%w: result with ID is required", ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	isDemo := 0
	if result.IsDemoData {
		isDemo = 1
	}

	resultQuery := `
		INSERT INTO screening_results (
			id, tenant_id, record_id, record_name, status, is_demo_data, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := tx.ExecContext(ctx, r.rebind(resultQuery),
		result.ID, tenantID, result.RecordID, result.RecordName,
		result.Status, isDemo, result.Timestamp,
	); err != nil {
		return err
	}

	matchQuery := `
		INSERT INTO screening_matches (
			result_id, seq, tenant_id, match_id, score, entry, detail, disposition, tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, m := range result.Matches {
		entry, _ := json.Marshal(m.Entry)
		detail, _ := json.Marshal(m.Detail)
		tags, _ := json.Marshal(m.Tags)

		if _, err := tx.ExecContext(ctx, r.rebind(matchQuery),
			result.ID, m.Seq, tenantID, m.ID, m.Score,
			string(entry), string(detail), m.Disposition, string(tags),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetResult retrieves a screening result by ID with tenant isolation.
func (r *SQLRepository) GetResult(ctx context.Context, tenantID string, resultID string) (*domain.ScreeningResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, record_id, record_name, status, is_demo_data, timestamp
		FROM screening_results
		WHERE tenant_id = ? AND id = ?
	`

	var result domain.ScreeningResult
	var isDemo int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, resultID).Scan(
		&result.ID, &result.TenantID, &result.RecordID, &result.RecordName,
		&result.Status, &isDemo, &result.Timestamp,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result.IsDemoData = isDemo == 1

	matches, err := r.loadMatches(ctx, tenantID, resultID)
	if err != nil {
		return nil, err
	}
	result.Matches = matches

	return &result, nil
}

func (r *SQLRepository) loadMatches(ctx context.Context, tenantID, resultID string) ([]domain.ScreeningMatch, error) {
	query := `
		SELECT seq, match_id, score, entry, detail, disposition, tags
		FROM screening_matches
		WHERE tenant_id = ? AND result_id = ?
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.ScreeningMatch
	for rows.Next() {
		var m domain.ScreeningMatch
		var entry, detail string
		var tags sql.NullString

		if err := rows.Scan(&m.Seq, &m.ID, &m.Score, &entry, &detail, &m.Disposition, &tags); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(entry), &m.Entry); err != nil {
			return nil, fmt.Errorf("failed to parse match entry: %w", err)
		}
		if err := json.Unmarshal([]byte(detail), &m.Detail); err != nil {
			return nil, fmt.Errorf("failed to parse match detail: %w", err)
		}
		if tags.Valid && tags.String != "" {
			json.Unmarshal([]byte(tags.String), &m.Tags)
		}

		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// ListResults retrieves screening results for a tenant since a given time,
// newest first, capped at limit.
func (r *SQLRepository) ListResults(ctx context.Context, tenantID string, since time.Time, limit int) ([]*domain.ScreeningResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, tenant_id, record_id, record_name, status, is_demo_data, timestamp
		FROM screening_results
		WHERE tenant_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScreeningResult
	for rows.Next() {
		var result domain.ScreeningResult
		var isDemo int

		if err := rows.Scan(
			&result.ID, &result.TenantID, &result.RecordID, &result.RecordName,
			&result.Status, &isDemo, &result.Timestamp,
		); err != nil {
			return nil, err
		}

		result.IsDemoData = isDemo == 1
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, result := range results {
		matches, err := r.loadMatches(ctx, tenantID, result.ID)
		if err != nil {
			return nil, err
		}
		result.Matches = matches
	}

	return results, nil
}

// UpdateDisposition sets the review disposition of one match and recomputes
// the parent result's status from the full disposition set.
func (r *SQLRepository) UpdateDisposition(ctx context.Context, tenantID string, resultID string, seq int, d domain.Disposition) (*domain.ScreeningResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown disposition %q", ErrInvalidInput, d)
	}

	updateMatch := `
		UPDATE screening_matches
		SET disposition = ?
		WHERE tenant_id = ? AND result_id = ? AND seq = ?
	`

	res, err := r.db.ExecContext(ctx, r.rebind(updateMatch), d, tenantID, resultID, seq)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	result, err := r.GetResult(ctx, tenantID, resultID)
	if err != nil {
		return nil, err
	}

	result.DeriveStatus()

	updateResult := `
		UPDATE screening_results
		SET status = ?
		WHERE tenant_id = ? AND id = ?
	`

	if _, err := r.db.ExecContext(ctx, r.rebind(updateResult), result.Status, tenantID, resultID); err != nil {
		return nil, err
	}

	return result, nil
}

// SavePolicyConfig stores a policy configuration with tenant isolation.
func (r *SQLRepository) SavePolicyConfig(ctx context.Context, tenantID string, policy *domain.PolicyConfig) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	enabled := 0
	if policy.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO policy_configs (
			id, tenant_id, name, description, version, expression, tag, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			tag = excluded.tag,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		policy.ID, tenantID, policy.Name, policy.Description,
		policy.Version, policy.Expression, policy.Tag, enabled,
		now, now,
	)
	return err
}

// GetPolicyConfig retrieves a policy configuration with tenant isolation.
func (r *SQLRepository) GetPolicyConfig(ctx context.Context, tenantID string, policyID string) (*domain.PolicyConfig, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, tag, enabled
		FROM policy_configs
		WHERE tenant_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var cfg domain.PolicyConfig
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, policyID).Scan(
		&cfg.ID, &cfg.TenantID, &cfg.Name, &cfg.Description,
		&cfg.Version, &cfg.Expression, &cfg.Tag, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Enabled = enabled == 1

	return &cfg, nil
}

// ListPolicyConfigs retrieves all active policy configurations for a tenant.
func (r *SQLRepository) ListPolicyConfigs(ctx context.Context, tenantID string) ([]*domain.PolicyConfig, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, tag, enabled
		FROM policy_configs
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.PolicyConfig
	for rows.Next() {
		var cfg domain.PolicyConfig
		var enabled int

		if err := rows.Scan(
			&cfg.ID, &cfg.TenantID, &cfg.Name, &cfg.Description,
			&cfg.Version, &cfg.Expression, &cfg.Tag, &enabled,
		); err != nil {
			return nil, err
		}

		cfg.Enabled = enabled == 1
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
