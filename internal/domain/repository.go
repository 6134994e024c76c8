// Package domain defines the core interfaces and types for Shrike.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Screening results
	SaveResult(ctx context.Context, tenantID string, result *ScreeningResult) error
	GetResult(ctx context.Context, tenantID string, resultID string) (*ScreeningResult, error)
	ListResults(ctx context.Context, tenantID string, since time.Time, limit int) ([]*ScreeningResult, error)

	// Match review
	UpdateDisposition(ctx context.Context, tenantID string, resultID string, seq int, d Disposition) (*ScreeningResult, error)

	// Match policy configuration
	SavePolicyConfig(ctx context.Context, tenantID string, policy *PolicyConfig) error
	GetPolicyConfig(ctx context.Context, tenantID string, policyID string) (*PolicyConfig, error)
	ListPolicyConfigs(ctx context.Context, tenantID string) ([]*PolicyConfig, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
