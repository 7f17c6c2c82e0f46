// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"eligibility-workers/internal/eligibility/assets"
	"eligibility-workers/internal/eligibility/threshold"
)

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig               `mapstructure:"app"`
	Camunda     CamundaConfig           `mapstructure:"camunda"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Workers     map[string]WorkerConfig `mapstructure:"workers"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	Metrics     MetricsConfig           `mapstructure:"metrics"`
	Eligibility EligibilityConfig       `mapstructure:"eligibility"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Port        int    `mapstructure:"port"`
	ServiceName string `mapstructure:"service_name"`
}

// Rule sources for EligibilityConfig.RuleSource.
const (
	RuleSourcePostgres = "postgres"
	RuleSourceFile     = "file"
)

// EligibilityConfig configures where program rules come from and the
// reference tables the evaluation core is built with.
type EligibilityConfig struct {
	RuleSource  string `mapstructure:"rule_source"`
	CatalogPath string `mapstructure:"catalog_path"`
	CacheTTL    int    `mapstructure:"cache_ttl"` // seconds; 0 disables the candidate cache

	// Routing skips programs outside the applicant's classified pathways.
	DisablePathwayRouting bool `mapstructure:"disable_pathway_routing"`

	// Empty tables fall back to the built-in 2026 defaults.
	PovertyGuidelines []threshold.Guideline `mapstructure:"poverty_guidelines"`
	AssetLimits       []assets.AssetLimit   `mapstructure:"asset_limits"`
}

// CacheDuration is CacheTTL as a time.Duration.
func (e EligibilityConfig) CacheDuration() time.Duration {
	return time.Duration(e.CacheTTL) * time.Second
}

// GuidelineTable builds the configured poverty guideline table.
func (e EligibilityConfig) GuidelineTable() (*threshold.Table, error) {
	if len(e.PovertyGuidelines) == 0 {
		return threshold.DefaultTable(), nil
	}
	return threshold.NewTable(e.PovertyGuidelines)
}

// AssetTable builds the configured asset limit table.
func (e EligibilityConfig) AssetTable() (*assets.Table, error) {
	if len(e.AssetLimits) == 0 {
		return assets.DefaultTable(), nil
	}
	return assets.NewTable(e.AssetLimits)
}
