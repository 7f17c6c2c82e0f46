// internal/workers/eligibility/find-program-matches/config.go
package findprogrammatches

import (
	"time"

	"eligibility-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// ConfigFrom reads the worker's timeout from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
