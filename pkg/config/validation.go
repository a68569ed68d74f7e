package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/rowguard/internal/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg after defaults have been applied. Struct tags are
// checked first, then the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("telemetry.profiling.endpoint is required when profiling is enabled")
	}

	for _, pt := range cfg.Telemetry.Profiling.ProfileTypes {
		if !telemetry.ValidProfileType(pt) {
			return fmt.Errorf("telemetry.profiling: unknown profile type %q", pt)
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.API.Port {
		return fmt.Errorf("metrics.port and api.port must differ (both %d)", cfg.API.Port)
	}

	if cfg.API.JWT.RefreshTokenDuration > 0 && cfg.API.JWT.RefreshTokenDuration < cfg.API.JWT.AccessTokenDuration {
		return fmt.Errorf("api.jwt.refresh_token_duration must not be shorter than access_token_duration")
	}

	return nil
}
