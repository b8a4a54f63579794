package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for values that cannot work at
// runtime. It returns all problems joined together rather than the
// first one found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Service.Name == "" {
		errs = append(errs, errors.New("service.name must not be empty"))
	}

	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", cfg.HTTP.Port))
	}
	if cfg.Management.Enabled {
		if cfg.Management.Port < 1 || cfg.Management.Port > 65535 {
			errs = append(errs, fmt.Errorf("management.port must be between 1 and 65535, got %d", cfg.Management.Port))
		}
		if cfg.Management.Port == cfg.HTTP.Port {
			errs = append(errs, fmt.Errorf("management.port must differ from http.port (%d)", cfg.HTTP.Port))
		}
	}

	if cfg.MongoDB.URL == "" {
		errs = append(errs, errors.New("mongodb.url must not be empty"))
	}
	if cfg.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database must not be empty"))
	}
	if cfg.MongoDB.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("mongodb.connect_timeout must be positive"))
	}
	if cfg.MongoDB.OperationTimeout <= 0 {
		errs = append(errs, errors.New("mongodb.operation_timeout must be positive"))
	}

	if cfg.Storage.Enabled {
		if cfg.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket must not be empty when storage is enabled"))
		}
		if cfg.Storage.Region == "" {
			errs = append(errs, errors.New("storage.region must not be empty when storage is enabled"))
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("rate_limit.requests_per_second must be positive"))
		}
		if cfg.RateLimit.Burst <= 0 {
			errs = append(errs, errors.New("rate_limit.burst must be positive"))
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint must not be empty when tracing is enabled"))
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			errs = append(errs, fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", cfg.Tracing.SampleRate))
		}
	}

	return errors.Join(errs...)
}
