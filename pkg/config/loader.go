package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Loader reads configuration from an optional file and the environment.
type Loader struct {
	configFile string
	envPrefix  string
}

// NewLoader creates a loader. configFile may be empty; envPrefix is the
// prefix for environment variables, e.g. "CLUBCORE".
func NewLoader(configFile, envPrefix string) *Loader {
	return &Loader{configFile: configFile, envPrefix: envPrefix}
}

// Load resolves the configuration with precedence ENV > file > defaults
// and validates the result.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("service.name", d.Service.Name)
	v.SetDefault("service.environment", d.Service.Environment)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", d.HTTP.IdleTimeout)

	v.SetDefault("management.enabled", d.Management.Enabled)
	v.SetDefault("management.port", d.Management.Port)
	v.SetDefault("management.read_timeout", d.Management.ReadTimeout)
	v.SetDefault("management.write_timeout", d.Management.WriteTimeout)

	v.SetDefault("mongodb.url", d.MongoDB.URL)
	v.SetDefault("mongodb.database", d.MongoDB.Database)
	v.SetDefault("mongodb.connect_timeout", d.MongoDB.ConnectTimeout)
	v.SetDefault("mongodb.operation_timeout", d.MongoDB.OperationTimeout)

	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.endpoint", d.Storage.Endpoint)
	v.SetDefault("storage.use_path_style", d.Storage.UsePathStyle)
	v.SetDefault("storage.public_base_url", d.Storage.PublicBaseURL)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.async", d.Logging.Async)

	v.SetDefault("cors.enabled", d.CORS.Enabled)
	v.SetDefault("cors.allow_origins", d.CORS.AllowOrigins)
	v.SetDefault("cors.allow_methods", d.CORS.AllowMethods)
	v.SetDefault("cors.allow_headers", d.CORS.AllowHeaders)
	v.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	v.SetDefault("cors.max_age_seconds", d.CORS.MaxAgeSeconds)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// bindEnvVars binds environment variables explicitly; viper does not
// discover nested keys from the environment on its own.
func (l *Loader) bindEnvVars(v *viper.Viper) {
	bind := func(key, env string) {
		v.BindEnv(key, l.envPrefix+"_"+env)
	}

	bind("service.name", "SERVICE_NAME")
	bind("service.environment", "SERVICE_ENVIRONMENT")

	bind("http.port", "HTTP_PORT")
	bind("http.read_timeout", "HTTP_READ_TIMEOUT")
	bind("http.write_timeout", "HTTP_WRITE_TIMEOUT")
	bind("http.idle_timeout", "HTTP_IDLE_TIMEOUT")

	bind("management.enabled", "MGMT_ENABLED")
	bind("management.port", "MGMT_PORT")
	bind("management.read_timeout", "MGMT_READ_TIMEOUT")
	bind("management.write_timeout", "MGMT_WRITE_TIMEOUT")

	bind("mongodb.url", "MONGODB_URL")
	bind("mongodb.database", "MONGODB_DATABASE")
	bind("mongodb.connect_timeout", "MONGODB_CONNECT_TIMEOUT")
	bind("mongodb.operation_timeout", "MONGODB_OPERATION_TIMEOUT")

	bind("storage.enabled", "STORAGE_ENABLED")
	bind("storage.region", "STORAGE_REGION")
	bind("storage.bucket", "STORAGE_BUCKET")
	bind("storage.endpoint", "STORAGE_ENDPOINT")
	bind("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	bind("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	bind("storage.use_path_style", "STORAGE_USE_PATH_STYLE")
	bind("storage.public_base_url", "STORAGE_PUBLIC_BASE_URL")

	bind("logging.level", "LOG_LEVEL")
	bind("logging.format", "LOG_FORMAT")
	bind("logging.async", "LOG_ASYNC")

	bind("cors.enabled", "CORS_ENABLED")
	bind("cors.allow_origins", "CORS_ALLOW_ORIGINS")
	bind("cors.allow_methods", "CORS_ALLOW_METHODS")
	bind("cors.allow_headers", "CORS_ALLOW_HEADERS")
	bind("cors.allow_credentials", "CORS_ALLOW_CREDENTIALS")
	bind("cors.max_age_seconds", "CORS_MAX_AGE_SECONDS")

	bind("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	bind("rate_limit.requests_per_second", "RATE_LIMIT_RPS")
	bind("rate_limit.burst", "RATE_LIMIT_BURST")

	bind("tracing.enabled", "TRACING_ENABLED")
	bind("tracing.endpoint", "TRACING_ENDPOINT")
	bind("tracing.sample_rate", "TRACING_SAMPLE_RATE")
}
