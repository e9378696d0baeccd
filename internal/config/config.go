package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure. It contains
// settings for the environment, the HTTP server, the validation engine and
// graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Validator contains the settings of the batch validation engine.
	Validator struct {
		// Concurrency is the maximum number of URL validations in flight at once
		Concurrency int `env:"VALIDATOR_CONCURRENCY" env-default:"3" yaml:"concurrency"`
		// AttemptTimeout bounds each individual fetch attempt
		AttemptTimeout time.Duration `env:"VALIDATOR_ATTEMPT_TIMEOUT" env-default:"8s" yaml:"attemptTimeout"`
		// MaxAttempts is the total number of fetch attempts per URL, including the first
		MaxAttempts int `env:"VALIDATOR_MAX_ATTEMPTS" env-default:"2" yaml:"maxAttempts"`
		// BackoffBase is the base of the linear backoff between attempts (base * attempt)
		BackoffBase time.Duration `env:"VALIDATOR_BACKOFF_BASE" env-default:"1s" yaml:"backoffBase"`
		// BatchPause is the pacing delay inserted between consecutive batches
		BatchPause time.Duration `env:"VALIDATOR_BATCH_PAUSE" env-default:"500ms" yaml:"batchPause"`
		// MaxContentLength is the largest declared payload size accepted, in bytes
		MaxContentLength int64 `env:"VALIDATOR_MAX_CONTENT_LENGTH" env-default:"10485760" yaml:"maxContentLength"`
		// CacheTTL is the time a validation result stays reusable in the result cache
		CacheTTL time.Duration `env:"VALIDATOR_CACHE_TTL" env-default:"5m" yaml:"cacheTTL"`
		// UserAgent overrides the identifying header sent with every fetch
		UserAgent string `env:"VALIDATOR_USER_AGENT" env-default:"" yaml:"userAgent"`
	} `yaml:"validator"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for a yaml config file and returns a filled Config
// struct. An empty path skips the file and reads environment variables plus
// defaults only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
