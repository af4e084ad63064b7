// Package config loads the service configuration from the environment, with
// an optional YAML file overlay selected by SMPLX_CONFIG_FILE.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding the path of an
// optional YAML configuration file applied on top of the environment.
const ConfigFileEnv = "SMPLX_CONFIG_FILE"

type Config struct {
	Environment string `env:"ENV" envDefault:"development" yaml:"environment"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080" yaml:"port"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s" yaml:"read_timeout"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s" yaml:"write_timeout"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s" yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s" yaml:"shutdown_timeout"`
	} `yaml:"http"`
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
		Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr" yaml:"output"`
	} `yaml:"logging"`
	Optimization struct {
		WorkerCount        int     `env:"OPT_WORKER_COUNT" envDefault:"8" yaml:"worker_count"`
		FunctionTolerance  float64 `env:"OPT_FUNCTION_TOLERANCE" envDefault:"1e-8" yaml:"function_tolerance"`
		ParameterTolerance float64 `env:"OPT_PARAMETER_TOLERANCE" envDefault:"1e-8" yaml:"parameter_tolerance"`
		MaxIterations      int     `env:"OPT_MAX_ITERATIONS" envDefault:"1000" yaml:"max_iterations"`
		InitialSimplexSize float64 `env:"OPT_INITIAL_SIMPLEX_SIZE" envDefault:"0.05" yaml:"initial_simplex_size"`
		PenaltyWeight      float64 `env:"OPT_PENALTY_WEIGHT" envDefault:"1e6" yaml:"penalty_weight"`
		PooledBuffers      bool    `env:"OPT_POOLED_BUFFERS" envDefault:"true" yaml:"pooled_buffers"`
	} `yaml:"optimization"`
}

// Load parses the environment and, when SMPLX_CONFIG_FILE is set, overlays
// the named YAML file on top of the parsed values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
