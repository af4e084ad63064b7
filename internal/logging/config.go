package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config selects the level, format and destination of the service logger.
type Config struct {
	// Level is the minimum severity to emit: debug, info, warn, error or
	// fatal. Unknown values fall back to info.
	Level string `yaml:"level"`
	// Format names the entry encoding. Only "json" is supported.
	Format string `yaml:"format"`
	// Output is "stdout", "stderr", "discard", or a file path opened in
	// append mode. The default is stderr so stdout stays free for command
	// output.
	Output string `yaml:"output"`
}

// DefaultConfig returns the logging defaults used when no configuration is
// provided.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger builds a Logger from cfg. A nil cfg uses DefaultConfig.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Format != "" && cfg.Format != "json" {
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	return New(levelFromString(cfg.Level), output), nil
}

func levelFromString(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
