// Package nsconfig loads nsscript.toml configuration for the ns tools.
//
// The file is found by walking up from the working directory, stopping at
// the enclosing git repository root. The NSSCRIPT_CONFIG environment variable
// names a file explicitly. A handful of NSSCRIPT_* variables override single
// settings after the file is loaded; mains load a .env file first so those
// variables can live next to the project.
package nsconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomprince/bitburner-src/internal/logging"
	"github.com/tomprince/bitburner-src/internal/script/transform"
)

// ConfigFile is the configuration filename.
const ConfigFile = "nsscript.toml"

// Environment variables.
const (
	EnvConfig   = "NSSCRIPT_CONFIG"
	EnvEngine   = "NSSCRIPT_ENGINE"
	EnvTarget   = "NSSCRIPT_TARGET"
	EnvLogLevel = "NSSCRIPT_LOG_LEVEL"
	EnvHostname = "NSSCRIPT_HOSTNAME"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full tool configuration.
type Config struct {
	Transform TransformConfig `toml:"transform"`
	Build     BuildConfig     `toml:"build"`
	Log       LogConfig       `toml:"log"`
}

// TransformConfig selects and tunes the transform engine.
type TransformConfig struct {
	// Engine is "bundle" or "transform".
	Engine      string `toml:"engine"`
	Target      string `toml:"target"`
	JSXFactory  string `toml:"jsx_factory"`
	JSXFragment string `toml:"jsx_fragment"`
}

// BuildConfig controls nsbuild output.
type BuildConfig struct {
	OutDir string `toml:"out_dir"`
	// CacheSize is the number of compiled modules kept in memory.
	CacheSize int    `toml:"cache_size"`
	Hostname  string `toml:"hostname"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Transform: TransformConfig{
			Engine:      transform.EngineBundle,
			Target:      "es2020",
			JSXFactory:  "React.createElement",
			JSXFragment: "React.Fragment",
		},
		Build: BuildConfig{
			OutDir:    "dist",
			CacheSize: 256,
			Hostname:  "home",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks values that the engine and loader would otherwise reject
// later.
func (c *Config) Validate() error {
	var errs []error
	switch c.Transform.Engine {
	case transform.EngineBundle, transform.EngineTransform:
	default:
		errs = append(errs, fmt.Errorf("%w: transform.engine %q (want %s or %s)",
			ErrInvalid, c.Transform.Engine, transform.EngineBundle, transform.EngineTransform))
	}
	if _, err := transform.New(c.TransformOptions()); err != nil && !errors.Is(err, transform.ErrUnknownEngine) {
		errs = append(errs, fmt.Errorf("%w: transform.target: %v", ErrInvalid, err))
	}
	if c.Build.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("%w: build.cache_size must be positive, got %d", ErrInvalid, c.Build.CacheSize))
	}
	if c.Build.OutDir == "" {
		errs = append(errs, fmt.Errorf("%w: build.out_dir is empty", ErrInvalid))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %v", ErrInvalid, err))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q (want console or json)", ErrInvalid, c.Log.Format))
	}
	return errors.Join(errs...)
}

// TransformOptions converts the transform section into engine options.
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		Engine:      c.Transform.Engine,
		Target:      c.Transform.Target,
		JSXFactory:  c.Transform.JSXFactory,
		JSXFragment: c.Transform.JSXFragment,
	}
}

// Logging converts the log section into logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// ApplyEnv overrides settings from NSSCRIPT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEngine); v != "" {
		c.Transform.Engine = v
	}
	if v := os.Getenv(EnvTarget); v != "" {
		c.Transform.Target = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvHostname); v != "" {
		c.Build.Hostname = v
	}
}

// DiscoverConfig finds and loads the configuration.
//
// NSSCRIPT_CONFIG wins if set. Otherwise the search walks up from startDir
// (the working directory if empty) and stops at the git root. With no file
// it returns DefaultConfig and an empty path. Environment overrides are
// applied in every case.
func DiscoverConfig(startDir string) (*Config, string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		cfg, err := LoadConfig(envPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config from %s: %w", EnvConfig, err)
		}
		cfg.ApplyEnv()
		return cfg, envPath, nil
	}

	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("getting working directory: %w", err)
		}
	}
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path: %w", err)
	}

	gitRoot := findGitRoot(absDir)
	for dir := absDir; ; {
		path := filepath.Join(dir, ConfigFile)
		if fileExists(path) {
			cfg, err := LoadConfig(path)
			if err != nil {
				return nil, "", err
			}
			cfg.ApplyEnv()
			return cfg, path, nil
		}
		if dir == gitRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg, "", nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// findGitRoot returns the nearest ancestor of startDir containing .git, or
// "" outside a repository.
func findGitRoot(startDir string) string {
	dir := startDir
	for {
		if fileExists(filepath.Join(dir, ".git")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// String renders the configuration as key = value lines.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transform.engine = %s\n", c.Transform.Engine)
	fmt.Fprintf(&b, "transform.target = %s\n", c.Transform.Target)
	fmt.Fprintf(&b, "transform.jsx_factory = %s\n", c.Transform.JSXFactory)
	fmt.Fprintf(&b, "transform.jsx_fragment = %s\n", c.Transform.JSXFragment)
	fmt.Fprintf(&b, "build.out_dir = %s\n", c.Build.OutDir)
	fmt.Fprintf(&b, "build.cache_size = %d\n", c.Build.CacheSize)
	fmt.Fprintf(&b, "build.hostname = %s\n", c.Build.Hostname)
	fmt.Fprintf(&b, "log.level = %s\n", c.Log.Level)
	fmt.Fprintf(&b, "log.format = %s\n", c.Log.Format)
	return b.String()
}
