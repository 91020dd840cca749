package cli

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/logging"
	"github.com/tomprince/bitburner-src/internal/nsconfig"
)

// Env is the configuration and logger a tool runs with.
type Env struct {
	Config     *nsconfig.Config
	ConfigPath string
	Logger     *zap.Logger
}

// Setup loads dir/.env, discovers nsscript.toml starting at dir and builds a
// logger writing to stderr. verbose forces debug logging.
func Setup(dir string, verbose bool, stderr io.Writer) (*Env, error) {
	if err := nsconfig.LoadDotEnv(dir); err != nil {
		return nil, err
	}
	cfg, path, err := nsconfig.DiscoverConfig(dir)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	log := logging.New(cfg.Logging(), stderr)
	if path != "" {
		log.Debug("loaded config", zap.String("path", path))
	}
	return &Env{Config: cfg, ConfigPath: path, Logger: log}, nil
}
