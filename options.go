package hoist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Option configures a Run invocation.
type Option func(*config) error

type config struct {
	workingDir   string
	logger       Logger
	excludeDirs  []string
	maxScanFiles int
}

const defaultMaxScanFiles = 20000

// fixedExcludeDirs are always pruned during the fallback directory scan
// (§6), regardless of WithExcludeDirs.
var fixedExcludeDirs = []string{".git", "node_modules", "lib"}

func defaultConfig() *config {
	return &config{
		logger:       NopLogger{},
		maxScanFiles: defaultMaxScanFiles,
	}
}

// WithWorkingDir sets the root directory for the on-demand file search
// used by the discriminator-mapping resolver (§4.4, §6). Defaults to
// os.Getwd() if unset.
func WithWorkingDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return fmt.Errorf("hoist: working dir must not be empty")
		}
		c.workingDir = dir
		return nil
	}
}

// WithLogger attaches a Logger for soft-failure diagnostics.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = NopLogger{}
		}
		c.logger = logger
		return nil
	}
}

// WithExcludeDirs adds directory names to prune during the fallback
// directory scan, in addition to the fixed ".git"/"node_modules"/"lib"
// exclusions.
func WithExcludeDirs(names ...string) Option {
	return func(c *config) error {
		c.excludeDirs = append(c.excludeDirs, names...)
		return nil
	}
}

// WithMaxScanFiles bounds the fallback directory scan (§4.4 step 2). Once
// the limit is reached the scan stops rather than growing unbounded over a
// large working tree; files seen before the limit are still matched, and a
// mapping whose target was not reached is left unresolved.
func WithMaxScanFiles(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("hoist: max scan files must be positive, got %d", n)
		}
		c.maxScanFiles = n
		return nil
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("hoist: invalid option: %w", err)
		}
	}
	if cfg.workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("hoist: resolving working directory: %w", err)
		}
		cfg.workingDir = wd
	} else {
		// Run changes into workingDir before loading files, so a relative
		// value must be made absolute first.
		abs, err := filepath.Abs(cfg.workingDir)
		if err != nil {
			return nil, fmt.Errorf("hoist: resolving working directory: %w", err)
		}
		cfg.workingDir = abs
	}
	return cfg, nil
}
