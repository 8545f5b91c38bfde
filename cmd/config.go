package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tseval/tseval/eval"
)

// Config is the yaml evaluation envelope. Every field has a matching CLI
// flag; flags that the user set explicitly win over the file.
type Config struct {
	// Engine options.
	Threads      int  `yaml:"threads"`
	Storing      bool `yaml:"storing"`
	FullParallel bool `yaml:"fullParallel"`

	// Kernel options.
	Kernel  string  `yaml:"kernel"`
	R       float64 `yaml:"r"`
	W       int     `yaml:"w"`
	Epsilon float64 `yaml:"epsilon"`
	G       float64 `yaml:"g"`
	Nu      float64 `yaml:"nu"`
	Lambda  float64 `yaml:"lambda"`

	// Resampling options.
	Method     string  `yaml:"method"`
	Stratified bool    `yaml:"stratified"`
	Seeds      []int64 `yaml:"seeds"`
	Percentage float64 `yaml:"percentage"`
	Folds      int     `yaml:"folds"`

	// Classifier options.
	K int `yaml:"k"`
}

// DefaultConfig returns the envelope the CLI starts from before the
// config file and flags are applied.
func DefaultConfig() Config {
	return Config{
		Threads:    1,
		Kernel:     "dtw",
		Method:     "loo",
		Percentage: 70,
		Folds:      10,
		K:          1,
	}
}

// LoadConfig reads a yaml envelope from path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the envelope ranges the engine itself would reject
// later, so the CLI can fail before any work is done.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be >= 1, got %d", eval.ErrInvalidParameter, c.Threads)
	}
	if c.R < 0 || c.R > 1 {
		return fmt.Errorf("%w: r must be in [0,1], got %g", eval.ErrInvalidParameter, c.R)
	}
	if c.W < 0 {
		return fmt.Errorf("%w: w must be >= 0, got %d", eval.ErrInvalidParameter, c.W)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must be >= 0, got %g", eval.ErrInvalidParameter, c.Epsilon)
	}
	if c.Nu < 0 || c.Lambda < 0 {
		return fmt.Errorf("%w: nu and lambda must be >= 0, got %g and %g", eval.ErrInvalidParameter, c.Nu, c.Lambda)
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return fmt.Errorf("%w: percentage must be in [0,100], got %g", eval.ErrInvalidParameter, c.Percentage)
	}
	if c.Folds < 2 {
		return fmt.Errorf("%w: folds must be >= 2, got %d", eval.ErrInvalidParameter, c.Folds)
	}
	if c.K < 1 {
		return fmt.Errorf("%w: k must be >= 1, got %d", eval.ErrInvalidParameter, c.K)
	}
	switch c.Method {
	case "loo", "cv", "holdout":
	default:
		return fmt.Errorf("%w: unknown method %q (want loo, cv or holdout)", eval.ErrInvalidParameter, c.Method)
	}
	return nil
}

// NewKernel builds the distance kernel the envelope names.
func (c Config) NewKernel() (eval.DistanceKernel, error) {
	switch c.Kernel {
	case "dtw":
		return newDTW(c), nil
	case "edr":
		return newEDR(c)
	case "erp":
		return newERP(c), nil
	case "twed":
		return newTWED(c)
	case "manhattan":
		return newManhattan(c), nil
	case "scdtw":
		return newSakoeChibaDTW(c)
	case "scedr":
		return newSakoeChibaEDR(c)
	case "scerp":
		return newSakoeChibaERP(c)
	case "itakura":
		return newItakuraDTW(c)
	}
	return nil, fmt.Errorf("%w: unknown kernel %q", eval.ErrInvalidParameter, c.Kernel)
}

// NewEvaluator builds the resampling evaluator the envelope names.
func (c Config) NewEvaluator() (eval.Evaluator, error) {
	switch c.Method {
	case "loo":
		return eval.NewLeaveOneOutEvaluator(c.Threads, c.FullParallel), nil
	case "holdout":
		return eval.NewHoldoutEvaluator(c.Percentage, c.Seeds, c.Stratified, c.Threads, c.FullParallel)
	case "cv":
		return eval.NewCrossValidationEvaluator(c.Folds, c.Seeds, c.Stratified, c.Threads, c.FullParallel)
	}
	return nil, fmt.Errorf("%w: unknown method %q", eval.ErrInvalidParameter, c.Method)
}
