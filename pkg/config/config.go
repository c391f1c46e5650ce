// Package config loads contour's YAML configuration and builds the logger
// and kernel options it describes.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chazu/contour/pkg/kernel/sdfx"
	"gopkg.in/yaml.v3"
)

// Config is the whole configuration file.
type Config struct {
	Kernel KernelConfig `yaml:"kernel"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// KernelConfig tunes the reference kernel.
type KernelConfig struct {
	Tolerance        float64 `yaml:"tolerance"`         // point coincidence, scaled by model size
	SampleResolution int     `yaml:"sample_resolution"` // grid cells per axis for sampled measures
	MeshCells        int     `yaml:"mesh_cells"`        // marching cubes cells along the longest axis
	CacheSize        int     `yaml:"cache_size"`        // sampled measures kept
	ArcStepDegrees   float64 `yaml:"arc_step_degrees"`  // polygonization step for arcs
}

// EngineConfig bounds script evaluation.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Kernel: KernelConfig{
			Tolerance:        sdfx.DefaultTolerance,
			SampleResolution: sdfx.DefaultSampleResolution,
			MeshCells:        sdfx.DefaultMeshCells,
			CacheSize:        sdfx.DefaultCacheSize,
			ArcStepDegrees:   sdfx.DefaultArcStepDegrees,
		},
		Engine: EngineConfig{Timeout: 5 * time.Second},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Fields
// the document leaves out keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	k := c.Kernel
	if !(k.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("kernel.tolerance must be positive, got %g", k.Tolerance))
	}
	if k.SampleResolution < 8 {
		errs = append(errs, fmt.Errorf("kernel.sample_resolution must be at least 8, got %d", k.SampleResolution))
	}
	if k.MeshCells < 8 {
		errs = append(errs, fmt.Errorf("kernel.mesh_cells must be at least 8, got %d", k.MeshCells))
	}
	if k.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("kernel.cache_size must be at least 1, got %d", k.CacheSize))
	}
	if !(k.ArcStepDegrees > 0 && k.ArcStepDegrees <= 45) {
		errs = append(errs, fmt.Errorf("kernel.arc_step_degrees must be in (0, 45], got %g", k.ArcStepDegrees))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// KernelOptions converts the kernel settings into sdfx options.
func (c *Config) KernelOptions(logger *slog.Logger) []sdfx.Option {
	k := c.Kernel
	return []sdfx.Option{
		sdfx.WithTolerance(k.Tolerance),
		sdfx.WithSampleResolution(k.SampleResolution),
		sdfx.WithMeshCells(k.MeshCells),
		sdfx.WithCacheSize(k.CacheSize),
		sdfx.WithArcStep(k.ArcStepDegrees),
		sdfx.WithLogger(logger),
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds a logger writing to w.
func NewLogger(lc LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(lc.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", lc.Format)
}
