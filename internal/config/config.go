package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"voxelstream/internal/terrain"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when Load gets no path.
const EnvConfigPath = "VOXELSTREAM_CONFIG"

const (
	MinRenderDistance = 1
	MaxRenderDistance = 32
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration accepts human readable strings such as "150ms" in YAML.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML encodes the duration using the canonical string representation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration string. Empty strings decode to zero.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds every tunable of a streaming session.
type Config struct {
	Seed           int64    `yaml:"seed"`
	RenderDistance int      `yaml:"render_distance"` // chunks, Chebyshev radius
	Workers        int      `yaml:"workers"`         // 0 selects NumCPU
	QueueSize      int      `yaml:"queue_size"`
	SeaLevel       int      `yaml:"sea_level"`
	SnowLine       int      `yaml:"snow_line"`
	RemeshDebounce Duration `yaml:"remesh_debounce"`

	BiomeScale float64         `yaml:"biome_scale"`
	BiomeBias  float64         `yaml:"biome_bias"`
	Biomes     []terrain.Biome `yaml:"biomes"` // optional; order is significant

	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables the /metrics listener
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Seed:           1337,
		RenderDistance: 8,
		Workers:        0,
		QueueSize:      1024,
		SeaLevel:       62,
		SnowLine:       118,
		RemeshDebounce: Duration(100 * time.Millisecond),
		BiomeScale:     terrain.DefaultBiomeScale,
		BiomeBias:      terrain.DefaultBiomeBias,
		LogLevel:       "info",
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to the
// file named by VOXELSTREAM_CONFIG; with neither, the defaults are returned.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.RenderDistance = min(max(cfg.RenderDistance, MinRenderDistance), MaxRenderDistance)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.RenderDistance < MinRenderDistance || c.RenderDistance > MaxRenderDistance:
		return fmt.Errorf("%w: render_distance must be in [%d,%d], got %d", ErrInvalid, MinRenderDistance, MaxRenderDistance, c.RenderDistance)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalid)
	case c.SeaLevel < 0 || c.SeaLevel >= 256:
		return fmt.Errorf("%w: sea_level must be in [0,256), got %d", ErrInvalid, c.SeaLevel)
	case c.SnowLine <= c.SeaLevel:
		return fmt.Errorf("%w: snow_line (%d) must be above sea_level (%d)", ErrInvalid, c.SnowLine, c.SeaLevel)
	case c.RemeshDebounce < 0:
		return fmt.Errorf("%w: remesh_debounce must not be negative", ErrInvalid)
	case c.BiomeScale <= 0:
		return fmt.Errorf("%w: biome_scale must be positive", ErrInvalid)
	case c.BiomeBias < 0 || c.BiomeBias >= 1:
		return fmt.Errorf("%w: biome_bias must be in [0,1)", ErrInvalid)
	}
	for _, b := range c.Biomes {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// WorkerCount resolves the configured pool size.
func (c *Config) WorkerCount() int {
	if c.Workers == 0 {
		return max(runtime.NumCPU(), 1)
	}
	return c.Workers
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
}

// TerrainOptions converts the generation settings.
func (c *Config) TerrainOptions() terrain.Options {
	opts := terrain.DefaultOptions(c.Seed)
	opts.BiomeScale = c.BiomeScale
	opts.BiomeBias = c.BiomeBias
	opts.SeaLevel = c.SeaLevel
	opts.SnowLine = c.SnowLine
	if len(c.Biomes) > 0 {
		opts.Biomes = c.Biomes
	}
	return opts
}
