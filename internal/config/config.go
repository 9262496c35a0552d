// Package config loads and validates the viewer configuration file. Every
// field has a typed default, so a missing or partial file still yields a
// fully populated configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/arcollage/viewer/internal/control"
	"github.com/arcollage/viewer/internal/geo"
	"github.com/arcollage/viewer/internal/interp"
	"github.com/arcollage/viewer/internal/marker"
)

// FileName is the config file the viewer looks for in its config directory.
const FileName = "collage_viewer.cfg.json"

// TrackerConfig holds the tracker stream connection settings.
type TrackerConfig struct {
	URL string `json:"url" mapstructure:"url"`
}

// InterpConfig selects the pose smoothing behavior.
type InterpConfig struct {
	Alpha         float64 `json:"alpha" mapstructure:"alpha"`
	TimeCorrected bool    `json:"timeCorrected" mapstructure:"timeCorrected"`
	TauMs         int     `json:"tauMs" mapstructure:"tauMs"`
}

// ShapeConfig throttles per-marker clip path recomputation.
type ShapeConfig struct {
	ThrottleMs int `json:"throttleMs" mapstructure:"throttleMs"`
}

// AudioConfig tunes the derived-volume hysteresis.
type AudioConfig struct {
	VolumeBand int `json:"volumeBand" mapstructure:"volumeBand"`
}

// LoopConfig bounds the render tick rate.
type LoopConfig struct {
	TickHz int `json:"tickHz" mapstructure:"tickHz"`
}

// MemoryConfig holds in-memory/JSON history backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SqliteConfig holds sqlite history backend settings.
type SqliteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the session history backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	Sqlite SqliteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// HistoryConfig holds the change thresholds below which pose samples are
// not recorded.
type HistoryConfig struct {
	PositionThreshold float64 `json:"positionThreshold" mapstructure:"positionThreshold"`
	RotationThreshold float64 `json:"rotationThreshold" mapstructure:"rotationThreshold"`
}

// Config is the fully resolved viewer configuration.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string `json:"logsDir" mapstructure:"logsDir"`

	Tracker TrackerConfig       `json:"tracker" mapstructure:"tracker"`
	Screen  geo.ScreenTransform `json:"screen" mapstructure:"screen"`
	Interp  InterpConfig        `json:"interp" mapstructure:"interp"`
	Shape   ShapeConfig         `json:"shape" mapstructure:"shape"`
	Audio   AudioConfig         `json:"audio" mapstructure:"audio"`
	Loop    LoopConfig          `json:"loop" mapstructure:"loop"`
	Control control.ChannelMap  `json:"control" mapstructure:"control"`
	Storage StorageConfig       `json:"storage" mapstructure:"storage"`
	History HistoryConfig       `json:"history" mapstructure:"history"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "./viewerlogs")

	v.SetDefault("tracker.url", "ws://localhost:8765")

	screen := geo.DefaultScreenTransform()
	v.SetDefault("screen.scaleX", screen.ScaleX)
	v.SetDefault("screen.offsetX", screen.OffsetX)
	v.SetDefault("screen.scaleY", screen.ScaleY)
	v.SetDefault("screen.offsetY", screen.OffsetY)

	v.SetDefault("interp.alpha", interp.DefaultAlpha)
	v.SetDefault("interp.timeCorrected", false)
	v.SetDefault("interp.tauMs", 100)

	v.SetDefault("shape.throttleMs", 25)

	v.SetDefault("audio.volumeBand", marker.DefaultVolumeBand)

	v.SetDefault("loop.tickHz", 60)

	channels := control.DefaultChannelMap()
	v.SetDefault("control.selectionDial", channels.SelectionDial)
	v.SetDefault("control.red", channels.Red)
	v.SetDefault("control.green", channels.Green)
	v.SetDefault("control.blue", channels.Blue)
	v.SetDefault("control.alpha", channels.Alpha)
	v.SetDefault("control.scale", channels.Scale)
	v.SetDefault("control.zOffset", channels.ZOffset)
	v.SetDefault("control.rotationX", channels.RotationX)
	v.SetDefault("control.rotationY", channels.RotationY)
	v.SetDefault("control.triggerNote", channels.TriggerNote)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.memory.outputDir", "./sessions")
	v.SetDefault("storage.memory.compressOutput", false)
	v.SetDefault("storage.sqlite.path", "./sessions/viewer.db")

	v.SetDefault("history.positionThreshold", 0.015)
	v.SetDefault("history.rotationThreshold", 2.0)
}

// Load reads the configuration from configDir, applying defaults for
// every missing field. A missing file is not an error; a malformed one is.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Interp.Alpha <= 0 || c.Interp.Alpha > 1 {
		return fmt.Errorf("interp.alpha must be in (0,1], got %v", c.Interp.Alpha)
	}
	if c.Loop.TickHz <= 0 {
		return fmt.Errorf("loop.tickHz must be positive, got %d", c.Loop.TickHz)
	}
	switch c.Storage.Type {
	case "memory", "sqlite", "none":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}
	return nil
}

// InterpSettings converts the config into the interpolation engine's form.
func (c *Config) InterpSettings() interp.Config {
	return interp.Config{
		Alpha:         c.Interp.Alpha,
		TimeCorrected: c.Interp.TimeCorrected,
		Tau:           time.Duration(c.Interp.TauMs) * time.Millisecond,
	}
}

// ShapeThrottle returns the per-marker clip recompute interval.
func (c *Config) ShapeThrottle() time.Duration {
	return time.Duration(c.Shape.ThrottleMs) * time.Millisecond
}

// TickInterval returns the render loop period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Loop.TickHz)
}
