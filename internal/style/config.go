package style

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the user-facing option set, as read from a YAML file and
// overridden by command-line flags. It becomes a Profile via NewProfile.
type Config struct {
	Palette              string        `yaml:"palette"`
	PaletteColors        []string      `yaml:"palette_colors,omitempty"`
	QuantizationStrength float64       `yaml:"quantization_strength"`
	EdgeThreshold        float64       `yaml:"edge_threshold"`
	GrainIntensity       float64       `yaml:"grain_intensity"`
	InkStrength          float64       `yaml:"ink_strength"`
	DownsampleFactor     int           `yaml:"downsample_factor"`
	Seed                 int64         `yaml:"seed"`
	Mood                 bool          `yaml:"mood"`
	Workers              int           `yaml:"workers"`
	Timeout              time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the built-in defaults. Callers get a fresh value
// each time, so tests can change fields freely.
func DefaultConfig() Config {
	return Config{
		Palette:              DefaultPreset,
		QuantizationStrength: 0.85,
		EdgeThreshold:        0.18,
		GrainIntensity:       0.25,
		InkStrength:          0.8,
		DownsampleFactor:     2,
		Seed:                 1,
		Mood:                 true,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidProfile, cfg.Workers)
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("%w: timeout must be >= 0, got %s", ErrInvalidProfile, cfg.Timeout)
	}
	return cfg, nil
}
