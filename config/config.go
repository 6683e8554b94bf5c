// ABOUTME: Configuration management for the activation engine and reader
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"scrollspy/engine"
)

// Config holds all tunable engine and reader settings
type Config struct {
	// Engine behaviour
	Mode                 string `toml:"mode"`            // "container" or "page"
	BoundaryPolicy       string `toml:"boundary_policy"` // "clamp" or "wrap"
	InitialIndex         int    `toml:"initial_index"`
	KeyboardScrollLinked bool   `toml:"keyboard_scroll_linked"`
	HoldDuringNavigate   bool   `toml:"hold_during_navigate"`

	// Resolver thresholds
	ActivationThreshold float64 `toml:"activation_threshold"`
	BottomSnapTolerance float64 `toml:"bottom_snap_tolerance"`
	PageStartRatio      float64 `toml:"page_start_ratio"`
	PageEndRatio        float64 `toml:"page_end_ratio"`

	// Reader
	FrameIntervalMS int `toml:"frame_interval_ms"`
	ScrollStep      int `toml:"scroll_step"` // Lines moved per mouse wheel notch
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/scrollspy/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./scrollspy.toml"); err == nil {
		return "./scrollspy.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./scrollspy.toml"
	}

	return filepath.Join(home, ".config", "scrollspy", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist, returns default config. Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, err := cfg.EngineOptions(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Mode:                 engine.ContainerRelative.String(),
		BoundaryPolicy:       engine.Clamp.String(),
		InitialIndex:         0,
		KeyboardScrollLinked: true,
		HoldDuringNavigate:   true,
		ActivationThreshold:  engine.DefaultActivationThreshold,
		BottomSnapTolerance:  engine.DefaultBottomSnapTolerance,
		PageStartRatio:       engine.DefaultPageStartRatio,
		PageEndRatio:         engine.DefaultPageEndRatio,
		FrameIntervalMS:      16,
		ScrollStep:           3,
	}
}

// EngineOptions converts the config into engine options, validating enum values
func (c Config) EngineOptions() (engine.Options, error) {
	mode, err := engine.ParseMode(c.Mode)
	if err != nil {
		return engine.Options{}, err
	}

	policy, err := engine.ParseBoundaryPolicy(c.BoundaryPolicy)
	if err != nil {
		return engine.Options{}, err
	}

	if c.PageStartRatio < 0 || c.PageEndRatio < 0 {
		return engine.Options{}, fmt.Errorf("page ratios must be non-negative (start=%.2f, end=%.2f)", c.PageStartRatio, c.PageEndRatio)
	}

	return engine.Options{
		Mode:           mode,
		InitialIndex:   c.InitialIndex,
		BoundaryPolicy: policy,
		Thresholds: engine.Thresholds{
			Activation: c.ActivationThreshold,
			BottomSnap: c.BottomSnapTolerance,
			PageStart:  c.PageStartRatio,
			PageEnd:    c.PageEndRatio,
		},
		KeyboardScrollLinked: c.KeyboardScrollLinked,
		HoldDuringNavigate:   c.HoldDuringNavigate,
	}, nil
}

// FrameInterval returns the frame interval as a duration (engine default when unset)
func (c Config) FrameInterval() time.Duration {
	if c.FrameIntervalMS <= 0 {
		return engine.DefaultFrameInterval
	}

	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}
