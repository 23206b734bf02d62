// Package config loads the overlay configuration from YAML.
package config

import (
	"os"
	"strings"

	"github.com/nvr-ai/go-overlay/alert"
	"github.com/nvr-ai/go-overlay/audio"
	"github.com/nvr-ai/go-overlay/logger"
	"github.com/nvr-ai/go-overlay/tracker"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete overlay configuration.
type Config struct {
	Frame   FrameConfig      `yaml:"frame"`
	Tracker tracker.Config   `yaml:"tracker"`
	Alert   AlertConfig      `yaml:"alert"`
	Audio   AudioConfig      `yaml:"audio"`
	Log     logger.LogConfig `yaml:"log"`
}

// FrameConfig describes the sensor frames fed to the tracker.
type FrameConfig struct {
	Width             int `yaml:"width"`
	Height            int `yaml:"height"`
	SensorOrientation int `yaml:"sensor_orientation"`
}

// AlertConfig contains the alert trigger policy and size thresholds.
type AlertConfig struct {
	Policy           alert.Policy `yaml:"policy"`
	alert.Thresholds `yaml:",inline"`
}

// AudioConfig contains the player command and the alert sounds.
type AudioConfig struct {
	audio.CommandConfig `yaml:",inline"`
	Asset               string            `yaml:"asset"`
	Sounds              map[string]string `yaml:"sounds"`
}

// Default returns the configuration used when no file overrides a field.
func Default() *Config {
	alertDefaults := alert.DefaultConfig()
	return &Config{
		Frame: FrameConfig{
			Width:             640,
			Height:            480,
			SensorOrientation: 90,
		},
		Tracker: tracker.DefaultConfig(),
		Alert: AlertConfig{
			Policy:     alertDefaults.Policy,
			Thresholds: alertDefaults.Thresholds,
		},
		Audio: AudioConfig{
			CommandConfig: audio.DefaultCommandConfig(),
			Asset:         alertDefaults.Asset,
		},
		Log: logger.LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates it.
//
// Arguments:
//   - path: The configuration file. An empty path returns the defaults.
//
// Returns:
//   - *Config: The merged configuration.
//   - error: A read, parse or validation error.
//
// @example
// cfg, err := config.Load("config.yaml")
//
//	if errors.Is(err, config.ErrInvalid) {
//		...
//	}
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration file %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse configuration file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		problems = append(problems, "frame width and height must be positive")
	}
	if c.Frame.SensorOrientation%90 != 0 {
		problems = append(problems, "frame sensor_orientation must be a multiple of 90")
	}

	if c.Tracker.MinSize < 0 {
		problems = append(problems, "tracker min_size must not be negative")
	}
	if c.Tracker.TextSize <= 0 {
		problems = append(problems, "tracker text_size must be positive")
	}
	if c.Tracker.StrokeWidth <= 0 {
		problems = append(problems, "tracker stroke_width must be positive")
	}

	switch c.Alert.Policy {
	case alert.PolicyOutcome, alert.PolicyAlways:
	default:
		problems = append(problems, "alert policy must be one of outcome, always")
	}
	if c.Alert.CrowdCount < 0 {
		problems = append(problems, "alert crowd_count must not be negative")
	}
	if c.Alert.PedestrianArea < 0 || c.Alert.VehicleArea < 0 || c.Alert.CyclistArea < 0 {
		problems = append(problems, "alert areas must not be negative")
	}

	if c.Audio.Command == "" {
		problems = append(problems, "audio command is required")
	}
	if c.Audio.Asset == "" {
		problems = append(problems, "audio asset is required")
	}
	for name := range c.Audio.Sounds {
		if !alert.Outcome(name).Audible() {
			problems = append(problems, "audio sounds key "+name+" is not an audible outcome")
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log level "+c.Log.Level+" is not recognised")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		problems = append(problems, "log format must be console or json")
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ToAlertConfig returns the alerter settings.
func (c *Config) ToAlertConfig() alert.Config {
	var sounds map[alert.Outcome]string
	if len(c.Audio.Sounds) > 0 {
		sounds = make(map[alert.Outcome]string, len(c.Audio.Sounds))
		for name, asset := range c.Audio.Sounds {
			sounds[alert.Outcome(name)] = asset
		}
	}
	return alert.Config{
		Policy:     c.Alert.Policy,
		Thresholds: c.Alert.Thresholds,
		Asset:      c.Audio.Asset,
		Sounds:     sounds,
	}
}
