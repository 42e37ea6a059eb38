// Package config loads the popover settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/popover/internal/placement"
	"github.com/ensigniasec/popover/internal/validate"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = "~/.config/popover/config.yaml"

const (
	// defaultBottomSheetBelow is the terminal width under which panels become bottom sheets.
	defaultBottomSheetBelow = 60
	defaultCloseText        = "Close"
)

// Mode selects how an open panel is placed on screen.
type Mode string

const (
	// ModeResponsive uses the resolved position/anchor above the breakpoint and a
	// bottom sheet below it.
	ModeResponsive Mode = "responsive"
	// ModeAbsolute pins the panel under the trigger using whole-cell offsets only.
	ModeAbsolute Mode = "absolute"
)

// Config is the on-disk popover configuration.
type Config struct {
	MeasureDelay         time.Duration `yaml:"measure_delay" validate:"gte=0s,lte=1s"`
	OutsideClickDebounce time.Duration `yaml:"outside_click_debounce" validate:"gte=0s,lte=1s"`

	Positions         []placement.Position `yaml:"positions" validate:"required,min=1,dive,position"`
	Anchors           []placement.Anchor   `yaml:"anchors" validate:"required,min=1,dive,anchor"`
	PreferredPosition placement.Position   `yaml:"preferred_position" validate:"position"`

	BottomSheetBelow int    `yaml:"bottom_sheet_below" validate:"gte=0"`
	Mode             Mode   `yaml:"mode" validate:"oneof=responsive absolute"`
	CloseText        string `yaml:"close_text" validate:"required,max=32"`

	// Path is the expanded location the config was loaded from.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MeasureDelay:         15 * time.Millisecond,
		OutsideClickDebounce: 10 * time.Millisecond,
		Positions:            placement.DefaultPositions(),
		Anchors:              placement.DefaultAnchors(),
		BottomSheetBelow:     defaultBottomSheetBelow,
		Mode:                 ModeResponsive,
		CloseText:            defaultCloseText,
	}
}

// Preferences converts the configured orders into placement preferences.
func (c Config) Preferences() placement.Preferences {
	return placement.Preferences{
		Positions: append([]placement.Position(nil), c.Positions...),
		Anchors:   append([]placement.Anchor(nil), c.Anchors...),
		Preferred: c.PreferredPosition,
	}
}

// Load reads path. A missing file yields the defaults. Fields that fail
// validation are reset to their defaults with a warning and the healed file is
// written back.
func Load(path string) (Config, error) {
	expanded, err := expandTilde(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	cfg.Path = expanded

	logrus.Debug("Loading config file from: ", expanded)
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", expanded, err)
	}

	if heal(&cfg) {
		if err := cfg.Save(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Save writes the configuration to c.Path.
func (c Config) Save() error {
	if c.Path == "" {
		return errors.New("config path not set")
	}
	logrus.Debug("Saving config file to: ", c.Path)
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, data, 0o600)
}

// heal resets invalid fields to defaults and reports whether anything changed.
func heal(c *Config) bool {
	err := c.Validate()
	if err == nil {
		return false
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		logrus.Warnf("Unable to validate config: %v", err)
		return false
	}

	def := Default()
	changed := false
	for _, fe := range verrs {
		// Element errors from dive are reported as e.g. "Positions[1]".
		field, _, _ := strings.Cut(fe.StructField(), "[")
		logrus.Warnf("Invalid %s in config; resetting to default.", fe.StructField())
		switch field {
		case "MeasureDelay":
			c.MeasureDelay = def.MeasureDelay
		case "OutsideClickDebounce":
			c.OutsideClickDebounce = def.OutsideClickDebounce
		case "Positions":
			c.Positions = def.Positions
		case "Anchors":
			c.Anchors = def.Anchors
		case "PreferredPosition":
			c.PreferredPosition = def.PreferredPosition
		case "BottomSheetBelow":
			c.BottomSheetBelow = def.BottomSheetBelow
		case "Mode":
			c.Mode = def.Mode
		case "CloseText":
			c.CloseText = def.CloseText
		default:
			continue
		}
		changed = true
	}
	return changed
}

// ExpandPath resolves a leading tilde to the user's home directory.
func ExpandPath(path string) (string, error) {
	return expandTilde(path)
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
