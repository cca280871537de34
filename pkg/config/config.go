package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kidandcat/softassert/pkg/browser"
	"github.com/kidandcat/softassert/pkg/softtest"
)

// FileConfig represents the configuration loaded from a file
type FileConfig struct {
	Headless            *bool                `yaml:"headless" json:"headless"`
	Timeout             *Duration            `yaml:"timeout" json:"timeout"`
	ActionTimeouts      map[string]*Duration `yaml:"actionTimeouts" json:"actionTimeouts"`
	FailOnConsoleError  *bool                `yaml:"failOnConsoleError" json:"failOnConsoleError"`
	IgnoreConsole       []string             `yaml:"ignoreConsole" json:"ignoreConsole"`
	ScreenshotDir       string               `yaml:"screenshotDir" json:"screenshotDir"`
	UpdateScreenshots   bool                 `yaml:"updateScreenshots" json:"updateScreenshots"`
	ScreenshotThreshold float64              `yaml:"screenshotThreshold" json:"screenshotThreshold"`
	ViewportWidth       int                  `yaml:"viewportWidth" json:"viewportWidth"`
	ViewportHeight      int                  `yaml:"viewportHeight" json:"viewportHeight"`
	Color               *bool                `yaml:"color" json:"color"`
	Quiet               *bool                `yaml:"quiet" json:"quiet"`
}

// Duration is a custom type for unmarshaling duration strings
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// LoadConfig loads configuration from file
func LoadConfig(filename string) (*FileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config FileConfig
	ext := filepath.Ext(filename)

	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".json":
		err = json.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

var configNames = []string{
	"softassert.config.yaml",
	"softassert.config.yml",
	"softassert.config.json",
	"softassert.yaml",
	"softassert.yml",
	"softassert.json",
	".softassert.yaml",
	".softassert.yml",
	".softassert.json",
}

// FindConfigFile searches dir for a config file and returns its path, or ""
// when there is none. The first name in configNames wins.
func FindConfigFile(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Apply copies the file settings into rc. Settings whose command line flag
// was given explicitly are left alone; isSet reports that by flag name.
func (fc *FileConfig) Apply(rc *softtest.Config, isSet func(flag string) bool) {
	if !isSet("headless") && fc.Headless != nil {
		rc.Headless = *fc.Headless
	}
	if !isSet("timeout") && fc.Timeout != nil {
		rc.Timeout = fc.Timeout.Duration
	}
	for action, d := range fc.ActionTimeouts {
		if d == nil {
			continue
		}
		if rc.ActionTimeouts == nil {
			rc.ActionTimeouts = make(map[string]time.Duration)
		}
		rc.ActionTimeouts[action] = d.Duration
	}
	if !isSet("fail-on-console-error") && fc.FailOnConsoleError != nil {
		rc.FailOnConsoleError = *fc.FailOnConsoleError
	}
	if !isSet("screenshot-dir") && fc.ScreenshotDir != "" {
		rc.ScreenshotDir = fc.ScreenshotDir
	}
	if !isSet("update-screenshots") && fc.UpdateScreenshots {
		rc.UpdateScreenshots = true
	}
	if fc.ScreenshotThreshold > 0 {
		rc.ScreenshotThreshold = fc.ScreenshotThreshold
	}
	if fc.ViewportWidth > 0 {
		rc.ViewportWidth = fc.ViewportWidth
	}
	if fc.ViewportHeight > 0 {
		rc.ViewportHeight = fc.ViewportHeight
	}
	if len(fc.IgnoreConsole) > 0 {
		rc.ErrorFilter = IgnoreConsole(fc.IgnoreConsole)
	}
}

// IgnoreConsole returns a console filter that drops messages containing any
// of the given substrings.
func IgnoreConsole(patterns []string) func(browser.ConsoleMessage) bool {
	return func(msg browser.ConsoleMessage) bool {
		for _, p := range patterns {
			if p != "" && strings.Contains(msg.Message, p) {
				return true
			}
		}
		return false
	}
}
