package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kidandcat/softassert/pkg/browser"
	"github.com/kidandcat/softassert/pkg/softtest"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: "30s", want: 30 * time.Second},
		{name: "minutes", input: "5m", want: 5 * time.Minute},
		{name: "complex duration", input: "1h30m45s", want: 1*time.Hour + 30*time.Minute + 45*time.Second},
		{name: "invalid duration", input: "invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromJSON Duration
			err := json.Unmarshal([]byte(`"`+tt.input+`"`), &fromJSON)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, fromJSON.Duration)
			}

			var fromYAML struct {
				D Duration `yaml:"d"`
			}
			err = yaml.Unmarshal([]byte("d: "+tt.input), &fromYAML)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, fromYAML.D.Duration)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  bool
		check    func(t *testing.T, cfg *FileConfig)
	}{
		{
			name:     "yaml config",
			filename: "a.yaml",
			content: `headless: false
timeout: 45s
screenshotDir: custom_dir
screenshotThreshold: 0.05
viewportWidth: 1920
viewportHeight: 1080
color: false
ignoreConsole:
  - favicon.ico
  - ResizeObserver`,
			check: func(t *testing.T, cfg *FileConfig) {
				require.NotNil(t, cfg.Headless)
				assert.False(t, *cfg.Headless)
				require.NotNil(t, cfg.Timeout)
				assert.Equal(t, 45*time.Second, cfg.Timeout.Duration)
				assert.Equal(t, "custom_dir", cfg.ScreenshotDir)
				assert.Equal(t, 0.05, cfg.ScreenshotThreshold)
				assert.Equal(t, 1920, cfg.ViewportWidth)
				assert.Equal(t, 1080, cfg.ViewportHeight)
				require.NotNil(t, cfg.Color)
				assert.False(t, *cfg.Color)
				assert.Equal(t, []string{"favicon.ico", "ResizeObserver"}, cfg.IgnoreConsole)
			},
		},
		{
			name:     "json config",
			filename: "b.json",
			content: `{
  "headless": true,
  "timeout": "30s",
  "failOnConsoleError": true,
  "screenshotDir": "screenshots",
  "updateScreenshots": true,
  "quiet": true
}`,
			check: func(t *testing.T, cfg *FileConfig) {
				require.NotNil(t, cfg.Headless)
				assert.True(t, *cfg.Headless)
				require.NotNil(t, cfg.FailOnConsoleError)
				assert.True(t, *cfg.FailOnConsoleError)
				assert.True(t, cfg.UpdateScreenshots)
				require.NotNil(t, cfg.Quiet)
				assert.True(t, *cfg.Quiet)
			},
		},
		{
			name:     "config with action timeouts",
			filename: "f.yaml",
			content: `timeout: 30s
actionTimeouts:
  navigate: 20s
  click: 10s
  type: 5s`,
			check: func(t *testing.T, cfg *FileConfig) {
				require.Len(t, cfg.ActionTimeouts, 3)
				assert.Equal(t, 20*time.Second, cfg.ActionTimeouts["navigate"].Duration)
				assert.Equal(t, 10*time.Second, cfg.ActionTimeouts["click"].Duration)
				assert.Equal(t, 5*time.Second, cfg.ActionTimeouts["type"].Duration)
			},
		},
		{
			name:     "invalid yaml",
			filename: "c.yaml",
			content:  `invalid: yaml: content:`,
			wantErr:  true,
		},
		{
			name:     "invalid json",
			filename: "d.json",
			content:  `{invalid json}`,
			wantErr:  true,
		},
		{
			name:     "unsupported format",
			filename: "e.txt",
			content:  `some content`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tempDir, tt.filename)
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			cfg, err := LoadConfig(configPath)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}

	_, err := LoadConfig(filepath.Join(tempDir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfigFile(dir))

	for _, name := range []string{".softassert.json", "softassert.yml", "softassert.config.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
		assert.Equal(t, filepath.Join(dir, name), FindConfigFile(dir), "after creating %s", name)
	}
}

func TestApply(t *testing.T) {
	yes, no := true, false
	fc := &FileConfig{
		Headless:            &no,
		Timeout:             &Duration{10 * time.Second},
		ActionTimeouts:      map[string]*Duration{"navigate": {time.Minute}, "click": nil},
		FailOnConsoleError:  &no,
		IgnoreConsole:       []string{"favicon"},
		ScreenshotDir:       "shots",
		UpdateScreenshots:   true,
		ScreenshotThreshold: 0.2,
		ViewportWidth:       800,
		Color:               &yes,
	}

	t.Run("file fills unset flags", func(t *testing.T) {
		rc := &softtest.Config{Headless: true, Timeout: 30 * time.Second, FailOnConsoleError: true, ViewportHeight: 600}
		fc.Apply(rc, func(string) bool { return false })

		assert.False(t, rc.Headless)
		assert.Equal(t, 10*time.Second, rc.Timeout)
		assert.False(t, rc.FailOnConsoleError)
		assert.Equal(t, "shots", rc.ScreenshotDir)
		assert.True(t, rc.UpdateScreenshots)
		assert.Equal(t, 0.2, rc.ScreenshotThreshold)
		assert.Equal(t, 800, rc.ViewportWidth)
		assert.Equal(t, 600, rc.ViewportHeight)
		assert.Equal(t, map[string]time.Duration{"navigate": time.Minute}, rc.ActionTimeouts)
		require.NotNil(t, rc.ErrorFilter)
		assert.True(t, rc.ErrorFilter(browser.ConsoleMessage{Message: "GET /favicon.ico 404"}))
	})

	t.Run("explicit flags win", func(t *testing.T) {
		rc := &softtest.Config{Headless: true, Timeout: 30 * time.Second, FailOnConsoleError: true, ScreenshotDir: "cli"}
		fc.Apply(rc, func(name string) bool { return name != "update-screenshots" })

		assert.True(t, rc.Headless)
		assert.Equal(t, 30*time.Second, rc.Timeout)
		assert.True(t, rc.FailOnConsoleError)
		assert.Equal(t, "cli", rc.ScreenshotDir)
		assert.True(t, rc.UpdateScreenshots)
	})
}

func TestIgnoreConsole(t *testing.T) {
	filter := IgnoreConsole([]string{"", "ResizeObserver"})

	assert.True(t, filter(browser.ConsoleMessage{Message: "ResizeObserver loop limit exceeded"}))
	assert.False(t, filter(browser.ConsoleMessage{Message: "Uncaught TypeError: x is undefined"}))
}
