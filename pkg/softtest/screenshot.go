package softtest

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kidandcat/softassert/pkg/softassert"
)

type shotCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newShotCounter() *shotCounter {
	return &shotCounter{counts: make(map[string]int)}
}

// next returns the default file name for the n-th screenshot of a test:
// "Name.png", then "Name_2.png", "Name_3.png"...
func (s *shotCounter) next(name string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(name)

	s.mu.Lock()
	s.counts[name]++
	n := s.counts[name]
	s.mu.Unlock()

	if n == 1 {
		return safe + ".png"
	}
	return fmt.Sprintf("%s_%d.png", safe, n)
}

// screenshot saves a baseline on first use and compares against it after.
// A difference above the threshold is an assertion failure and leaves a
// .diff.png next to the baseline.
func (s *stepRunner) screenshot(ctx context.Context, filename string) error {
	if filename == "" {
		filename = s.shots.next(s.name)
	}

	if err := os.MkdirAll(s.config.ScreenshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	shot, err := s.page.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}

	path := filepath.Join(s.config.ScreenshotDir, filename)
	if _, err := os.Stat(path); err != nil || s.config.UpdateScreenshots {
		if err := os.WriteFile(path, shot, 0644); err != nil {
			return fmt.Errorf("failed to save screenshot: %w", err)
		}
		return nil
	}

	baseline, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read existing screenshot: %w", err)
	}

	diff, err := compareImages(baseline, shot)
	if err != nil {
		return fmt.Errorf("failed to compare screenshots: %w", err)
	}
	if diff > s.config.ScreenshotThreshold {
		diffPath := strings.TrimSuffix(path, ".png") + ".diff.png"
		if err := os.WriteFile(diffPath, shot, 0644); err != nil {
			return fmt.Errorf("failed to save diff screenshot: %w", err)
		}
		return &softassert.AssertionError{
			Msg: fmt.Sprintf("screenshot differs from baseline by %.2f%% (threshold: %.2f%%); delete %s to accept the new one",
				diff*100, s.config.ScreenshotThreshold*100, path),
		}
	}
	return nil
}

// compareImages returns the share of differing pixels. Images of different
// size differ entirely.
func compareImages(baseline, current []byte) (float64, error) {
	baselineImg, err := png.Decode(bytes.NewReader(baseline))
	if err != nil {
		return 0, err
	}
	currentImg, err := png.Decode(bytes.NewReader(current))
	if err != nil {
		return 0, err
	}

	bounds := baselineImg.Bounds()
	if bounds != currentImg.Bounds() {
		return 1.0, nil
	}
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0, nil
	}

	different := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !colorsEqual(baselineImg.At(x, y), currentImg.At(x, y)) {
				different++
			}
		}
	}
	return float64(different) / float64(total), nil
}

func colorsEqual(c1, c2 color.Color) bool {
	r1, g1, b1, a1 := c1.RGBA()
	r2, g2, b2, a2 := c2.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}
