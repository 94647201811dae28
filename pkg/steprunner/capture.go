package steprunner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
)

// DebugCapture writes "<label>.<phase>.debug.png" screenshots when enabled.
type DebugCapture struct {
	Page    browser.Page
	Enabled bool
	Dir     string
	Logger  types.Logger
}

// ScreenshotName is the file name of a step's debug screenshot.
func ScreenshotName(label, phase string) string {
	return fmt.Sprintf("%s.%s.debug.png", label, phase)
}

func (c DebugCapture) Capture(ctx context.Context, label, phase string) error {
	if !c.Enabled {
		return nil
	}
	path := filepath.Join(c.Dir, ScreenshotName(label, phase))
	if err := c.Page.Screenshot(ctx, path); err != nil {
		return fmt.Errorf("capturing %s screenshot for %q: %w", phase, label, err)
	}
	c.Logger.Debug().Str("path", path).Msg("Screenshot saved")
	return nil
}
