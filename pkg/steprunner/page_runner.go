package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// PageRunner fills one page in its own tab of the shared browser.
type PageRunner struct {
	Browser browser.Browser
	ExecCtx types.ExecutionContext
}

func (r *PageRunner) Run(ctx context.Context) (err error) {
	def := r.ExecCtx.Page
	logger := r.ExecCtx.Logger

	page, err := r.Browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("opening tab for page %q: %w", def.Name, err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing tab for page %q: %w", def.Name, closeErr)
		}
	}()

	page.OnConsole(relayConsole(logger))

	logger.Debug().Str("url", def.URL).Str("wait_until", string(r.ExecCtx.Wait.Until)).Msg("Navigating")
	if err := page.Navigate(ctx, def.URL, r.ExecCtx.Wait); err != nil {
		return fmt.Errorf("loading page %q: %w", def.Name, err)
	}

	for i, step := range def.NormalizedSteps() {
		label := def.StepLabel(i)
		executor := StepExecutor{
			Page:    page,
			ExecCtx: r.ExecCtx,
			Logger:  logger.With().Str("step", label).Logger(),
		}
		if err := executor.Execute(ctx, label, step); err != nil {
			return fmt.Errorf("running step %q: %w", label, err)
		}
	}

	if def.Message != "" {
		logger.Info().Msg(def.Message)
	} else {
		logger.Info().Msgf("Finished %s: %s", def.Name, def.URL)
	}
	return nil
}
