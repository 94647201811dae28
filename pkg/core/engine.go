package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/steprunner"
	"github.com/arnavsurve/popform/pkg/types"
)

// BatchOptions configures one run over a configuration.
type BatchOptions struct {
	Launch browser.LaunchOptions
	// Concurrency caps the pages filled at once. Zero means no limit.
	Concurrency int
	Debug       bool
	DebugDir    string
}

// BatchEngine fills every page of a configuration, each in its own tab of one shared browser.
type BatchEngine struct {
	Logger    Logger
	Launch    browser.Factory
	NewRunner steprunner.RunnerFactory
}

func NewBatchEngine(logger Logger, launch browser.Factory) *BatchEngine {
	return &BatchEngine{
		Logger:    logger,
		Launch:    launch,
		NewRunner: steprunner.NewPageRunner,
	}
}

// Execute runs all pages. The first page error cancels the remaining pages and
// is returned. The browser is closed once every page has returned.
func (e *BatchEngine) Execute(ctx context.Context, cfg *Config, opts BatchOptions) (err error) {
	e.Logger.Info().Int("pages", len(cfg.Pages)).Msg("Launching browser")
	b, err := e.Launch(ctx, opts.Launch)
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		closeErr := b.Close()
		switch {
		case closeErr == nil:
		case err == nil:
			err = fmt.Errorf("closing browser: %w", closeErr)
		default:
			e.Logger.Warn().Err(closeErr).Msg("Closing browser failed")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for _, page := range cfg.Pages {
		page := page // per-iteration copy; go.mod targets pre-1.22 loop semantics
		pageLogger := e.Logger.With().Str("page", page.Name).Logger()
		execCtx := types.NewExecutionContext(page, pageLogger, opts.Debug, opts.DebugDir)
		runner := e.NewRunner(b, execCtx)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := runner.Run(gctx); err != nil {
				pageLogger.Error().Err(err).Msg("Page failed")
				return fmt.Errorf("page %q: %w", page.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
