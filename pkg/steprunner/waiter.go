package steprunner

import (
	"context"
	"time"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// DefaultNavigationTimeout bounds each post-action wait when the step sets no delay.
const DefaultNavigationTimeout = 10 * time.Second

// NavigationTimeout is the step's delay if set, otherwise DefaultNavigationTimeout.
func NavigationTimeout(step types.Step) time.Duration {
	if step.Delay > 0 {
		return step.DelayDuration()
	}
	return DefaultNavigationTimeout
}

// NavigationWaiter pairs an action with a bounded wait for the navigation it may cause.
type NavigationWaiter struct {
	Page    browser.Page
	Wait    types.WaitOptions
	Timeout time.Duration
	Logger  types.Logger
}

// Trigger arms the navigation watch, runs action, then waits for the navigation.
// A wait that ends without one is logged and counts as success; only the
// action's error or the cancellation of ctx is returned.
func (w NavigationWaiter) Trigger(ctx context.Context, what string, action func(context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	wait := w.Page.WatchNavigation(waitCtx, w.Wait)
	if err := action(ctx); err != nil {
		return err
	}

	if err := wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.Logger.Warn().
			Str("action", what).
			Dur("timeout", w.Timeout).
			Str("wait_until", string(w.Wait.Until)).
			Msg("No navigation completed after action, continuing")
		return nil
	}
	w.Logger.Debug().Str("action", what).Msg("Navigation completed")
	return nil
}
