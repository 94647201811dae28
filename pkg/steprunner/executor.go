package steprunner

import (
	"context"
	"errors"
	"time"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// Phase names one stage of a step, in execution order.
type Phase string

const (
	PhaseBeforeCapture Phase = "before-capture"
	PhaseMutate        Phase = "mutate"
	PhaseDispatch      Phase = "dispatch-action"
	PhaseAwait         Phase = "await-navigation-or-delay"
	PhaseAfterCapture  Phase = "after-capture"
	PhaseDone          Phase = "done"
)

// StepExecutor runs one step against an open page.
type StepExecutor struct {
	Page    browser.Page
	ExecCtx types.ExecutionContext
	Logger  types.Logger
}

// Execute runs step and logs the "Populated" progress message once it is done.
// Any returned error is fatal for the page.
func (e StepExecutor) Execute(ctx context.Context, label string, step types.Step) error {
	logger := e.Logger
	capture := DebugCapture{
		Page:    e.Page,
		Enabled: e.ExecCtx.Debug,
		Dir:     e.ExecCtx.DebugDir,
		Logger:  logger,
	}

	e.enter(PhaseBeforeCapture)
	if err := capture.Capture(ctx, label, PhaseBefore); err != nil {
		return err
	}

	e.enter(PhaseMutate)
	if err := e.mutate(ctx, step); err != nil {
		return err
	}

	if step.HasAction() {
		e.enter(PhaseDispatch)
		dispatcher := ActionDispatcher{
			Page:  e.Page,
			Frame: step.IFrame,
			Waiter: NavigationWaiter{
				Page:    e.Page,
				Wait:    e.ExecCtx.Wait,
				Timeout: NavigationTimeout(step),
				Logger:  logger,
			},
		}
		if err := dispatcher.Dispatch(ctx, step); err != nil {
			return err
		}
	} else if step.Delay > 0 {
		e.enter(PhaseAwait)
		if err := sleep(ctx, step.DelayDuration()); err != nil {
			return err
		}
	}

	e.enter(PhaseAfterCapture)
	if err := capture.Capture(ctx, label, PhaseAfter); err != nil {
		return err
	}

	e.enter(PhaseDone)
	logger.Info().Msgf("Populated %s: %s", label, e.ExecCtx.Page.URL)
	return nil
}

func (e StepExecutor) enter(phase Phase) {
	e.Logger.Debug().Str("phase", string(phase)).Msg("Step phase")
}

// mutate applies fields in declared order, then elements. A missing iframe
// skips the remaining mutations of the step.
func (e StepExecutor) mutate(ctx context.Context, step types.Step) error {
	fields := FieldMutator{Page: e.Page, Frame: step.IFrame, Logger: e.Logger}
	for _, field := range step.Fields {
		if _, err := fields.Apply(ctx, field); err != nil {
			return e.tolerateMissingFrame(step, err)
		}
	}

	elements := ElementMutator{Page: e.Page, Frame: step.IFrame, Logger: e.Logger}
	for _, spec := range step.Elements {
		if _, err := elements.Apply(ctx, spec); err != nil {
			return e.tolerateMissingFrame(step, err)
		}
	}
	return nil
}

func (e StepExecutor) tolerateMissingFrame(step types.Step, err error) error {
	if errors.Is(err, ErrFrameNotFound) {
		e.Logger.Warn().Str("iframe", step.IFrame).Msg("Iframe not found, skipping fields and elements")
		return nil
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
