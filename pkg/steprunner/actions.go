package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// ActionDispatcher performs a step's clicks and key presses, each paired with
// its own navigation wait. Clicks run first, then keys.
type ActionDispatcher struct {
	Page   browser.Page
	Frame  string
	Waiter NavigationWaiter
}

func (d ActionDispatcher) Dispatch(ctx context.Context, step types.Step) error {
	for _, selector := range step.Click {
		err := d.Waiter.Trigger(ctx, "click "+selector, func(ctx context.Context) error {
			return d.click(ctx, selector)
		})
		if err != nil {
			return err
		}
	}
	for _, key := range step.Keys {
		err := d.Waiter.Trigger(ctx, "key "+key, func(ctx context.Context) error {
			if err := d.Page.PressKey(ctx, key); err != nil {
				return fmt.Errorf("pressing key %q: %w", key, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (d ActionDispatcher) click(ctx context.Context, selector string) error {
	res, err := evaluate(ctx, d.Page, domRequest{
		Op:       opClick,
		Frame:    d.Frame,
		Selector: selector,
	})
	if err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}
	switch res.Status {
	case statusNoFrame:
		return fmt.Errorf("clicking %q: %w: %q", selector, ErrFrameNotFound, d.Frame)
	case statusNoElement:
		return fmt.Errorf("clicking %q: %w", selector, ErrElementNotFound)
	}
	return nil
}
