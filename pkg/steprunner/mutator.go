package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// FieldMutator sets a value on every element carrying a given name attribute.
type FieldMutator struct {
	Page   browser.Page
	Frame  string
	Logger types.Logger
}

// Apply returns the number of elements updated. No match is not an error.
func (m FieldMutator) Apply(ctx context.Context, field types.Field) (int, error) {
	req := domRequest{
		Op:    opField,
		Frame: m.Frame,
		Name:  field.Name,
	}
	if field.Value.IsLiteral() {
		req.Literal = field.Value.Literal
		req.Checked = field.Value.Checked
	} else {
		req.Props = field.Value.Properties
	}

	res, err := evaluate(ctx, m.Page, req)
	if err != nil {
		return 0, fmt.Errorf("setting field %q: %w", field.Name, err)
	}
	if res.Status == statusNoFrame {
		return 0, fmt.Errorf("setting field %q: %w: %q", field.Name, ErrFrameNotFound, m.Frame)
	}
	m.Logger.Debug().Str("field", field.Name).Int("matches", res.Count).Msg("Field populated")
	return res.Count, nil
}

// ElementMutator assigns properties to the first element matching a selector.
type ElementMutator struct {
	Page   browser.Page
	Frame  string
	Logger types.Logger
}

// Apply reports whether the element was found. A missing element is not an error.
func (m ElementMutator) Apply(ctx context.Context, spec types.ElementSpec) (bool, error) {
	res, err := evaluate(ctx, m.Page, domRequest{
		Op:       opElement,
		Frame:    m.Frame,
		Selector: spec.Query,
		Field:    spec.Field,
		Props:    spec.Properties,
	})
	if err != nil {
		return false, fmt.Errorf("updating element %q: %w", spec.Query, err)
	}
	switch res.Status {
	case statusNoFrame:
		return false, fmt.Errorf("updating element %q: %w: %q", spec.Query, ErrFrameNotFound, m.Frame)
	case statusNoElement:
		m.Logger.Debug().Str("query", spec.Query).Msg("No element matched, skipping")
		return false, nil
	}
	m.Logger.Debug().Str("query", spec.Query).Msg("Element updated")
	return true, nil
}
