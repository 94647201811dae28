package steprunner

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/steprunner/assets"
	"github.com/arnavsurve/popform/pkg/types"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrFrameNotFound   = errors.New("iframe not found")
)

var pageScript = assets.MustPageScript()

const (
	opField   = "field"
	opElement = "element"
	opClick   = "click"
)

const (
	statusOK        = "ok"
	statusNoFrame   = "no-frame"
	statusNoElement = "no-element"
)

// domRequest is the only input the page script receives. Values from the
// configuration travel as data and are never spliced into the script source.
type domRequest struct {
	Op       string                         `json:"op"`
	Frame    string                         `json:"frame,omitempty"`
	Name     string                         `json:"name,omitempty"`
	Literal  *string                        `json:"literal,omitempty"`
	Checked  bool                           `json:"checked,omitempty"`
	Props    map[string]types.PropertyValue `json:"props,omitempty"`
	Selector string                         `json:"selector,omitempty"`
	Field    bool                           `json:"field,omitempty"`
}

type domResult struct {
	Status string
	Count  int
}

func evaluate(ctx context.Context, page browser.Page, req domRequest) (domResult, error) {
	raw, err := page.Evaluate(ctx, pageScript, req)
	if err != nil {
		return domResult{}, fmt.Errorf("running %s request: %w", req.Op, err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return domResult{}, fmt.Errorf("unexpected %s result: %v", req.Op, raw)
	}
	res := domResult{}
	res.Status, _ = m["status"].(string)
	if count, ok := m["count"].(float64); ok {
		res.Count = int(count)
	}
	if res.Status == "" {
		return domResult{}, fmt.Errorf("unexpected %s result: %v", req.Op, raw)
	}
	return res, nil
}
