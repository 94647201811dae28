package steprunner

import (
	"context"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// Runner fills one page.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFactory builds the runner for one page on the shared browser.
type RunnerFactory func(b browser.Browser, ctx types.ExecutionContext) Runner

// NewPageRunner is the default RunnerFactory.
func NewPageRunner(b browser.Browser, ctx types.ExecutionContext) Runner {
	return &PageRunner{Browser: b, ExecCtx: ctx}
}
