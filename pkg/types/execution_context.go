package types

import "time"

// WaitUntil selects what counts as a completed navigation.
type WaitUntil string

const (
	WaitLoad        WaitUntil = "load"
	WaitNetworkIdle WaitUntil = "networkidle"
)

const (
	// DefaultNetworkIdleTime is used when networkIdle is set to true.
	DefaultNetworkIdleTime = 1000 * time.Millisecond
	// DefaultMaxInflight is the number of open requests still considered idle.
	DefaultMaxInflight = 2
)

// WaitOptions describes how navigation completion is detected for a page.
type WaitOptions struct {
	Until       WaitUntil
	IdleTime    time.Duration
	MaxInflight int
}

// ExecutionContext contains the context needed to run the steps of one page.
type ExecutionContext struct {
	Page     PageDefinition
	Wait     WaitOptions
	Logger   Logger
	Debug    bool
	DebugDir string
}

// NewExecutionContext derives the page's wait semantics once from its networkIdle setting.
func NewExecutionContext(page PageDefinition, logger Logger, debug bool, debugDir string) ExecutionContext {
	return ExecutionContext{
		Page:     page,
		Wait:     page.NetworkIdle.WaitOptions(),
		Logger:   logger,
		Debug:    debug,
		DebugDir: debugDir,
	}
}
