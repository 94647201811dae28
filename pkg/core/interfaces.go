package core

import "github.com/arnavsurve/popform/pkg/types"

// Event defines a single log event.
type Event = types.Event

// Context defines a logging context.
type Context = types.Context

// Logger defines the logging interface.
type Logger = types.Logger
