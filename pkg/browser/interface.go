package browser

import (
	"context"
	"errors"

	"github.com/arnavsurve/popform/pkg/types"
)

var (
	ErrUnknownDriver = errors.New("unknown browser driver")
	ErrUnknownKey    = errors.New("unknown key")
)

// LaunchOptions configures the shared browser process.
type LaunchOptions struct {
	// Bin is the browser executable. Empty means look it up on the host.
	Bin string
	// Flags are passed to the browser on the command line, without leading dashes.
	Flags []string
}

// DefaultFlags are always passed to the launched browser.
var DefaultFlags = []string{"no-sandbox", "headless", "disable-gpu"}

// Browser is one browser process shared by every page of a batch.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// ConsoleMessage is one console API call made by page scripts.
type ConsoleMessage struct {
	Type string
	Text string
}

// Page is a single tab owned by one page run.
type Page interface {
	// Navigate loads url and blocks until the navigation completes per opts.
	Navigate(ctx context.Context, url string, opts types.WaitOptions) error
	// WatchNavigation starts watching for a navigation immediately and returns a
	// function blocking until it completes or ctx is done.
	WatchNavigation(ctx context.Context, opts types.WaitOptions) func() error
	// Evaluate calls the JavaScript function js with JSON-serialisable args and
	// returns its JSON-decoded result.
	Evaluate(ctx context.Context, js string, args ...any) (any, error)
	PressKey(ctx context.Context, key string) error
	Screenshot(ctx context.Context, path string) error
	OnConsole(handler func(ConsoleMessage))
	Close() error
}
