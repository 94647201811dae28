package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/arnavsurve/popform/pkg/types"
)

// RodDriver is the name the go-rod driver is registered under.
const RodDriver = "rod"

func init() {
	RegisterDriver(RodDriver, LaunchRod)
}

var (
	_ Browser = (*rodBrowser)(nil)
	_ Page    = (*rodPage)(nil)
)

type rodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// LaunchRod starts a local Chromium through go-rod's launcher and connects to it.
func LaunchRod(ctx context.Context, opts LaunchOptions) (Browser, error) {
	bin := opts.Bin
	if bin == "" {
		if path, found := launcher.LookPath(); found {
			bin = path
		}
	}

	l := launcher.New().Context(ctx).Headless(true).Leakless(false)
	if bin != "" {
		l = l.Bin(bin)
	}
	for _, f := range append(append([]string{}, DefaultFlags...), opts.Flags...) {
		l = l.Set(flags.Flag(strings.TrimLeft(f, "-")))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser %q: %w", bin, err)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser at %q: %w", controlURL, err)
	}

	return &rodBrowser{launcher: l, browser: b}, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	pageCtx, cancel := context.WithCancel(context.Background())
	return &rodPage{page: page, ctx: pageCtx, cancel: cancel}, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

type rodPage struct {
	page *rod.Page

	// ctx bounds background event listeners; cancelled on Close.
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *rodPage) Navigate(ctx context.Context, url string, opts types.WaitOptions) error {
	wait := p.WatchNavigation(ctx, opts)
	if err := p.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigating to %q: %w", url, err)
	}
	if err := wait(); err != nil {
		return fmt.Errorf("waiting for %q to load: %w", url, err)
	}
	return nil
}

func (p *rodPage) WatchNavigation(ctx context.Context, opts types.WaitOptions) func() error {
	page := p.page.Context(ctx)
	waitLoad := page.WaitNavigation(proto.PageLifecycleEventNameLoad)

	var waitIdle func() error
	if opts.Until == types.WaitNetworkIdle {
		waitIdle = p.watchNetworkIdle(ctx, opts.IdleTime, opts.MaxInflight)
	}

	return func() error {
		waitLoad()
		if err := ctx.Err(); err != nil {
			return err
		}
		if waitIdle != nil {
			return waitIdle()
		}
		return nil
	}
}

// watchNetworkIdle counts in-flight requests from the moment it is called. The
// returned function blocks until no more than maxInflight requests have been
// open for idle.
func (p *rodPage) watchNetworkIdle(ctx context.Context, idle time.Duration, maxInflight int) func() error {
	watchCtx, cancel := context.WithCancel(ctx)

	var mu sync.Mutex
	inflight := make(map[proto.NetworkRequestID]struct{})
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	go p.page.Context(watchCtx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			mu.Lock()
			inflight[e.RequestID] = struct{}{}
			mu.Unlock()
			notify()
		},
		func(e *proto.NetworkLoadingFinished) {
			mu.Lock()
			delete(inflight, e.RequestID)
			mu.Unlock()
			notify()
		},
		func(e *proto.NetworkLoadingFailed) {
			mu.Lock()
			delete(inflight, e.RequestID)
			mu.Unlock()
			notify()
		},
	)()

	return func() error {
		defer cancel()
		for {
			mu.Lock()
			open := len(inflight)
			mu.Unlock()

			var quiet <-chan time.Time
			if open <= maxInflight {
				quiet = time.After(idle)
			}

			select {
			case <-changed:
			case <-quiet:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (p *rodPage) Evaluate(ctx context.Context, js string, args ...any) (any, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("evaluating page script: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return res.Value.Val(), nil
}

func (p *rodPage) PressKey(ctx context.Context, key string) error {
	k, err := LookupKey(key)
	if err != nil {
		return err
	}
	if err := p.page.Context(ctx).Keyboard.Type(k); err != nil {
		return fmt.Errorf("pressing key %q: %w", key, err)
	}
	return nil
}

func (p *rodPage) Screenshot(ctx context.Context, path string) error {
	data, err := p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("capturing screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating screenshot directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing screenshot %q: %w", path, err)
	}
	return nil
}

func (p *rodPage) OnConsole(handler func(ConsoleMessage)) {
	go p.page.Context(p.ctx).EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		parts := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			parts = append(parts, consoleArgText(arg))
		}
		handler(ConsoleMessage{Type: string(e.Type), Text: strings.Join(parts, " ")})
	})()
}

func consoleArgText(arg *proto.RuntimeRemoteObject) string {
	if v := arg.Value.Val(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	if arg.Description != "" {
		return arg.Description
	}
	return string(arg.Type)
}

func (p *rodPage) Close() error {
	p.cancel()
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("closing page: %w", err)
	}
	return nil
}
