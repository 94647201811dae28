// Package browsertest provides an in-memory browser driver for exercising the
// step engine without launching Chromium. Its documents understand the same
// JSON requests as the engine's page script and apply them with the same rules.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

var (
	_ browser.Browser = (*Browser)(nil)
	_ browser.Page    = (*Page)(nil)
)

// Element is a fake DOM element.
type Element struct {
	ID    string
	Name  string
	Type  string
	Props map[string]any
	// Events records focus, change, blur and click in dispatch order.
	Events []string
}

// Prop returns a property value, reading value/checked like a DOM element would.
func (e *Element) Prop(key string) any {
	if e.Props == nil {
		return nil
	}
	return e.Props[key]
}

func (e *Element) set(key string, v any) {
	if e.Props == nil {
		e.Props = make(map[string]any)
	}
	e.Props[key] = v
}

// Document is a fake DOM document. Selectors are matched as "#id" only.
type Document struct {
	Elements []*Element
	// Frames maps an iframe selector to its nested document.
	Frames map[string]*Document
}

// NewDocument builds a document from elements.
func NewDocument(elements ...*Element) *Document {
	return &Document{Elements: elements, Frames: map[string]*Document{}}
}

func (d *Document) byName(name string) []*Element {
	var out []*Element
	for _, el := range d.Elements {
		if el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

func (d *Document) query(selector string) *Element {
	id, ok := strings.CutPrefix(selector, "#")
	if !ok {
		return nil
	}
	for _, el := range d.Elements {
		if el.ID == id {
			return el
		}
	}
	return nil
}

// Page is a fake tab. Clicking a selector or pressing a key listed in
// NavigatesOn completes every pending navigation watch.
type Page struct {
	mu sync.Mutex

	Doc         *Document
	NavigatesOn map[string]bool
	// EvaluateErr, when set, is returned by every Evaluate call.
	EvaluateErr error

	URL         string
	Navigations []types.WaitOptions
	Keys        []string
	Screenshots []string
	Requests    []string
	Closed      bool

	watchers []chan struct{}
	console  []func(browser.ConsoleMessage)
}

// NewPage returns a page showing doc.
func NewPage(doc *Document) *Page {
	if doc == nil {
		doc = NewDocument()
	}
	return &Page{Doc: doc, NavigatesOn: map[string]bool{}}
}

func (p *Page) Navigate(ctx context.Context, url string, opts types.WaitOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.URL = url
	p.Navigations = append(p.Navigations, opts)
	return ctx.Err()
}

func (p *Page) WatchNavigation(ctx context.Context, opts types.WaitOptions) func() error {
	ch := make(chan struct{})
	p.mu.Lock()
	p.watchers = append(p.watchers, ch)
	p.mu.Unlock()
	return func() error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// navigate completes all pending watches. Callers hold p.mu.
func (p *Page) navigate() {
	for _, ch := range p.watchers {
		close(ch)
	}
	p.watchers = nil
}

// Console emits a console message to every subscriber.
func (p *Page) Console(msg browser.ConsoleMessage) {
	p.mu.Lock()
	handlers := append([]func(browser.ConsoleMessage){}, p.console...)
	p.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

func (p *Page) OnConsole(handler func(browser.ConsoleMessage)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.console = append(p.console, handler)
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	if _, err := browser.LookupKey(key); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Keys = append(p.Keys, key)
	if p.NavigatesOn[key] {
		p.navigate()
	}
	return ctx.Err()
}

func (p *Page) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Screenshots = append(p.Screenshots, path)
	return ctx.Err()
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// request mirrors the JSON request built by the step engine.
type request struct {
	Op       string                         `json:"op"`
	Frame    string                         `json:"frame"`
	Name     string                         `json:"name"`
	Literal  *string                        `json:"literal"`
	Checked  bool                           `json:"checked"`
	Props    map[string]types.PropertyValue `json:"props"`
	Selector string                         `json:"selector"`
	Field    bool                           `json:"field"`
}

func (p *Page) Evaluate(ctx context.Context, js string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.EvaluateErr != nil {
		return nil, p.EvaluateErr
	}
	if js == "" || len(args) != 1 {
		return nil, fmt.Errorf("browsertest: unexpected script call with %d args", len(args))
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return nil, err
	}
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, req.Op)

	doc := p.Doc
	if req.Frame != "" {
		doc = p.Doc.Frames[req.Frame]
		if doc == nil {
			return result("no-frame", 0), nil
		}
	}

	switch req.Op {
	case "field":
		els := doc.byName(req.Name)
		for _, el := range els {
			el.Events = append(el.Events, "focus")
			switch {
			case el.Type == "checkbox" && req.Literal != nil:
				el.set("checked", req.Checked)
			case req.Literal != nil:
				el.set("value", *req.Literal)
			default:
				applyProps(el, req.Props)
			}
			el.Events = append(el.Events, "change", "blur")
		}
		return result("ok", len(els)), nil
	case "element":
		el := doc.query(req.Selector)
		if el == nil {
			return result("no-element", 0), nil
		}
		if req.Field {
			el.Events = append(el.Events, "focus")
		}
		applyProps(el, req.Props)
		if req.Field {
			el.Events = append(el.Events, "change", "blur")
		}
		return result("ok", 1), nil
	case "click":
		el := doc.query(req.Selector)
		if el == nil {
			return result("no-element", 0), nil
		}
		el.Events = append(el.Events, "click")
		if p.NavigatesOn[req.Selector] {
			p.navigate()
		}
		return result("ok", 1), nil
	default:
		return nil, fmt.Errorf("browsertest: unknown op %q", req.Op)
	}
}

func applyProps(el *Element, props map[string]types.PropertyValue) {
	for key, pv := range props {
		if key == "name" {
			continue
		}
		if el.Type == "checkbox" && key == "checked" {
			el.set(key, types.Truthy(pv.Value()))
			continue
		}
		el.set(key, pv.Apply(el.Prop(key)))
	}
}

// result mimics the page script's return value after JSON decoding.
func result(status string, count int) map[string]any {
	return map[string]any{"status": status, "count": float64(count)}
}

// Browser is a fake browser handing out pages in order.
type Browser struct {
	mu sync.Mutex

	// NewPageFunc builds the page for the n-th NewPage call.
	NewPageFunc func(n int) *Page
	Pages       []*Page
	CloseCalls  int
	CloseErr    error
}

func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var page *Page
	if b.NewPageFunc != nil {
		page = b.NewPageFunc(len(b.Pages))
	}
	if page == nil {
		page = NewPage(nil)
	}
	b.Pages = append(b.Pages, page)
	return page, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCalls++
	return b.CloseErr
}

// Factory returns a browser.Factory always yielding b.
func Factory(b *Browser) browser.Factory {
	return func(ctx context.Context, opts browser.LaunchOptions) (browser.Browser, error) {
		return b, nil
	}
}
