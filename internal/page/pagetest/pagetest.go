// Package pagetest provides an in-memory page.Page for tests.
//
// Elements form a tree. A selector matches an element when it is listed in
// the element's Match slice, so tests spell out exactly which selectors a
// fixture answers to.
package pagetest

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spigell/junior-hunter/internal/page"
)

// ErrTimeout is returned by waits that would have timed out.
var ErrTimeout = errors.New("timeout exceeded")

// Element is a node of the fake document.
type Element struct {
	ID     string
	Tag    string
	Match  []string
	Text   string
	Attrs  map[string]string
	Hidden bool
	Image  []byte

	// ReadErr is returned from InnerText and InnerHTML when set.
	ReadErr error
	// ClickErr is returned from Click when set.
	ClickErr error
	// OnClick runs after a successful click.
	OnClick func()
	// OnRead runs before InnerText and may panic to inject failures.
	OnRead func()

	Children []*Element
	parent   *Element
}

// El builds an element with the given id and matching selectors.
func El(id string, match ...string) *Element {
	return &Element{ID: id, Tag: "div", Match: match, Attrs: map[string]string{}}
}

// WithText sets the element text.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// WithTag sets the element tag used when rendering HTML.
func (e *Element) WithTag(tag string) *Element {
	e.Tag = tag
	return e
}

// WithAttr sets an attribute.
func (e *Element) WithAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
	return e
}

// WithHidden marks the element hidden.
func (e *Element) WithHidden(hidden bool) *Element {
	e.Hidden = hidden
	return e
}

// Add appends children and returns the receiver.
func (e *Element) Add(children ...*Element) *Element {
	for _, c := range children {
		c.parent = e
		e.Children = append(e.Children, c)
	}
	return e
}

// Visible reports whether the element and all its ancestors are shown.
func (e *Element) Visible() bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.Hidden {
			return false
		}
	}
	return true
}

func (e *Element) innerText() string {
	parts := make([]string, 0, len(e.Children)+1)
	if strings.TrimSpace(e.Text) != "" {
		parts = append(parts, e.Text)
	}
	for _, c := range e.Children {
		if c.Hidden {
			continue
		}
		if t := c.innerText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func (e *Element) innerHTML() string {
	var b strings.Builder
	b.WriteString(html.EscapeString(e.Text))
	for _, c := range e.Children {
		c.outerHTML(&b)
	}
	return b.String()
}

func (e *Element) outerHTML(b *strings.Builder) {
	tag := e.Tag
	if tag == "" {
		tag = "div"
	}
	b.WriteString("<" + tag)
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%q", k, html.EscapeString(e.Attrs[k]))
	}
	b.WriteString(">")
	b.WriteString(e.innerHTML())
	b.WriteString("</" + tag + ">")
}

func (e *Element) matches(selector string) bool {
	for _, m := range e.Match {
		if m == selector {
			return true
		}
	}
	return false
}

func (e *Element) descendants(fn func(*Element) bool) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if fn(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// Page is a fake page.Page backed by an element tree.
type Page struct {
	Root *Element

	// OnPress runs after every key press.
	OnPress func(key string)
	// ScreenshotErr is returned from Page.Screenshot when set.
	ScreenshotErr error

	mu    sync.Mutex
	calls []string
	url   string
}

// New creates a page whose document contains the given elements.
func New(children ...*Element) *Page {
	root := El("document", "body")
	root.Add(children...)
	return &Page{Root: root}
}

// Calls returns the recorded interactions, e.g. "click:close" or "press:Escape".
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// CountCalls returns how many recorded calls equal call.
func (p *Page) CountCalls(call string) int {
	n := 0
	for _, c := range p.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (p *Page) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *Page) Goto(url string) error {
	p.record("goto:" + url)
	p.url = url
	return nil
}

func (p *Page) URL() string { return p.url }

func (p *Page) Locator(selector string) page.Locator {
	return &Locator{page: p, resolve: func() []*Element {
		if selector == "body" {
			return []*Element{p.Root}
		}
		return p.Root.descendants(func(e *Element) bool { return e.matches(selector) })
	}}
}

func (p *Page) GetByText(text string) page.Locator {
	needle := strings.ToLower(text)
	return &Locator{page: p, resolve: func() []*Element {
		return p.Root.descendants(func(e *Element) bool {
			return strings.Contains(strings.ToLower(e.Text), needle)
		})
	}}
}

func (p *Page) Press(key string) error {
	p.record("press:" + key)
	if p.OnPress != nil {
		p.OnPress(key)
	}
	return nil
}

func (p *Page) Screenshot() ([]byte, error) {
	p.record("screenshot:page")
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return []byte("viewport"), nil
}

// Locator is a lazily resolved fake locator.
type Locator struct {
	page    *Page
	resolve func() []*Element
}

func (l *Locator) derive(fn func([]*Element) []*Element) *Locator {
	return &Locator{page: l.page, resolve: func() []*Element { return fn(l.resolve()) }}
}

func (l *Locator) Locator(selector string) page.Locator {
	return l.derive(func(els []*Element) []*Element {
		var out []*Element
		for _, e := range els {
			out = append(out, e.descendants(func(d *Element) bool { return d.matches(selector) })...)
		}
		return out
	})
}

func (l *Locator) Filter(hasText string) page.Locator {
	needle := strings.ToLower(hasText)
	return l.derive(func(els []*Element) []*Element {
		var out []*Element
		for _, e := range els {
			if strings.Contains(strings.ToLower(e.innerText()), needle) {
				out = append(out, e)
			}
		}
		return out
	})
}

func (l *Locator) First() page.Locator { return l.Nth(0) }

func (l *Locator) Last() page.Locator {
	return l.derive(func(els []*Element) []*Element {
		if len(els) == 0 {
			return nil
		}
		return els[len(els)-1:]
	})
}

func (l *Locator) Nth(i int) page.Locator {
	return l.derive(func(els []*Element) []*Element {
		if i < 0 || i >= len(els) {
			return nil
		}
		return els[i : i+1]
	})
}

func (l *Locator) Parent() page.Locator {
	return l.derive(func(els []*Element) []*Element {
		var out []*Element
		for _, e := range els {
			if e.parent != nil {
				out = append(out, e.parent)
			}
		}
		return out
	})
}

func (l *Locator) one() (*Element, error) {
	els := l.resolve()
	if len(els) == 0 {
		return nil, page.ErrNotFound
	}
	return els[0], nil
}

func (l *Locator) Count() (int, error) {
	return len(l.resolve()), nil
}

func (l *Locator) IsVisible() bool {
	el, err := l.one()
	return err == nil && el.Visible()
}

func (l *Locator) WaitVisible(time.Duration) error {
	if l.IsVisible() {
		return nil
	}
	return ErrTimeout
}

func (l *Locator) WaitHidden(time.Duration) error {
	el, err := l.one()
	if err != nil || !el.Visible() {
		return nil
	}
	return ErrTimeout
}

func (l *Locator) InnerText(time.Duration) (string, error) {
	el, err := l.one()
	if err != nil {
		return "", err
	}
	if el.OnRead != nil {
		el.OnRead()
	}
	if el.ReadErr != nil {
		return "", el.ReadErr
	}
	return el.innerText(), nil
}

func (l *Locator) InnerHTML(time.Duration) (string, error) {
	el, err := l.one()
	if err != nil {
		return "", err
	}
	if el.ReadErr != nil {
		return "", el.ReadErr
	}
	return el.innerHTML(), nil
}

func (l *Locator) Attribute(name string, _ time.Duration) (string, error) {
	el, err := l.one()
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

func (l *Locator) Click(time.Duration) error {
	el, err := l.one()
	if err != nil {
		return err
	}
	if !el.Visible() {
		return ErrTimeout
	}
	if el.ClickErr != nil {
		return el.ClickErr
	}
	l.page.record("click:" + el.ID)
	if el.OnClick != nil {
		el.OnClick()
	}
	return nil
}

func (l *Locator) ScrollIntoView(time.Duration) error {
	el, err := l.one()
	if err != nil {
		return err
	}
	l.page.record("scroll:" + el.ID)
	return nil
}

func (l *Locator) Screenshot(time.Duration) ([]byte, error) {
	el, err := l.one()
	if err != nil {
		return nil, err
	}
	l.page.record("screenshot:" + el.ID)
	if el.Image != nil {
		return el.Image, nil
	}
	return []byte("image:" + el.ID), nil
}
