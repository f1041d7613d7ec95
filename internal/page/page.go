// Package page describes the browser primitives the scanner relies on.
// Every blocking call takes an explicit timeout so a missing element can never
// stall a scan.
package page

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a locator resolves to no element.
var ErrNotFound = errors.New("element not found")

// Key names understood by Page.Press.
const (
	KeyEscape = "Escape"
)

// Page is one browser tab.
type Page interface {
	Goto(url string) error
	Locator(selector string) Locator
	// GetByText matches elements containing text, case-insensitively.
	GetByText(text string) Locator
	Press(key string) error
	Screenshot() ([]byte, error)
	URL() string
}

// Locator is a lazily resolved reference to zero or more elements.
type Locator interface {
	Locator(selector string) Locator
	Filter(hasText string) Locator
	First() Locator
	Last() Locator
	Nth(i int) Locator
	Parent() Locator

	Count() (int, error)
	IsVisible() bool
	WaitVisible(timeout time.Duration) error
	WaitHidden(timeout time.Duration) error
	InnerText(timeout time.Duration) (string, error)
	InnerHTML(timeout time.Duration) (string, error)
	Attribute(name string, timeout time.Duration) (string, error)
	Click(timeout time.Duration) error
	ScrollIntoView(timeout time.Duration) error
	Screenshot(timeout time.Duration) ([]byte, error)
}

// FirstVisible returns the first selector in order that resolves to a
// visible element inside root, waiting at most timeout for each one.
func FirstVisible(root Locator, selectors []string, timeout time.Duration) (Locator, string, bool) {
	for _, sel := range selectors {
		loc := root.Locator(sel).First()
		if loc.IsVisible() {
			return loc, sel, true
		}
		if timeout > 0 && loc.WaitVisible(timeout) == nil {
			return loc, sel, true
		}
	}
	return nil, "", false
}
