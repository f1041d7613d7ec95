package page

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Playwright adapts a playwright page to Page.
type Playwright struct {
	page playwright.Page
}

// NewPlaywright wraps p.
func NewPlaywright(p playwright.Page) *Playwright {
	return &Playwright{page: p}
}

func (p *Playwright) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Playwright) Locator(selector string) Locator {
	return &pwLocator{loc: p.page.Locator(selector)}
}

func (p *Playwright) GetByText(text string) Locator {
	return &pwLocator{loc: p.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(false),
	})}
}

func (p *Playwright) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *Playwright) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
	})
}

func (p *Playwright) URL() string {
	return p.page.URL()
}

type pwLocator struct {
	loc playwright.Locator
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (l *pwLocator) Locator(selector string) Locator {
	return &pwLocator{loc: l.loc.Locator(selector)}
}

func (l *pwLocator) Filter(hasText string) Locator {
	return &pwLocator{loc: l.loc.Filter(playwright.LocatorFilterOptions{HasText: hasText})}
}

func (l *pwLocator) First() Locator { return &pwLocator{loc: l.loc.First()} }

func (l *pwLocator) Last() Locator { return &pwLocator{loc: l.loc.Last()} }

func (l *pwLocator) Nth(i int) Locator { return &pwLocator{loc: l.loc.Nth(i)} }

func (l *pwLocator) Parent() Locator { return &pwLocator{loc: l.loc.Locator("xpath=..")} }

func (l *pwLocator) Count() (int, error) {
	return l.loc.Count()
}

func (l *pwLocator) IsVisible() bool {
	visible, err := l.loc.IsVisible()
	return err == nil && visible
}

func (l *pwLocator) WaitVisible(timeout time.Duration) error {
	return l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
}

func (l *pwLocator) WaitHidden(timeout time.Duration) error {
	return l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: ms(timeout),
	})
}

func (l *pwLocator) InnerText(timeout time.Duration) (string, error) {
	return l.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: ms(timeout)})
}

func (l *pwLocator) InnerHTML(timeout time.Duration) (string, error) {
	return l.loc.InnerHTML(playwright.LocatorInnerHTMLOptions{Timeout: ms(timeout)})
}

func (l *pwLocator) Attribute(name string, timeout time.Duration) (string, error) {
	return l.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: ms(timeout)})
}

func (l *pwLocator) Click(timeout time.Duration) error {
	return l.loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)})
}

func (l *pwLocator) ScrollIntoView(timeout time.Duration) error {
	return l.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: ms(timeout)})
}

func (l *pwLocator) Screenshot(timeout time.Duration) ([]byte, error) {
	return l.loc.Screenshot(playwright.LocatorScreenshotOptions{Timeout: ms(timeout)})
}
