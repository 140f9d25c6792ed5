package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is a leased browser with a single tracked page. Application flows
// that open a new tab (Workday does this from the Apply button) transfer the
// session to the new page rather than juggling both.
type Session struct {
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
	CurrentURL string

	release func(*Session)
}

// NavigateOptions configures page navigation.
type NavigateOptions struct {
	WaitUntil string
	TimeoutMs float64
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.TimeoutMs > 0 {
		playwrightOpts.Timeout = &opts.TimeoutMs
	}

	_, err := s.Page.Goto(url, playwrightOpts)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// URL returns the tracked page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Frames returns all frames of the tracked page, main frame included.
// Greenhouse and Lever forms commonly live inside an embedded iframe.
func (s *Session) Frames() []playwright.Frame {
	s.UpdateLastUsed()
	return s.Page.Frames()
}

// MainFrame returns the page's top-level frame.
func (s *Session) MainFrame() playwright.Frame {
	return s.Page.MainFrame()
}

// IsAlive reports whether the tracked page can still be driven.
func (s *Session) IsAlive() bool {
	if s.Page == nil || s.Page.IsClosed() {
		return false
	}
	_, err := s.Page.Evaluate("1 + 1")
	return err == nil
}

// EnsureLive recovers the session after the tracked page was closed, by
// adopting the newest open page in the context. It fails when no page is
// left to adopt.
func (s *Session) EnsureLive() error {
	if s.IsAlive() {
		return nil
	}

	pages := s.Context.Pages()
	for i := len(pages) - 1; i >= 0; i-- {
		if !pages[i].IsClosed() {
			s.Page = pages[i]
			s.CurrentURL = s.Page.URL()
			return nil
		}
	}
	return fmt.Errorf("browser session lost: no open pages remain")
}

// Click clicks the first element matching the selector.
func (s *Session) Click(selector string, timeoutMs float64) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageClickOptions{}
	if timeoutMs > 0 {
		playwrightOpts.Timeout = &timeoutMs
	}

	if err := s.Page.Click(selector, playwrightOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// ClickExpectingPage clicks a selector that may open a new tab. If a new
// page appears within the window the session transfers to it; if the click
// navigates in place the session keeps the current page. Only the click
// itself can fail.
func (s *Session) ClickExpectingPage(selector string, timeoutMs float64) error {
	s.UpdateLastUsed()

	var clickErr error
	newPage, expectErr := s.Context.ExpectPage(func() error {
		clickErr = s.Page.Click(selector, playwright.PageClickOptions{
			Timeout: &timeoutMs,
		})
		return clickErr
	}, playwright.BrowserContextExpectPageOptions{
		Timeout: playwright.Float(timeoutMs),
	})

	if clickErr != nil {
		return fmt.Errorf("click failed: %w", clickErr)
	}
	if expectErr == nil && newPage != nil {
		s.Page = newPage
		_ = s.Page.WaitForLoadState()
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// Visible reports whether at least one element matching the selector is
// visible on the tracked page.
func (s *Session) Visible(selector string) bool {
	visible, err := s.Page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

// CountVisible returns how many of the given selectors have at least one
// visible match. Used for form-indicator scoring.
func (s *Session) CountVisible(selectors []string) int {
	n := 0
	for _, sel := range selectors {
		if s.Visible(sel) {
			n++
		}
	}
	return n
}

// WaitSettle pauses for dynamically rendered content. Forms on scripted
// boards keep mutating the DOM well after the load event.
func (s *Session) WaitSettle(ms float64) {
	s.Page.WaitForTimeout(ms)
}

// Screenshot writes a full-page screenshot to the given path.
func (s *Session) Screenshot(path string) error {
	s.UpdateLastUsed()
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Capture returns a cleaned snapshot of the tracked page for diagnostics
// and recon. Scripts, styles, and non-form noise are stripped; targeting
// attributes survive.
func (s *Session) Capture(maxLength int) (*PageCapture, error) {
	s.UpdateLastUsed()

	raw, err := s.Page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	capture, err := cleanPage(raw, maxLength)
	if err != nil {
		return nil, err
	}
	capture.URL = s.Page.URL()
	return capture, nil
}

// Close releases the session's browser resources and returns the lease to
// the manager. Safe to call more than once.
func (s *Session) Close() {
	s.closeResources()
	if s.release != nil {
		s.release(s)
		s.release = nil
	}
}

// closeResources tears down page, context, then browser. Errors are ignored
// so cleanup always runs to completion.
func (s *Session) closeResources() {
	if s.Page != nil {
		_ = s.Page.Close()
	}
	if s.Context != nil {
		_ = s.Context.Close()
	}
	if s.Browser != nil {
		_ = s.Browser.Close()
	}
}
