// Package browser wraps Playwright with the session model the autofill
// engine needs: one leased browser session at a time, frame access for
// embedded application forms, and page capture for diagnostics.
package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeoutMs      = 30000
)

// SessionOptions configures a leased browser session.
type SessionOptions struct {
	Headless  bool
	Viewport  *Viewport
	TimeoutMs float64
}

// Viewport is the browser window size.
type Viewport struct {
	Width  int
	Height int
}

// Manager owns the Playwright runtime and hands out at most one Session at
// a time. Application flows are strictly sequential, so a second lease while
// one is active is a caller bug, not a capacity problem.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	active      *Session
	initialized bool
}

// NewManager creates a session manager. Initialize must be called before
// leasing a session.
func NewManager() *Manager {
	return &Manager{}
}

// Initialize installs browser binaries if needed and starts the Playwright
// driver. Driver output is discarded so it does not interleave with the
// engine's own logging.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Lease launches a browser and returns the session. It fails if a session
// is already active; the previous lease must be released first.
func (m *Manager) Lease(opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}
	if m.active != nil {
		return nil, fmt.Errorf("a browser session is already active")
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.TimeoutMs == 0 {
		opts.TimeoutMs = DefaultTimeoutMs
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	browser, err := m.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.TimeoutMs)

	now := time.Now()
	session := &Session{
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
		CurrentURL: "about:blank",
		release:    m.release,
	}

	m.active = session
	return session, nil
}

// release is invoked by Session.Close so the manager can accept a new lease.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == s {
		m.active = nil
	}
}

// Active returns the current session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Shutdown closes any active session and stops the Playwright driver.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.mu.Unlock()

	if active != nil {
		active.closeResources()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
