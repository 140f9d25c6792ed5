// Package session orchestrates one application flow end to end: navigate,
// reach the form, detect fields, resolve and fill them, then stop at the
// pause-before-submit checkpoint. The controller never submits a form; the
// checkpoint is a deliberate human-in-the-loop step, not an option.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/applyforge/pkg/answerbank"
	"github.com/entrhq/applyforge/pkg/browser"
	"github.com/entrhq/applyforge/pkg/config"
	"github.com/entrhq/applyforge/pkg/detect"
	"github.com/entrhq/applyforge/pkg/fill"
	"github.com/entrhq/applyforge/pkg/platform"
	"github.com/entrhq/applyforge/pkg/resolve"
)

// Detector enumerates fields on a live session.
type Detector interface {
	Detect(*browser.Session) ([]*detect.FormField, error)
}

// Filler commits values into fields. *fill.Executor is the production
// implementation; tests substitute a stub.
type Filler interface {
	Fill(field *detect.FormField, value string) error
	OptionTexts(field *detect.FormField) []string
}

// Prompter escalates fields the pipeline could not resolve to a human
// operator. A nil Prompter means non-interactive: unresolved fields are
// left unfilled and reported.
type Prompter interface {
	// AskText requests a free-text answer. ok=false means skip.
	AskText(field *detect.FormField) (answer string, ok bool)
	// AskChoice requests a pick from a dropdown's options. ok=false means
	// skip.
	AskChoice(field *detect.FormField, options []string) (answer string, ok bool)
}

// Controller owns at most one browser session and drives the fill flow
// against it. Starting a new flow releases the previous session first;
// two sessions racing the same profile and answer-bank files would produce
// interleaved writes.
type Controller struct {
	cfg      config.Config
	manager  *browser.Manager
	bank     *answerbank.Bank
	resolver *resolve.Resolver
	detector Detector
	prompter Prompter
	log      *slog.Logger

	// newFiller builds the executor for a leased session. Overridable so
	// the fill loop is testable without a browser.
	newFiller func(*browser.Session) Filler

	// backoff is the base delay between navigation retries.
	backoff time.Duration

	session  *browser.Session
	analysis *detect.FormAnalysis
	company  string
}

// NewController wires a controller from its collaborators.
func NewController(cfg config.Config, manager *browser.Manager, bank *answerbank.Bank,
	resolver *resolve.Resolver, detector Detector, prompter Prompter, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		cfg:      cfg,
		manager:  manager,
		bank:     bank,
		resolver: resolver,
		detector: detector,
		prompter: prompter,
		log:      log,
		backoff:  2 * time.Second,
	}
	c.newFiller = func(s *browser.Session) Filler {
		return fill.New(s, cfg.FillTimeoutMs, log)
	}
	return c
}

// Start opens a session for the job URL, reaches the application form, and
// runs one detect+resolve+fill pass. It returns the analysis even on
// partial failure; the session stays open and closeable so the operator can
// inspect the page, answer escalations, or rescan.
func (c *Controller) Start(ctx context.Context, url, company string) (*detect.FormAnalysis, error) {
	// One session at a time: release any prior lease before acquiring.
	c.Close()

	session, err := c.manager.Lease(browser.SessionOptions{
		Headless:  c.cfg.Headless,
		TimeoutMs: c.cfg.NavigationTimeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("session: lease failed: %w", err)
	}
	c.session = session
	c.company = company

	analysis := detect.NewAnalysis(url)
	c.analysis = analysis

	plat := platform.Detect(url)
	c.log.Info("starting application session", "url", url, "platform", string(plat))

	navTimeout := plat.NavigationTimeoutMs(c.cfg.NavigationTimeoutMs)
	err = c.withRetries(ctx, c.cfg.NavigationRetries, func() error {
		return session.Navigate(url, browser.NavigateOptions{
			WaitUntil: "domcontentloaded",
			TimeoutMs: navTimeout,
		})
	})
	if err != nil {
		analysis.Error = fmt.Sprintf("navigation failed: %v", err)
		return analysis, fmt.Errorf("session: %s", analysis.Error)
	}

	session.WaitSettle(plat.SettleDelayMs())

	if session.CountVisible(platform.LoginIndicators()) > 0 {
		// Login flows are never automated; surface to the operator.
		analysis.Error = "login required: complete sign-in manually, then rescan"
		c.log.Warn("login wall detected", "url", session.URL())
		return analysis, nil
	}

	c.reachForm(plat)
	analysis.URL = session.URL()

	fields, err := c.detector.Detect(session)
	if err != nil {
		analysis.Error = fmt.Sprintf("detection failed: %v", err)
		return analysis, fmt.Errorf("session: %s", analysis.Error)
	}
	analysis.Fields = fields

	c.fillPass(ctx, c.newFiller(session), fields)
	analysis.Finalize()
	c.screenshot(analysis)

	c.log.Info("paused before submit",
		"filled", analysis.FieldsFilled,
		"failed", analysis.FieldsFailed,
		"total", len(analysis.Fields))
	return analysis, nil
}

// reachForm clicks through to the application form when the session landed
// on a job-description page. When enough form indicators are already
// visible the page is the form and the Apply hunt is skipped.
func (c *Controller) reachForm(plat platform.Platform) {
	if c.session.CountVisible(platform.FormIndicators()) >= c.cfg.FormIndicatorMin {
		c.log.Debug("form indicators present, skipping apply-button search")
		return
	}

	for _, sel := range plat.ApplySelectors() {
		if !c.session.Visible(sel) {
			continue
		}
		c.log.Info("clicking apply button", "selector", sel)
		// The click may navigate or open the form in a new tab; the session
		// follows it.
		if err := c.session.ClickExpectingPage(sel, c.applyClickTimeoutMs(plat)); err != nil {
			c.log.Warn("apply click failed", "selector", sel, "error", err)
			continue
		}
		c.session.WaitSettle(plat.SettleDelayMs())
		return
	}
}

// applyClickTimeoutMs returns the wait budget for an Apply click. The click
// usually triggers navigation or a new tab, so it gets the platform's
// navigation timeout rather than the short field-interaction one.
func (c *Controller) applyClickTimeoutMs(plat platform.Platform) float64 {
	return plat.NavigationTimeoutMs(c.cfg.NavigationTimeoutMs)
}

// fillPass resolves and fills each field in detection order. Per-field
// failures are recorded on the field and never abort the rest; unresolved
// fields escalate to the prompter when one is attached, and any operator
// answer is stored in the bank before it is used.
func (c *Controller) fillPass(ctx context.Context, filler Filler, fields []*detect.FormField) {
	for _, field := range fields {
		var options []string
		if field.Type == detect.FieldSelect {
			options = filler.OptionTexts(field)
		}

		value := ""
		res, ok := c.resolver.Resolve(ctx, resolve.Request{
			Field:   field,
			Company: c.company,
			Options: options,
		})
		if ok {
			value = res.Value
		} else if c.prompter != nil && field.HasReadableLabel() {
			value = c.escalate(field, options)
		}

		if value == "" {
			c.log.Debug("field left unfilled", "label", field.Label)
			continue
		}

		if err := filler.Fill(field, value); err != nil {
			c.log.Warn("fill failed", "label", field.Label, "error", err)
			continue
		}
		c.log.Debug("field filled", "label", field.Label)
	}
}

// escalate asks the operator for an answer and persists it before use, so
// the same semantic question is never asked twice.
func (c *Controller) escalate(field *detect.FormField, options []string) string {
	var answer string
	var ok bool
	if field.Type == detect.FieldSelect && len(options) > 0 {
		answer, ok = c.prompter.AskChoice(field, options)
	} else {
		answer, ok = c.prompter.AskText(field)
	}
	if !ok || answer == "" {
		return ""
	}
	if err := c.storeLearned(field.Label, answer); err != nil {
		c.log.Error("failed to store escalated answer", "label", field.Label, "error", err)
	}
	return answer
}

// storeLearned persists an operator-supplied answer into the shared layers
// of the bank. Questions that classify to a pattern key are stored under
// the key so every wording of the same question reuses the answer; the
// rest go to the exact layer. Either way the answer crosses company
// boundaries on the next run.
func (c *Controller) storeLearned(question, answer string) error {
	if answerbank.PatternKey(question) != "" {
		return c.bank.StorePattern(question, answer)
	}
	return c.bank.Store(question, answer, "")
}

// SubmitAnswer fills one field of the current analysis with an
// operator-supplied answer. The answer is written to the bank first, then
// page liveness is re-validated before touching the DOM.
func (c *Controller) SubmitAnswer(ctx context.Context, label, answer string) error {
	if c.session == nil || c.analysis == nil {
		return fmt.Errorf("session: no active session")
	}

	field := c.findField(label)
	if field == nil {
		return fmt.Errorf("session: no detected field labeled %q", label)
	}

	if err := c.storeLearned(field.Label, answer); err != nil {
		return fmt.Errorf("session: failed to store answer: %w", err)
	}

	if err := c.session.EnsureLive(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if err := c.newFiller(c.session).Fill(field, answer); err != nil {
		return err
	}
	c.analysis.Finalize()
	return nil
}

// Rescan re-detects the current page from scratch and runs a fresh fill
// pass. Field descriptors from the previous pass are discarded; there is no
// identity continuity across scans.
func (c *Controller) Rescan(ctx context.Context) (*detect.FormAnalysis, error) {
	if c.session == nil {
		return nil, fmt.Errorf("session: no active session")
	}
	if err := c.session.EnsureLive(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	analysis := detect.NewAnalysis(c.session.URL())
	fields, err := c.detector.Detect(c.session)
	if err != nil {
		analysis.Error = fmt.Sprintf("detection failed: %v", err)
		c.analysis = analysis
		return analysis, fmt.Errorf("session: %s", analysis.Error)
	}
	analysis.Fields = fields

	c.fillPass(ctx, c.newFiller(c.session), fields)
	analysis.Finalize()
	c.analysis = analysis
	return analysis, nil
}

// Analysis returns the most recent analysis, or nil.
func (c *Controller) Analysis() *detect.FormAnalysis {
	return c.analysis
}

// Close releases the browser session. Safe to call on every exit path,
// including after errors and repeatedly.
func (c *Controller) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

// withRetries runs fn up to retries+1 times with linear backoff. Transient
// navigation blips are worth a bounded number of attempts; anything still
// failing is reported.
func (c *Controller) withRetries(ctx context.Context, retries int, fn func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
			c.log.Debug("retrying navigation", "attempt", attempt)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

func (c *Controller) findField(label string) *detect.FormField {
	for _, f := range c.analysis.Fields {
		if strings.EqualFold(f.Label, label) {
			return f
		}
	}
	return nil
}

// screenshot saves a post-fill capture for operator review. Failure is
// logged, never fatal.
func (c *Controller) screenshot(analysis *detect.FormAnalysis) {
	dir := filepath.Join(c.cfg.StorageDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.log.Warn("screenshot dir unavailable", "error", err)
		return
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("form_filled_%s.png", stamp))
	if err := c.session.Screenshot(path); err != nil {
		c.log.Warn("screenshot failed", "error", err)
		return
	}
	analysis.ScreenshotPath = path

	// A cleaned HTML capture sits next to the screenshot so failed fills
	// can be diagnosed against the exact markup seen.
	capture, err := c.session.Capture(browser.DefaultCaptureLength)
	if err != nil {
		c.log.Warn("page capture failed", "error", err)
		return
	}
	capturePath := filepath.Join(dir, fmt.Sprintf("form_filled_%s.html", stamp))
	if err := os.WriteFile(capturePath, []byte(capture.HTML), 0o644); err != nil {
		c.log.Warn("page capture write failed", "error", err)
		return
	}
	analysis.CapturePath = capturePath
}
