// Package fill commits resolved values into live form controls. Each field
// type has its own interaction pattern; the riskiest is the pseudo-dropdown
// protocol for text inputs that are scripted widgets in disguise.
package fill

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/applyforge/pkg/browser"
	"github.com/entrhq/applyforge/pkg/detect"
)

// Executor fills detected fields on a live session. Fills are idempotent on
// retry: a checkbox already in the target state is left alone, and a select
// with no matching option keeps its original selection.
type Executor struct {
	session   *browser.Session
	timeoutMs float64
	log       *slog.Logger
}

// New creates an executor. timeoutMs bounds each individual field
// interaction; it is deliberately much shorter than navigation timeouts.
func New(session *browser.Session, timeoutMs float64, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &Executor{session: session, timeoutMs: timeoutMs, log: log}
}

// Fill writes value into the field and records the outcome on the field
// itself. A failure on one field never aborts the rest of the pass.
func (e *Executor) Fill(field *detect.FormField, value string) error {
	err := e.fill(field, value)
	if err != nil {
		field.Error = err.Error()
		return err
	}
	field.Filled = true
	field.Value = value
	field.Error = ""
	return nil
}

func (e *Executor) fill(field *detect.FormField, value string) error {
	frame, err := e.frameFor(field)
	if err != nil {
		return err
	}

	switch field.Type {
	case detect.FieldFile:
		return e.fillFile(frame, field, value)
	case detect.FieldSelect:
		return e.fillSelect(frame, field, value)
	case detect.FieldCheckbox, detect.FieldRadio:
		return e.fillCheck(frame, field)
	default:
		return e.fillText(frame, field, value)
	}
}

// checkControl is the slice of frame behavior fillCheck needs. Satisfied by
// playwright.Frame; tests substitute a stub.
type checkControl interface {
	IsChecked(selector string, options ...playwright.FrameIsCheckedOptions) (bool, error)
	Check(selector string, options ...playwright.FrameCheckOptions) error
}

// fileControl is the slice of frame behavior fillFile needs.
type fileControl interface {
	SetInputFiles(selector string, files interface{}, options ...playwright.FrameSetInputFilesOptions) error
}

// frameFor routes the lookup to the field's owning document. A selector is
// only unique within its frame, so cross-frame fields must never be
// resolved against the main document.
func (e *Executor) frameFor(field *detect.FormField) (playwright.Frame, error) {
	if field.FrameURL == "" {
		return e.session.MainFrame(), nil
	}
	for _, frame := range e.session.Frames() {
		if frame.URL() == field.FrameURL {
			return frame, nil
		}
	}
	return nil, fmt.Errorf("fill: frame no longer present: %s", field.FrameURL)
}

// fillFile uploads the artifact at value. It refuses to touch the control
// when the file does not exist, so a bad resume path fails without side
// effects.
func (e *Executor) fillFile(frame fileControl, field *detect.FormField, value string) error {
	if _, err := os.Stat(value); err != nil {
		return fmt.Errorf("fill: file artifact missing: %s", value)
	}
	if err := frame.SetInputFiles(field.Selector, value, playwright.FrameSetInputFilesOptions{
		Timeout: &e.timeoutMs,
	}); err != nil {
		return fmt.Errorf("fill: file upload failed: %w", err)
	}
	return nil
}

// fillSelect picks an option by exact then substring match. When nothing
// matches it fails and leaves the original selection untouched.
func (e *Executor) fillSelect(frame playwright.Frame, field *detect.FormField, value string) error {
	options, err := e.Options(field)
	if err != nil {
		return err
	}

	chosen, ok := ChooseOption(value, options)
	if !ok {
		return fmt.Errorf("fill: no option matches %q", value)
	}

	if _, err := frame.SelectOption(field.Selector, playwright.SelectOptionValues{
		Values: &[]string{chosen.Value},
	}, playwright.FrameSelectOptionOptions{Timeout: &e.timeoutMs}); err != nil {
		return fmt.Errorf("fill: select failed: %w", err)
	}
	return nil
}

// fillCheck checks the box only when it is not already checked.
func (e *Executor) fillCheck(frame checkControl, field *detect.FormField) error {
	checked, err := frame.IsChecked(field.Selector, playwright.FrameIsCheckedOptions{
		Timeout: &e.timeoutMs,
	})
	if err != nil {
		return fmt.Errorf("fill: checkbox state read failed: %w", err)
	}
	if checked {
		return nil
	}
	if err := frame.Check(field.Selector, playwright.FrameCheckOptions{Timeout: &e.timeoutMs}); err != nil {
		return fmt.Errorf("fill: check failed: %w", err)
	}
	return nil
}

// fillText assigns the value directly, unless the control shows dropdown
// signals, in which case the type-ahead protocol takes over.
func (e *Executor) fillText(frame playwright.Frame, field *detect.FormField, value string) error {
	if e.isPseudoDropdown(frame, field) {
		e.log.Debug("pseudo-dropdown detected", "label", field.Label)
		return e.runTypeAhead(frame, field.Selector, value)
	}
	if err := frame.Fill(field.Selector, value, playwright.FrameFillOptions{Timeout: &e.timeoutMs}); err != nil {
		return fmt.Errorf("fill: text fill failed: %w", err)
	}
	return nil
}

func (e *Executor) isPseudoDropdown(frame playwright.Frame, field *detect.FormField) bool {
	attr := func(name string) string {
		v, err := frame.GetAttribute(field.Selector, name, playwright.FrameGetAttributeOptions{
			Timeout: &e.timeoutMs,
		})
		if err != nil {
			return ""
		}
		return v
	}
	return DropdownSignals(attr("placeholder"), attr("role"), attr("class"))
}

// Options reads a select field's live option list as (value, text) pairs.
// Empty entries are skipped.
func (e *Executor) Options(field *detect.FormField) ([]Option, error) {
	frame, err := e.frameFor(field)
	if err != nil {
		return nil, err
	}

	handles, err := frame.QuerySelectorAll(field.Selector + " option")
	if err != nil {
		return nil, fmt.Errorf("fill: option scan failed: %w", err)
	}

	var options []Option
	for _, h := range handles {
		value, _ := h.GetAttribute("value")
		text, _ := h.TextContent()
		text = strings.TrimSpace(text)
		if value == "" && text == "" {
			continue
		}
		options = append(options, Option{Value: value, Text: text})
	}
	return options, nil
}

// OptionTexts returns just the visible texts, the shape the resolver and
// operator escalation want.
func (e *Executor) OptionTexts(field *detect.FormField) []string {
	options, err := e.Options(field)
	if err != nil {
		return nil
	}
	texts := make([]string, 0, len(options))
	for _, opt := range options {
		texts = append(texts, opt.Text)
	}
	return texts
}
