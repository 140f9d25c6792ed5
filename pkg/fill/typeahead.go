package fill

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// The pseudo-dropdown protocol is a small state machine layered over a
// plain text input: the widget must be opened by a click, filtered by
// typing, given time for its option list to settle, then committed with an
// affirmative key press. Committing by blur does not work; the page script
// only registers a selection on the key press.
type typeAheadState int

const (
	taClosed typeAheadState = iota
	taOpened
	taFiltering
	taCommitted
)

const (
	openSettleMs   = 500
	filterSettleMs = 1000
)

func (e *Executor) runTypeAhead(frame playwright.Frame, selector, value string) error {
	state := taClosed

	for state != taCommitted {
		switch state {
		case taClosed:
			if err := frame.Click(selector, playwright.FrameClickOptions{Timeout: &e.timeoutMs}); err != nil {
				return fmt.Errorf("fill: dropdown open failed: %w", err)
			}
			e.session.WaitSettle(openSettleMs)
			state = taOpened

		case taOpened:
			if err := frame.Fill(selector, value, playwright.FrameFillOptions{Timeout: &e.timeoutMs}); err != nil {
				return fmt.Errorf("fill: dropdown filter failed: %w", err)
			}
			state = taFiltering

		case taFiltering:
			// Let the widget's filtered list settle before committing.
			e.session.WaitSettle(filterSettleMs)
			if err := frame.Press(selector, "Enter", playwright.FramePressOptions{Timeout: &e.timeoutMs}); err != nil {
				return fmt.Errorf("fill: dropdown commit failed: %w", err)
			}
			state = taCommitted
		}
	}
	return nil
}
