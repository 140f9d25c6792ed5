package detect

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/applyforge/pkg/browser"
)

// Detector scans live pages for form controls.
type Detector struct {
	log *slog.Logger
}

// New creates a detector.
func New(log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{log: log}
}

// Detect enumerates form fields on the session's page: main document first,
// then every reachable frame in discovery order. Ordering is significant
// downstream ("field N of M" progress), so it follows DOM encounter order.
// A frame that fails to evaluate is logged and skipped; only a main-frame
// failure aborts the pass.
func (d *Detector) Detect(session *browser.Session) ([]*FormField, error) {
	main := session.MainFrame()

	raws, err := harvestFrame(main, mainFrameQuery)
	if err != nil {
		return nil, fmt.Errorf("detect: main frame harvest failed: %w", err)
	}

	fields := BuildFields(raws, "")
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.FrameURL+"\x00"+f.Selector] = true
	}

	for _, frame := range session.Frames() {
		if frame == main {
			continue
		}
		frameURL := frame.URL()
		frameRaws, err := harvestFrame(frame, childFrameQuery)
		if err != nil {
			d.log.Warn("frame harvest failed", "frame", frameURL, "error", err)
			continue
		}
		for _, f := range BuildFields(frameRaws, frameURL) {
			key := f.FrameURL + "\x00" + f.Selector
			if seen[key] {
				continue
			}
			seen[key] = true
			fields = append(fields, f)
		}
	}

	d.log.Info("field detection complete",
		"fields", len(fields),
		"frames", len(session.Frames()))
	return fields, nil
}

// harvestFrame runs the harvest script in one frame and decodes the result.
func harvestFrame(frame playwright.Frame, query string) ([]RawElement, error) {
	result, err := frame.Evaluate(harvestScript, query)
	if err != nil {
		return nil, err
	}

	// Evaluate returns generic maps; round-trip through JSON to decode.
	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode harvest result: %w", err)
	}
	var raws []RawElement
	if err := json.Unmarshal(encoded, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode harvest result: %w", err)
	}
	return raws, nil
}
