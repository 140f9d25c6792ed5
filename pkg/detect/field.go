// Package detect discovers interactive form controls on a rendered page,
// including controls inside embedded frames, and produces normalized field
// descriptors the resolver and fill executor consume.
//
// Descriptors are disposable: every detection pass produces a fresh set and
// nothing carries element identity across passes. A later pass re-detects
// and re-resolves from scratch.
package detect

import (
	"time"

	"github.com/google/uuid"
)

// FieldType classifies a detected control.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldURL      FieldType = "url"
	FieldFile     FieldType = "file"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldUnknown  FieldType = "unknown"
)

// FormField is one detected control. Selector is only unique within the
// owning document, so FrameURL must route lookups when non-empty.
type FormField struct {
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Selector string    `json:"selector"`
	Name     string    `json:"name"`
	Required bool      `json:"required"`
	FrameURL string    `json:"frame_url,omitempty"`

	// Outcome of the fill pass, mutated by the executor.
	Filled bool   `json:"filled"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HasReadableLabel reports whether the field can be shown to a human as a
// question. Fields labeled Unknown stay in the analysis for accurate counts
// but are never escalated.
func (f *FormField) HasReadableLabel() bool {
	return f.Label != "" && f.Label != UnknownLabel
}

// FormAnalysis aggregates one detect+fill pass over a page.
type FormAnalysis struct {
	ID             string       `json:"id"`
	URL            string       `json:"url"`
	Fields         []*FormField `json:"fields"`
	FieldsFilled   int          `json:"fields_filled"`
	FieldsFailed   int          `json:"fields_failed"`
	SuccessRate    float64      `json:"success_rate"`
	ScreenshotPath string       `json:"screenshot_path,omitempty"`
	CapturePath    string       `json:"capture_path,omitempty"`
	Error          string       `json:"error,omitempty"`
	AnalyzedAt     time.Time    `json:"analyzed_at"`
}

// NewAnalysis creates an empty analysis for a page visit.
func NewAnalysis(url string) *FormAnalysis {
	return &FormAnalysis{
		ID:         uuid.NewString(),
		URL:        url,
		AnalyzedAt: time.Now(),
	}
}

// Finalize computes the filled/failed counts and success rate from the
// fields' outcome state.
func (a *FormAnalysis) Finalize() {
	a.FieldsFilled = 0
	a.FieldsFailed = 0
	for _, f := range a.Fields {
		switch {
		case f.Filled:
			a.FieldsFilled++
		case f.Error != "":
			a.FieldsFailed++
		}
	}
	if len(a.Fields) > 0 {
		a.SuccessRate = float64(a.FieldsFilled) / float64(len(a.Fields))
	} else {
		a.SuccessRate = 0
	}
}

// Unfilled returns the fields that ended the pass without a value and
// without a fill error, in detection order.
func (a *FormAnalysis) Unfilled() []*FormField {
	var out []*FormField
	for _, f := range a.Fields {
		if !f.Filled && f.Error == "" {
			out = append(out, f)
		}
	}
	return out
}
