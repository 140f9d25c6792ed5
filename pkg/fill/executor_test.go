package fill

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/applyforge/pkg/detect"
)

type stubCheckControl struct {
	checked    bool
	readErr    error
	checkErr   error
	checkCalls int
}

func (s *stubCheckControl) IsChecked(selector string, options ...playwright.FrameIsCheckedOptions) (bool, error) {
	return s.checked, s.readErr
}

func (s *stubCheckControl) Check(selector string, options ...playwright.FrameCheckOptions) error {
	s.checkCalls++
	return s.checkErr
}

type stubFileControl struct {
	uploads []string
	err     error
}

func (s *stubFileControl) SetInputFiles(selector string, files interface{}, options ...playwright.FrameSetInputFilesOptions) error {
	if path, ok := files.(string); ok {
		s.uploads = append(s.uploads, path)
	}
	return s.err
}

func newTestExecutor() *Executor {
	return New(nil, 100, nil)
}

func TestFillCheckSkipsAlreadyChecked(t *testing.T) {
	e := newTestExecutor()
	frame := &stubCheckControl{checked: true}
	field := &detect.FormField{Type: detect.FieldCheckbox, Selector: "#terms"}

	require.NoError(t, e.fillCheck(frame, field))
	// An already-checked box must not be toggled.
	assert.Equal(t, 0, frame.checkCalls)
}

func TestFillCheckChecksWhenUnchecked(t *testing.T) {
	e := newTestExecutor()
	frame := &stubCheckControl{checked: false}
	field := &detect.FormField{Type: detect.FieldCheckbox, Selector: "#terms"}

	require.NoError(t, e.fillCheck(frame, field))
	assert.Equal(t, 1, frame.checkCalls)
}

func TestFillCheckStateReadFailure(t *testing.T) {
	e := newTestExecutor()
	frame := &stubCheckControl{readErr: errors.New("element detached")}
	field := &detect.FormField{Type: detect.FieldRadio, Selector: `input[name="work_auth"]`}

	err := e.fillCheck(frame, field)
	require.Error(t, err)
	// Without a readable state the box is left alone.
	assert.Equal(t, 0, frame.checkCalls)
}

func TestFillFileRefusesMissingArtifact(t *testing.T) {
	e := newTestExecutor()
	frame := &stubFileControl{}
	field := &detect.FormField{Type: detect.FieldFile, Selector: "#resume"}

	err := e.fillFile(frame, field, filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file artifact missing")
	// The control was never touched.
	assert.Empty(t, frame.uploads)
}

func TestFillFileUploadsExistingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	e := newTestExecutor()
	frame := &stubFileControl{}
	field := &detect.FormField{Type: detect.FieldFile, Selector: "#resume"}

	require.NoError(t, e.fillFile(frame, field, path))
	assert.Equal(t, []string{path}, frame.uploads)
}
