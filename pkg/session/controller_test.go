package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/applyforge/pkg/answerbank"
	"github.com/entrhq/applyforge/pkg/config"
	"github.com/entrhq/applyforge/pkg/detect"
	"github.com/entrhq/applyforge/pkg/platform"
	"github.com/entrhq/applyforge/pkg/profile"
	"github.com/entrhq/applyforge/pkg/resolve"
)

type stubFiller struct {
	options map[string][]string // selector -> option texts
	failOn  map[string]string   // selector -> error message
	filled  []string            // "selector=value" in call order
}

func (s *stubFiller) Fill(field *detect.FormField, value string) error {
	if msg, ok := s.failOn[field.Selector]; ok {
		field.Error = msg
		return errors.New(msg)
	}
	s.filled = append(s.filled, field.Selector+"="+value)
	field.Filled = true
	field.Value = value
	return nil
}

func (s *stubFiller) OptionTexts(field *detect.FormField) []string {
	return s.options[field.Selector]
}

type stubPrompter struct {
	textAnswer   string
	choiceAnswer string
	textCalls    int
	choiceCalls  int
}

func (s *stubPrompter) AskText(_ *detect.FormField) (string, bool) {
	s.textCalls++
	return s.textAnswer, s.textAnswer != ""
}

func (s *stubPrompter) AskChoice(_ *detect.FormField, _ []string) (string, bool) {
	s.choiceCalls++
	return s.choiceAnswer, s.choiceAnswer != ""
}

func newTestController(t *testing.T, prompter Prompter) (*Controller, *answerbank.Bank) {
	t.Helper()
	bank, err := answerbank.Open(filepath.Join(t.TempDir(), "answers.json"), 0.7)
	require.NoError(t, err)

	p := &profile.Profile{
		FirstName:         "Ada",
		LastName:          "Lovelace",
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		WorkAuthorization: "yes",
	}
	resolver := resolve.New(p, bank, nil, nil)

	c := NewController(config.Default(), nil, bank, resolver, nil, prompter, nil)
	c.backoff = time.Millisecond
	return c, bank
}

func mockFormFields() []*detect.FormField {
	return []*detect.FormField{
		{Type: detect.FieldText, Label: "First Name", Selector: "#first_name"},
		{Type: detect.FieldEmail, Label: "Email", Selector: `[name="email"]`, Name: "email"},
		{Type: detect.FieldSelect, Label: "Are you authorized to work in the U.S.?", Selector: "#work_auth"},
	}
}

func TestFillPassMockForm(t *testing.T) {
	c, _ := newTestController(t, nil)
	filler := &stubFiller{options: map[string][]string{
		"#work_auth": {"Yes", "No"},
	}}

	analysis := detect.NewAnalysis("https://example.com/apply")
	analysis.Fields = mockFormFields()

	c.fillPass(context.Background(), filler, analysis.Fields)
	analysis.Finalize()

	assert.Equal(t, 3, analysis.FieldsFilled)
	assert.Zero(t, analysis.FieldsFailed)
	assert.InDelta(t, 1.0, analysis.SuccessRate, 1e-9)
	assert.Equal(t, []string{
		"#first_name=Ada",
		`[name="email"]=ada@example.com`,
		"#work_auth=Yes",
	}, filler.filled)
}

func TestUnresolvedFieldReportedNotSilentlyFilled(t *testing.T) {
	// Unknown question, no profile mapping, no LLM, no prompter: the field
	// must end the pass unfilled, never defaulted to an empty string.
	c, _ := newTestController(t, nil)
	filler := &stubFiller{}

	analysis := detect.NewAnalysis("https://example.com/apply")
	analysis.Fields = []*detect.FormField{
		{Type: detect.FieldText, Label: "What is your security clearance?", Selector: "#clearance"},
	}

	c.fillPass(context.Background(), filler, analysis.Fields)
	analysis.Finalize()

	assert.Empty(t, filler.filled)
	assert.Zero(t, analysis.FieldsFilled)
	assert.Zero(t, analysis.FieldsFailed)
	require.Len(t, analysis.Unfilled(), 1)
	assert.False(t, analysis.Fields[0].Filled)
}

func TestEscalatedAnswerStoredThenReusedAcrossCompanies(t *testing.T) {
	prompter := &stubPrompter{choiceAnswer: "Yes"}
	c, bank := newTestController(t, prompter)
	c.company = "acme"

	fields := []*detect.FormField{
		{Type: detect.FieldSelect, Label: "Have you previously worked for a defense contractor?", Selector: "#q1"},
	}
	filler := &stubFiller{options: map[string][]string{"#q1": {"Yes", "No"}}}

	c.fillPass(context.Background(), filler, fields)
	assert.Equal(t, 1, prompter.choiceCalls)
	assert.Equal(t, []string{"#q1=Yes"}, filler.filled)

	// The answer was persisted before use.
	stored, ok := bank.Answer("Have you previously worked for a defense contractor?", "acme")
	require.True(t, ok)
	assert.Equal(t, "Yes", stored)

	// A structurally identical form at a different company resolves from
	// the bank without re-asking.
	c.company = "globex"
	fields2 := []*detect.FormField{
		{Type: detect.FieldSelect, Label: "Have you previously worked for a defense contractor?", Selector: "#q1"},
	}
	filler2 := &stubFiller{options: map[string][]string{"#q1": {"Yes", "No"}}}
	c.fillPass(context.Background(), filler2, fields2)

	assert.Equal(t, 1, prompter.choiceCalls, "prompter must not be asked again")
	assert.Equal(t, []string{"#q1=Yes"}, filler2.filled)
}

func TestEscalationSkippedForUnreadableLabels(t *testing.T) {
	prompter := &stubPrompter{textAnswer: "anything"}
	c, _ := newTestController(t, prompter)

	fields := []*detect.FormField{
		{Type: detect.FieldText, Label: detect.UnknownLabel, Selector: "#mystery"},
	}
	c.fillPass(context.Background(), &stubFiller{}, fields)

	assert.Zero(t, prompter.textCalls)
	assert.Zero(t, prompter.choiceCalls)
}

func TestFillFailureDoesNotAbortRemainingFields(t *testing.T) {
	c, _ := newTestController(t, nil)
	filler := &stubFiller{failOn: map[string]string{"#first_name": "element vanished"}}

	analysis := detect.NewAnalysis("https://example.com/apply")
	analysis.Fields = []*detect.FormField{
		{Type: detect.FieldText, Label: "First Name", Selector: "#first_name"},
		{Type: detect.FieldText, Label: "Last Name", Selector: "#last_name"},
	}

	c.fillPass(context.Background(), filler, analysis.Fields)
	analysis.Finalize()

	assert.Equal(t, 1, analysis.FieldsFilled)
	assert.Equal(t, 1, analysis.FieldsFailed)
	assert.Equal(t, []string{"#last_name=Lovelace"}, filler.filled)
}

func TestApplyClickUsesNavigationTimeout(t *testing.T) {
	c, _ := newTestController(t, nil)

	// An Apply click can trigger navigation, so its budget must be the
	// platform navigation timeout, never the short fill timeout.
	got := c.applyClickTimeoutMs(platform.Greenhouse)
	assert.Equal(t, c.cfg.NavigationTimeoutMs, got)
	assert.Greater(t, got, c.cfg.FillTimeoutMs)

	// Workday's doubled navigation timeout carries through.
	assert.Equal(t, c.cfg.NavigationTimeoutMs*2, c.applyClickTimeoutMs(platform.Workday))
}

func TestWithRetriesEventualSuccess(t *testing.T) {
	c, _ := newTestController(t, nil)

	calls := 0
	err := c.withRetries(context.Background(), 2, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetriesExhausted(t *testing.T) {
	c, _ := newTestController(t, nil)

	calls := 0
	err := c.withRetries(context.Background(), 1, func() error {
		calls++
		return errors.New("unreachable")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetriesHonorsCancellation(t *testing.T) {
	c, _ := newTestController(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := c.withRetries(ctx, 3, func() error {
		calls++
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSubmitAnswerRequiresActiveSession(t *testing.T) {
	c, _ := newTestController(t, nil)
	err := c.SubmitAnswer(context.Background(), "First Name", "Ada")
	assert.Error(t, err)
}
