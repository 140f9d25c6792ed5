package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockGreenhouseForm = `
<html><body>
<main>
<form id="application_form">
	<label for="first_name">First Name</label>
	<input id="first_name" type="text" required>

	<input name="email" type="email">

	<label for="work_auth">Are you authorized to work in the U.S.?</label>
	<select id="work_auth">
		<option value="">--</option>
		<option value="Yes">Yes</option>
		<option value="No">No</option>
	</select>

	<input type="file" name="resume">
	<textarea name="cover_letter" placeholder="Why do you want to join?"></textarea>

	<input type="hidden" name="csrf">
	<div style="display:none"><input type="text" name="honeypot"></div>
</form>
<div id="onetrust-banner">
	<input type="checkbox" id="functional-cookies">
</div>
</main>
</body></html>`

func TestDetectFromHTMLMockForm(t *testing.T) {
	fields, err := DetectFromHTML(mockGreenhouseForm, "")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	bySelector := map[string]*FormField{}
	for _, f := range fields {
		bySelector[f.Selector] = f
	}

	first := bySelector["#first_name"]
	require.NotNil(t, first)
	assert.Equal(t, FieldText, first.Type)
	assert.Equal(t, "First Name", first.Label)
	assert.True(t, first.Required)

	email := bySelector[`[name="email"]`]
	require.NotNil(t, email)
	assert.Equal(t, FieldEmail, email.Type)
	assert.Equal(t, "Email", email.Label)

	auth := bySelector["#work_auth"]
	require.NotNil(t, auth)
	assert.Equal(t, FieldSelect, auth.Type)
	assert.Equal(t, "Are you authorized to work in the U.S.?", auth.Label)

	resume := bySelector[`[name="resume"]`]
	require.NotNil(t, resume)
	assert.Equal(t, FieldFile, resume.Type)

	cover := bySelector[`[name="cover_letter"]`]
	require.NotNil(t, cover)
	assert.Equal(t, FieldTextarea, cover.Type)
}

func TestDetectFromHTMLExcludesHiddenAndCookieFields(t *testing.T) {
	fields, err := DetectFromHTML(mockGreenhouseForm, "")
	require.NoError(t, err)
	for _, f := range fields {
		assert.NotEqual(t, `[name="csrf"]`, f.Selector)
		assert.NotEqual(t, `[name="honeypot"]`, f.Selector)
		assert.NotEqual(t, "#functional-cookies", f.Selector)
	}
}

func TestDetectFromHTMLStructuralPath(t *testing.T) {
	raw := `<body><form id="apply">
		<div><input type="text"></div>
		<div><input type="text"></div>
	</form></body>`

	fields, err := DetectFromHTML(raw, "")
	require.NoError(t, err)
	require.Len(t, fields, 2)

	// No id/name/placeholder anywhere: both fall through to structural
	// paths, which must still differ.
	assert.NotEqual(t, fields[0].Selector, fields[1].Selector)
	assert.Contains(t, fields[0].Selector, "form#apply")
	assert.Contains(t, fields[0].Selector, "nth-of-type(1)")
	assert.Contains(t, fields[1].Selector, "nth-of-type(2)")
}

func TestDetectFromHTMLFrameURLPropagates(t *testing.T) {
	fields, err := DetectFromHTML(`<body><input id="q" name="question"></body>`, "https://jobs.lever.co/embed")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "https://jobs.lever.co/embed", fields[0].FrameURL)
}

func TestAnalysisFinalize(t *testing.T) {
	a := NewAnalysis("https://example.com/apply")
	require.NotEmpty(t, a.ID)

	a.Fields = []*FormField{
		{Label: "First Name", Filled: true},
		{Label: "Email", Filled: true},
		{Label: "Visa Class"},
		{Label: "Resume", Error: "file missing"},
	}
	a.Finalize()

	assert.Equal(t, 2, a.FieldsFilled)
	assert.Equal(t, 1, a.FieldsFailed)
	assert.InDelta(t, 0.5, a.SuccessRate, 1e-9)

	unfilled := a.Unfilled()
	require.Len(t, unfilled, 1)
	assert.Equal(t, "Visa Class", unfilled[0].Label)
}

func TestAnalysisFinalizeEmpty(t *testing.T) {
	a := NewAnalysis("https://example.com")
	a.Finalize()
	assert.Zero(t, a.SuccessRate)
}
