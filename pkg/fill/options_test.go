package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseOptionExactBeforeSubstring(t *testing.T) {
	options := []Option{
		{Value: "", Text: "--"},
		{Value: "Yes", Text: "Yes"},
		{Value: "No", Text: "No"},
		{Value: "yes_conditional", Text: "Yes, with conditions"},
	}

	// Exact value wins even though a substring match exists earlier.
	opt, ok := ChooseOption("Yes", options)
	assert.True(t, ok)
	assert.Equal(t, "Yes", opt.Value)

	// Exact text match.
	opt, ok = ChooseOption("Yes, with conditions", options)
	assert.True(t, ok)
	assert.Equal(t, "yes_conditional", opt.Value)
}

func TestChooseOptionSubstringFallback(t *testing.T) {
	options := []Option{
		{Value: "opt_1", Text: "Bachelor's Degree"},
		{Value: "opt_2", Text: "Master's Degree"},
	}

	opt, ok := ChooseOption("master", options)
	assert.True(t, ok)
	assert.Equal(t, "opt_2", opt.Value)

	// Substring also matches against the value attribute.
	opt, ok = ChooseOption("OPT_1", options)
	assert.True(t, ok)
	assert.Equal(t, "opt_1", opt.Value)
}

func TestChooseOptionNeverGuesses(t *testing.T) {
	options := []Option{
		{Value: "Yes", Text: "Yes"},
		{Value: "No", Text: "No"},
	}

	_, ok := ChooseOption("Maybe", options)
	assert.False(t, ok)

	// Empty values must not substring-match everything.
	_, ok = ChooseOption("", options)
	assert.False(t, ok)

	_, ok = ChooseOption("anything", nil)
	assert.False(t, ok)
}

func TestDropdownSignals(t *testing.T) {
	tests := []struct {
		name        string
		placeholder string
		role        string
		class       string
		want        bool
	}{
		{"select placeholder", "Select an option", "", "", true},
		{"choose placeholder", "Choose your country...", "", "", true},
		{"combobox role", "", "combobox", "", true},
		{"combobox role case-insensitive", "", "Combobox", "", true},
		{"select class", "", "", "css-select__input", true},
		{"dropdown class", "", "", "lever-dropdown-field", true},
		{"plain text input", "Your first name", "", "input-text", false},
		{"no attributes", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropdownSignals(tt.placeholder, tt.role, tt.class))
		})
	}
}
