package answerbank

import "strings"

// categoryMapping pairs an answer category with the keywords that identify
// it, both in profile values and in form option text.
type categoryMapping struct {
	category string
	keywords []string
}

// valueMappings translates canonical profile values into the option
// vocabulary a given form actually offers. The profile stores the canonical
// value ("yes", "US Citizen", "Bachelor's"); each form's dropdown wording is
// the moving target, so mapping always runs profile -> form, never the other
// way around. Categories are ordered; the first match wins.
var valueMappings = map[string][]categoryMapping{
	"work_auth_us": {
		{"yes", []string{"yes", "authorized", "eligible", "legally authorized", "yes - us citizen", "yes - green card", "us citizen", "permanent resident"}},
		{"no", []string{"no", "not authorized", "require sponsorship", "will require"}},
	},
	"requires_sponsorship": {
		{"no", []string{"no", "not required", "do not require", "won't require", "will not require"}},
		{"yes", []string{"yes", "required", "will require", "need sponsorship"}},
	},
	"degree_type": {
		{"bachelors", []string{"bachelor", "bachelors", "bs", "ba", "b.s.", "b.a.", "undergraduate"}},
		{"masters", []string{"master", "masters", "ms", "ma", "m.s.", "m.a.", "graduate"}},
		{"phd", []string{"phd", "ph.d.", "doctorate", "doctoral"}},
	},
	"veteran_status": {
		{"no", []string{"no", "not a veteran", "i am not", "n/a", "prefer not"}},
		{"yes", []string{"yes", "veteran", "i am a veteran"}},
	},
	"disability_status": {
		{"no", []string{"no", "i don't have", "i do not have", "n/a", "prefer not", "decline"}},
		{"yes", []string{"yes", "i have a disability"}},
	},
	"gender": {
		{"male", []string{"male", "man", "m"}},
		{"female", []string{"female", "woman", "f", "w"}},
		{"other", []string{"non-binary", "other", "prefer not to say", "decline", "n/a"}},
	},
}

// HasValueMapping reports whether a pattern key has a categorical mapping.
func HasValueMapping(patternKey string) bool {
	_, ok := valueMappings[patternKey]
	return ok
}

// MapToOption translates a canonical profile value into one of the options
// offered by the form. It first resolves which category the profile value
// belongs to by keyword matching, then scans the live options for the first
// one carrying a keyword of that category. Returns false when the pattern key
// has no mapping, the profile value fits no category, or no option matches.
func MapToOption(patternKey string, options []string, profileValue string) (string, bool) {
	mappings, ok := valueMappings[patternKey]
	if !ok {
		return "", false
	}

	profileLower := strings.ToLower(profileValue)
	var keywords []string
	for _, m := range mappings {
		for _, kw := range m.keywords {
			if strings.Contains(profileLower, kw) || strings.Contains(kw, profileLower) {
				keywords = m.keywords
				break
			}
		}
		if keywords != nil {
			break
		}
	}
	if keywords == nil {
		return "", false
	}

	for _, option := range options {
		optionLower := strings.ToLower(option)
		for _, kw := range keywords {
			if strings.Contains(optionLower, kw) {
				return option, true
			}
		}
	}
	return "", false
}
