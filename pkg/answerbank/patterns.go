package answerbank

import (
	"regexp"
	"strings"
)

// patternRule classifies a question into a canonical pattern key. Many
// differently worded questions share one key, and therefore one stored answer.
type patternRule struct {
	re  *regexp.Regexp
	key string
}

// Rules are checked in order; the first match wins.
var patternRules = []patternRule{
	// Work authorization
	{regexp.MustCompile(`(authorized|authorization|legally|permit).*(work|employment).*(us|u\.s\.|united states)`), "work_auth_us"},
	{regexp.MustCompile(`(require|need).*(sponsor|visa)`), "requires_sponsorship"},
	{regexp.MustCompile(`(citizen|citizenship)`), "citizenship"},

	// Education
	{regexp.MustCompile(`(graduation|graduate|grad).*(date|year|when)`), "graduation_date"},
	{regexp.MustCompile(`(degree|education level)`), "degree_type"},
	{regexp.MustCompile(`(major|field of study|concentration)`), "major"},
	{regexp.MustCompile(`(school|university|college|institution)`), "school"},
	{regexp.MustCompile(`(gpa|grade point)`), "gpa"},

	// Personal
	{regexp.MustCompile(`(gender|sex)`), "gender"},
	{regexp.MustCompile(`(race|ethnic|ethnicity)`), "ethnicity"},
	{regexp.MustCompile(`(veteran|military)`), "veteran_status"},
	{regexp.MustCompile(`(disability|disabled)`), "disability_status"},
	{regexp.MustCompile(`(pronouns?)`), "pronouns"},

	// Job related
	{regexp.MustCompile(`(hear|heard|find|found).*(about|us|position|job|role)`), "referral_source"},
	{regexp.MustCompile(`(start|available|availability).*(date|when)`), "start_date"},
	{regexp.MustCompile(`(salary|compensation|pay).*(expectation|requirement|desired)`), "salary_expectation"},
	{regexp.MustCompile(`(relocat|willing to move)`), "willing_to_relocate"},
	{regexp.MustCompile(`(remote|hybrid|on-?site|in-?person)`), "work_location_preference"},

	// Experience
	{regexp.MustCompile(`(years?).*(experience)`), "years_experience"},
	{regexp.MustCompile(`(proficien|skill level|expertise).*(programming|coding|language)`), "programming_proficiency"},
}

// PatternKey returns the canonical pattern key for a question, or "" if the
// question matches no known category. Matching is case-insensitive against
// the raw (un-normalized) question text.
func PatternKey(question string) string {
	q := strings.ToLower(question)
	for _, rule := range patternRules {
		if rule.re.MatchString(q) {
			return rule.key
		}
	}
	return ""
}
