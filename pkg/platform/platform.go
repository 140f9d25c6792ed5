// Package platform classifies job-board URLs and carries the per-platform
// knowledge the engine needs: navigation timeouts, Apply-button selectors,
// and the indicators used to decide whether a page already is an application
// form.
package platform

import (
	"strings"

	"github.com/gobwas/glob"
)

// Platform identifies a known applicant-tracking system.
type Platform string

const (
	Greenhouse Platform = "greenhouse"
	Lever      Platform = "lever"
	Workday    Platform = "workday"
	// Mock identifies local test fixture pages that mimic a board's form.
	Mock    Platform = "mock"
	Unknown Platform = "unknown"
)

type urlRule struct {
	pattern  glob.Glob
	platform Platform
}

// Mock rules come first so fixture URLs like mock_greenhouse are not
// claimed by the broad platform substrings below.
var urlRules = []urlRule{
	{glob.MustCompile("*mock_greenhouse*"), Mock},
	{glob.MustCompile("*greenhouse_mock*"), Mock},
	{glob.MustCompile("*mock_lever*"), Mock},
	{glob.MustCompile("*lever_mock*"), Mock},
	{glob.MustCompile("*boards.greenhouse.io*"), Greenhouse},
	{glob.MustCompile("*greenhouse*"), Greenhouse},
	{glob.MustCompile("*jobs.lever.co*"), Lever},
	{glob.MustCompile("*lever*"), Lever},
	{glob.MustCompile("*myworkdayjobs*"), Workday},
	{glob.MustCompile("*wd5.myworkday*"), Workday},
	{glob.MustCompile("*workday*"), Workday},
}

// Detect classifies a job URL. Unknown platforms are still fully supported;
// they just get the generic selector sets.
func Detect(url string) Platform {
	lower := strings.ToLower(url)
	for _, rule := range urlRules {
		if rule.pattern.Match(lower) {
			return rule.platform
		}
	}
	return Unknown
}

// NavigationTimeoutMs returns the navigation timeout for the platform.
// Workday pages are heavily scripted and need materially longer to load.
func (p Platform) NavigationTimeoutMs(base float64) float64 {
	if p == Workday {
		return base * 2
	}
	return base
}

// SettleDelayMs is how long to wait after navigation for dynamic content
// before detection starts.
func (p Platform) SettleDelayMs() float64 {
	switch p {
	case Workday:
		return 5000
	case Mock:
		// Local fixtures render immediately.
		return 500
	default:
		return 2000
	}
}

// ApplySelectors returns the ordered selector list used to find the Apply
// button when the session lands on a job-description page instead of the
// form itself. Most specific first, generic text matches last.
func (p Platform) ApplySelectors() []string {
	switch p {
	case Greenhouse:
		return append([]string{
			`a[data-job-action="apply"]`,
			`#apply_button`,
			`a.job-board-apply-link`,
			`a.application-link`,
			`a[href*="#application"]`,
		}, genericApplySelectors...)
	case Lever:
		return append([]string{
			`a.postings-btn-wrapper`,
			`a[href*="/apply"]`,
			`a.posting-btn-submit`,
		}, genericApplySelectors...)
	case Workday:
		return append([]string{
			`a[data-automation-id="jobPostingApplyButton"]`,
			`button[data-automation-id="jobPostingApplyButton"]`,
			`[data-automation-id="applyButton"]`,
		}, genericApplySelectors...)
	default:
		return genericApplySelectors
	}
}

var genericApplySelectors = []string{
	`button[data-test*="apply"]`,
	`a[data-test*="apply"]`,
	`[class*="apply-button"]`,
	`[class*="ApplyButton"]`,
	`a:has-text("Apply for this job")`,
	`a:has-text("Apply Now")`,
	`button:has-text("Apply for this job")`,
	`button:has-text("Apply Now")`,
	`a:has-text("Apply")`,
	`button:has-text("Apply")`,
	`[role="button"]:has-text("Apply")`,
}

// FormIndicators are selectors whose visible presence suggests the page is
// already an application form. The caller requires a configurable minimum
// count before skipping the Apply-button search, to avoid false positives
// from a lone search box.
func FormIndicators() []string {
	return []string{
		`input[name*="name" i]`,
		`input[name*="email" i]`,
		`input[type="file"]`,
		`input[name*="resume" i]`,
		`input[name*="phone" i]`,
		`#first_name`,
		`#last_name`,
		`#email`,
	}
}

// LoginIndicators are selectors whose presence means the form sits behind an
// authentication wall. Login flows are never automated; the session surfaces
// these to the operator.
func LoginIndicators() []string {
	return []string{
		`[data-automation-id="signIn"]`,
		`input[type="password"]`,
		`button:has-text("Sign In")`,
		`a:has-text("Sign In")`,
	}
}
