package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Platform
	}{
		{"greenhouse board", "https://boards.greenhouse.io/acme/jobs/4012345", Greenhouse},
		{"greenhouse embedded", "https://acme.com/careers?gh_jid=123&src=greenhouse", Greenhouse},
		{"lever posting", "https://jobs.lever.co/acme/1234-5678/apply", Lever},
		{"workday", "https://acme.wd5.myworkdayjobs.com/en-US/careers/job/Engineer", Workday},
		{"workday mixed case", "https://Acme.WD5.MyWorkdayJobs.com/careers", Workday},
		{"mock greenhouse fixture", "http://localhost:8000/mock_greenhouse.html", Mock},
		{"mock lever fixture", "file:///tmp/lever_mock.html", Mock},
		{"company site", "https://careers.acme.com/jobs/123", Unknown},
		{"empty", "", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.url))
		})
	}
}

func TestNavigationTimeoutMs(t *testing.T) {
	assert.Equal(t, float64(60000), Workday.NavigationTimeoutMs(30000))
	assert.Equal(t, float64(30000), Greenhouse.NavigationTimeoutMs(30000))
	assert.Equal(t, float64(30000), Unknown.NavigationTimeoutMs(30000))
}

func TestSettleDelayMs(t *testing.T) {
	assert.Equal(t, float64(5000), Workday.SettleDelayMs())
	assert.Equal(t, float64(500), Mock.SettleDelayMs())
	assert.Equal(t, float64(2000), Greenhouse.SettleDelayMs())
}

func TestApplySelectorsEndWithGenerics(t *testing.T) {
	for _, p := range []Platform{Greenhouse, Lever, Workday, Unknown} {
		sels := p.ApplySelectors()
		assert.NotEmpty(t, sels)
		// Generic text fallbacks must always be present so unknown boards
		// still find their Apply button.
		assert.Contains(t, sels, `button:has-text("Apply")`)
	}
	// Platform-specific selectors come before generics.
	gh := Greenhouse.ApplySelectors()
	assert.Equal(t, `a[data-job-action="apply"]`, gh[0])
}

func TestFormIndicatorsNonEmpty(t *testing.T) {
	assert.GreaterOrEqual(t, len(FormIndicators()), 5)
	assert.NotEmpty(t, LoginIndicators())
}
