package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPageStripsNoise(t *testing.T) {
	raw := `<html><head><title>Apply - Acme</title>
		<script>var tracking = true;</script>
		<style>.hidden{display:none}</style></head>
		<body>
		<form action="/apply" method="post">
			<label for="email">Email</label>
			<input id="email" name="email" type="email" required autocomplete="email">
		</form>
		<iframe src="https://ads.example.com"></iframe>
		</body></html>`

	capture, err := cleanPage(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, "Apply - Acme", capture.Title)
	assert.False(t, capture.Truncated)
	assert.NotContains(t, capture.HTML, "tracking")
	assert.NotContains(t, capture.HTML, "display:none")
	assert.NotContains(t, capture.HTML, "iframe")
	assert.NotContains(t, capture.HTML, "ads.example.com")
}

func TestCleanPageKeepsTargetingAttributes(t *testing.T) {
	raw := `<body>
		<input id="first_name" name="first_name" type="text" placeholder="First name"
			data-qa="first-name" onclick="track()" style="width:100px">
		<div role="combobox" aria-haspopup="listbox" aria-label="Country"></div>
		<label for="first_name">First Name</label>
	</body>`

	capture, err := cleanPage(raw, 0)
	require.NoError(t, err)

	for _, want := range []string{
		`id="first_name"`, `name="first_name"`, `type="text"`,
		`placeholder="First name"`, `data-qa="first-name"`,
		`role="combobox"`, `aria-haspopup="listbox"`, `aria-label="Country"`,
		`for="first_name"`,
	} {
		assert.Contains(t, capture.HTML, want)
	}
	assert.NotContains(t, capture.HTML, "onclick")
	assert.NotContains(t, capture.HTML, "style=")
}

func TestCleanPageTruncates(t *testing.T) {
	raw := "<body><p>" + strings.Repeat("lorem ipsum ", 500) + "</p></body>"
	capture, err := cleanPage(raw, 200)
	require.NoError(t, err)
	assert.True(t, capture.Truncated)
	assert.Less(t, len(capture.HTML), 400)
}

func TestCleanPageEscapesAttributeValues(t *testing.T) {
	raw := `<body><input name="q" value="a &quot;quoted&quot; value"></body>`
	capture, err := cleanPage(raw, 0)
	require.NoError(t, err)
	assert.Contains(t, capture.HTML, "&#34;quoted&#34;")
}
