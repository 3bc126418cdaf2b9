package feeds

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxTextLen = 200

var textPolicy = bluemonday.StrictPolicy()

// CleanText strips every tag from s and caps its length, for scraped text
// shown on the page.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	out := textPolicy.Sanitize(html.UnescapeString(s))
	out = html.UnescapeString(out)
	out = strings.Join(strings.Fields(out), " ")
	if r := []rune(out); len(r) > maxTextLen {
		out = string(r[:maxTextLen])
	}
	return out
}
