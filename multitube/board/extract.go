package board

import "regexp"

var videoIDPattern = regexp.MustCompile(`(?:v=|/embed/|\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractID returns the 11 character video id found in raw, if any.
// Recognized forms are `watch?v=ID`, `/embed/ID` and `youtu.be/ID`.
func ExtractID(raw string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}
