package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url with params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ", true},
		{"short url", "https://youtu.be/a_b-C1d2E3f", "a_b-C1d2E3f", true},
		{"embed url", "https://www.youtube.com/embed/ABCDEFGHIJK?autoplay=1", "ABCDEFGHIJK", true},
		{"longer id truncated to 11", "https://youtu.be/ABCDEFGHIJKLMN", "ABCDEFGHIJK", true},
		{"too short", "https://youtu.be/abc", "", false},
		{"invalid characters", "https://www.youtube.com/watch?v=abc$%^&*()12", "", false},
		{"no pattern", "https://example.com/video/ABCDEFGHIJK", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseInput(t *testing.T) {
	text := "https://youtu.be/AAAAAAAAAAA\n\n  not a url  \nhttps://www.youtube.com/watch?v=BBBBBBBBBBB\nhttps://youtu.be/AAAAAAAAAAA\n"
	assert.Equal(t, []string{"AAAAAAAAAAA", "BBBBBBBBBBB"}, ParseInput(text))
	assert.Empty(t, ParseInput(""))
}
