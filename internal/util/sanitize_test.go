package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDownloadFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name passes through", "beach.jpg", "beach.jpg"},
		{"surrounding whitespace trimmed", "  holiday.png  ", "holiday.png"},
		{"quotes replaced", `my"photo".jpg`, "my_photo_.jpg"},
		{"path separators replaced", `../../etc/passwd`, ".._.._etc_passwd"},
		{"control characters stripped", "pic\r\nture.jpg", "picture.jpg"},
		{"zero width stripped", "cl​ip.mp4", "clip.mp4"},
		{"empty falls back", "", "download"},
		{"dot dot falls back", "..", "download"},
		{"unicode kept", "家族写真.jpg", "家族写真.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeDownloadFilename(tc.input))
		})
	}
}

func TestSanitizeDownloadFilenameTruncates(t *testing.T) {
	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}

	out := SanitizeDownloadFilename(string(long))
	assert.Len(t, []rune(out), 255)
}
