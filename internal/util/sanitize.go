package util

import (
	"strings"
	"unicode"
)

// SanitizeDownloadFilename strips anything that could break a
// Content-Disposition header or confuse a receiving filesystem. The
// vault never trusts stored filenames at serve time; they came from
// clients.
func SanitizeDownloadFilename(name string) string {
	trimmed := strings.TrimSpace(name)

	builder := strings.Builder{}
	builder.Grow(len(trimmed))

	for _, char := range trimmed {
		switch {
		case unicode.IsControl(char):
			continue
		case unicode.Is(unicode.Cf, char):
			// Zero-width and other invisible format characters.
			continue
		case strings.ContainsRune(`"\/`, char):
			builder.WriteRune('_')
		default:
			builder.WriteRune(char)
		}
	}

	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "download"
	}

	// Truncate by runes to avoid splitting multi-byte characters.
	runes := []rune(cleaned)
	if len(runes) > 255 {
		runes = runes[:255]
	}

	return string(runes)
}
