package util

import "strings"

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

func IsVideoMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "video/")
}

// IsMediaMIME reports whether a MIME type belongs in the vault at all.
func IsMediaMIME(mimeType string) bool {
	return IsImageMIME(mimeType) || IsVideoMIME(mimeType)
}

// IsThumbnailMIME reports whether the server can decode the format to
// render a thumbnail.
func IsThumbnailMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
