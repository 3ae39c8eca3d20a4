package model

import "time"

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// UploadTicket is the upload negotiator's answer: a presigned PUT URL
// plus the metadata the client must echo back at confirmation.
type UploadTicket struct {
	UploadURL  string       `json:"upload_url"`
	FileID     string       `json:"file_id"`
	StorageKey string       `json:"storage_key"`
	Metadata   FileMetadata `json:"metadata"`
}

// DownloadCredential is a presigned read URL scoped to one object.
type DownloadCredential struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// GallerySection groups active files by month for display.
type GallerySection struct {
	Title string       `json:"title"`
	Files []FileRecord `json:"files"`
}

// TrashItem is a trashed record with its retention projection.
type TrashItem struct {
	FileRecord
	DaysLeft  int       `json:"days_left"`
	ExpiresAt time.Time `json:"expires_at"`
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult reports a fan-out of independent lifecycle transitions.
// Partial failure is expected; nothing is rolled back.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	FileID     string     `json:"file_id,omitempty"`
	StorageKey string     `json:"storage_key,omitempty"`
	Error      string     `json:"error,omitempty"`
}
