package model

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UploadRequest negotiates a presigned write credential. CapturedAt is
// the embedded capture timestamp extracted client-side; absent when the
// file carries no usable metadata.
type UploadRequest struct {
	Filename   string     `json:"filename"`
	MimeType   string     `json:"mime_type"`
	FileSize   int64      `json:"file_size"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// FileMetadata is the payload returned by the upload negotiator and
// echoed back unchanged at confirmation.
type FileMetadata struct {
	OriginalFilename  string     `json:"original_filename"`
	MimeType          string     `json:"mime_type"`
	FileSize          int64      `json:"file_size"`
	OriginalCreatedAt *time.Time `json:"original_created_at"`
	EffectiveDate     time.Time  `json:"effective_date"`
}

type ConfirmUploadRequest struct {
	FileID     string       `json:"file_id"`
	StorageKey string       `json:"storage_key"`
	Metadata   FileMetadata `json:"metadata"`
}

type BulkRequest struct {
	IDs []string `json:"ids"`
}

type GrantRequest struct {
	UserID string `json:"user_id"`
}
