package model

import (
	"math"
	"time"
)

// LifecycleState describes where a file record sits in the trash lifecycle.
// A purged record no longer exists, so there is no state constant for it.
type LifecycleState string

const (
	StateActive  LifecycleState = "active"
	StateTrashed LifecycleState = "trashed"
)

// FileRecord is the metadata row backing one stored photo or video.
// Everything except deleted_at is immutable after registration.
type FileRecord struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	StorageKey        string     `json:"storage_key"`
	OriginalFilename  string     `json:"original_filename"`
	MimeType          string     `json:"mime_type"`
	FileSize          int64      `json:"file_size"`
	OriginalCreatedAt *time.Time `json:"original_created_at,omitempty"`
	EffectiveDate     time.Time  `json:"effective_date"`
	CreatedAt         time.Time  `json:"created_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

func (f FileRecord) State() LifecycleState {
	if f.DeletedAt != nil {
		return StateTrashed
	}
	return StateActive
}

// ExpiresAt returns the moment the record becomes eligible for purging.
// Zero time for active records.
func (f FileRecord) ExpiresAt(retention time.Duration) time.Time {
	if f.DeletedAt == nil {
		return time.Time{}
	}
	return f.DeletedAt.Add(retention)
}

// DaysLeft is the retention countdown shown in the trash view: the
// ceiling of the remaining window in whole days, floored at zero.
// Derived at read time, never stored.
func (f FileRecord) DaysLeft(now time.Time, retention time.Duration) int {
	if f.DeletedAt == nil {
		return 0
	}
	remaining := f.DeletedAt.Add(retention).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// PermissionGrant gives a non-owner read access to one file. Grants are
// removed by the database cascade when the file row is deleted.
type PermissionGrant struct {
	FileID    string    `json:"file_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
