package event

type Type string

const (
	TypeFileUploaded Type = "file.uploaded"
	TypeFileTrashed  Type = "file.trashed"
	TypeFileRestored Type = "file.restored"
	TypeFilePurged   Type = "file.purged"
	TypeGrantAdded   Type = "grant.added"
	TypeGrantRemoved Type = "grant.removed"
)

// FilePayload carries what the audit trail needs to know about a
// lifecycle transition. Err records a swallowed best-effort failure
// (object-store delete during purge), never a failed transition.
type FilePayload struct {
	FileID     string `json:"file_id"`
	StorageKey string `json:"storage_key"`
	ActorEmail string `json:"actor_email,omitempty"`
	Err        string `json:"error,omitempty"`
}

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
