package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"photovault/internal/event"
	"photovault/internal/model"
	"photovault/internal/storage"
	"photovault/internal/util"
)

// FileStore is the record-store surface the vault needs. The guarded
// mutations (MarkTrashed, ClearTrashed, DeleteTrashed) report whether a
// row changed; a false result means the record was not in the expected
// state and the caller re-checks to tell NotFound from InvalidState.
type FileStore interface {
	Insert(ctx context.Context, rec model.FileRecord) error
	FindByID(ctx context.Context, id string) (model.FileRecord, error)
	MarkTrashed(ctx context.Context, id string, at time.Time) (bool, error)
	ClearTrashed(ctx context.Context, id string) (bool, error)
	DeleteTrashed(ctx context.Context, id string) (bool, error)
	ListActive(ctx context.Context, ownerID string) ([]model.FileRecord, error)
	ListTrashed(ctx context.Context, ownerID string) ([]model.FileRecord, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error)
}

type VaultService struct {
	files      FileStore
	grants     GrantStore
	objects    storage.ObjectStore
	bus        event.Bus
	presignTTL time.Duration
	retention  time.Duration
	maxUpload  int64
	now        func() time.Time
}

func NewVaultService(
	files FileStore,
	grants GrantStore,
	objects storage.ObjectStore,
	bus event.Bus,
	presignTTL time.Duration,
	retention time.Duration,
	maxUpload int64,
) *VaultService {
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if maxUpload <= 0 {
		maxUpload = 1 << 30
	}

	return &VaultService{
		files:      files,
		grants:     grants,
		objects:    objects,
		bus:        bus,
		presignTTL: presignTTL,
		retention:  retention,
		maxUpload:  maxUpload,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// StorageKey derives the object key for a file. The owner id is baked
// into the key, so a key never moves between accounts.
func StorageKey(ownerID string, fileID string) string {
	return fmt.Sprintf("vault/%s/%s", ownerID, fileID)
}

// RequestUpload issues a presigned write credential for a fresh file id,
// bound to the derived key and the declared content type. No database
// row is created here; a client that never confirms leaves at most an
// orphaned object, which is acceptable and ignored.
func (s *VaultService) RequestUpload(ctx context.Context, caller model.Caller, req model.UploadRequest) (model.UploadTicket, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return model.UploadTicket{}, model.ErrUnauthenticated
	}

	if strings.TrimSpace(req.Filename) == "" || strings.TrimSpace(req.MimeType) == "" || req.FileSize <= 0 {
		return model.UploadTicket{}, fmt.Errorf("%w: filename, mime_type and file_size are required", model.ErrValidation)
	}

	if !util.IsMediaMIME(req.MimeType) {
		return model.UploadTicket{}, fmt.Errorf("%w: only image and video uploads are accepted", model.ErrValidation)
	}

	if req.FileSize > s.maxUpload {
		return model.UploadTicket{}, fmt.Errorf("%w: file exceeds the %d byte upload limit", model.ErrValidation, s.maxUpload)
	}

	fileID := uuid.NewString()
	storageKey := StorageKey(caller.ID, fileID)

	effectiveDate := s.now()
	var capturedAt *time.Time
	if req.CapturedAt != nil {
		t := req.CapturedAt.UTC()
		capturedAt = &t
		effectiveDate = t
	}

	uploadURL, err := s.objects.PresignPut(ctx, storageKey, req.MimeType, s.presignTTL)
	if err != nil {
		return model.UploadTicket{}, fmt.Errorf("issue upload credential: %w: %w", model.ErrUpstream, err)
	}

	return model.UploadTicket{
		UploadURL:  uploadURL,
		FileID:     fileID,
		StorageKey: storageKey,
		Metadata: model.FileMetadata{
			OriginalFilename:  req.Filename,
			MimeType:          req.MimeType,
			FileSize:          req.FileSize,
			OriginalCreatedAt: capturedAt,
			EffectiveDate:     effectiveDate,
		},
	}, nil
}

// ConfirmUpload registers the metadata record after the client reports a
// successful object-store write. Not idempotent: a second confirmation
// with the same id fails on the identity constraint.
func (s *VaultService) ConfirmUpload(ctx context.Context, caller model.Caller, req model.ConfirmUploadRequest) (model.FileRecord, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return model.FileRecord{}, model.ErrUnauthenticated
	}

	if strings.TrimSpace(req.FileID) == "" || strings.TrimSpace(req.StorageKey) == "" ||
		strings.TrimSpace(req.Metadata.OriginalFilename) == "" ||
		strings.TrimSpace(req.Metadata.MimeType) == "" || req.Metadata.FileSize <= 0 {
		return model.FileRecord{}, fmt.Errorf("%w: file id, storage key and metadata are required", model.ErrValidation)
	}

	// The key encodes the owner; confirming someone else's ticket is a
	// permission failure, not a validation one.
	if req.StorageKey != StorageKey(caller.ID, req.FileID) {
		return model.FileRecord{}, model.ErrForbidden
	}

	effectiveDate := req.Metadata.EffectiveDate
	if effectiveDate.IsZero() {
		effectiveDate = s.now()
	}

	rec := model.FileRecord{
		ID:                req.FileID,
		OwnerID:           caller.ID,
		StorageKey:        req.StorageKey,
		OriginalFilename:  req.Metadata.OriginalFilename,
		MimeType:          req.Metadata.MimeType,
		FileSize:          req.Metadata.FileSize,
		OriginalCreatedAt: req.Metadata.OriginalCreatedAt,
		EffectiveDate:     effectiveDate,
		CreatedAt:         s.now(),
	}

	if err := s.files.Insert(ctx, rec); err != nil {
		return model.FileRecord{}, err
	}

	s.publish(event.TypeFileUploaded, caller, rec, "")
	return rec, nil
}

// SoftDelete moves an active file into the trash. Trashing a file that
// is already in the trash is an InvalidState error, not a no-op.
func (s *VaultService) SoftDelete(ctx context.Context, caller model.Caller, fileID string) (model.FileRecord, error) {
	rec, err := s.mutableRecord(ctx, caller, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}

	if rec.DeletedAt != nil {
		return model.FileRecord{}, fmt.Errorf("%w: file is already in trash", model.ErrInvalidState)
	}

	deletedAt := s.now()
	changed, err := s.files.MarkTrashed(ctx, fileID, deletedAt)
	if err != nil {
		return model.FileRecord{}, err
	}
	if !changed {
		return model.FileRecord{}, s.transitionConflict(ctx, fileID)
	}

	rec.DeletedAt = &deletedAt
	s.publish(event.TypeFileTrashed, caller, rec, "")
	return rec, nil
}

// Restore moves a trashed file back to active, clearing deleted_at and
// nothing else.
func (s *VaultService) Restore(ctx context.Context, caller model.Caller, fileID string) (model.FileRecord, error) {
	rec, err := s.mutableRecord(ctx, caller, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}

	if rec.DeletedAt == nil {
		return model.FileRecord{}, fmt.Errorf("%w: file is not in trash", model.ErrInvalidState)
	}

	changed, err := s.files.ClearTrashed(ctx, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}
	if !changed {
		return model.FileRecord{}, s.transitionConflict(ctx, fileID)
	}

	rec.DeletedAt = nil
	s.publish(event.TypeFileRestored, caller, rec, "")
	return rec, nil
}

// Purge permanently deletes a trashed file: best-effort object removal,
// then the metadata row, which cascades permission grants. Purging an
// active file is rejected; the two-step trash-then-purge flow is the
// guard against accidental data loss.
func (s *VaultService) Purge(ctx context.Context, caller model.Caller, fileID string) error {
	rec, err := s.mutableRecord(ctx, caller, fileID)
	if err != nil {
		return err
	}

	if rec.DeletedAt == nil {
		return fmt.Errorf("%w: file must be in trash before permanent deletion", model.ErrInvalidState)
	}

	objErr := s.removeObject(ctx, rec)

	deleted, err := s.files.DeleteTrashed(ctx, fileID)
	if err != nil {
		return err
	}
	if !deleted {
		return s.transitionConflict(ctx, fileID)
	}

	s.publish(event.TypeFilePurged, caller, rec, objErr)
	return nil
}

// GetDownloadCredential issues a presigned read URL. Owners and
// permitted readers qualify; lifecycle state does not matter, the trash
// view previews its items the same way the gallery does.
func (s *VaultService) GetDownloadCredential(ctx context.Context, caller model.Caller, fileID string) (model.DownloadCredential, error) {
	rec, err := s.readableRecord(ctx, caller, fileID)
	if err != nil {
		return model.DownloadCredential{}, err
	}

	url, err := s.objects.PresignGet(ctx, rec.StorageKey, rec.OriginalFilename, s.presignTTL)
	if err != nil {
		return model.DownloadCredential{}, fmt.Errorf("issue download credential: %w: %w", model.ErrUpstream, err)
	}

	return model.DownloadCredential{
		URL:      url,
		Filename: rec.OriginalFilename,
		MimeType: rec.MimeType,
	}, nil
}

// OpenObject streams the backing object for proxy downloads and
// thumbnail generation. Same authorization as reads.
func (s *VaultService) OpenObject(ctx context.Context, caller model.Caller, fileID string) (model.FileRecord, io.ReadCloser, error) {
	rec, err := s.readableRecord(ctx, caller, fileID)
	if err != nil {
		return model.FileRecord{}, nil, err
	}

	body, err := s.objects.Get(ctx, rec.StorageKey)
	if err != nil {
		return model.FileRecord{}, nil, err
	}
	return rec, body, nil
}

func (s *VaultService) ListActive(ctx context.Context, caller model.Caller) ([]model.FileRecord, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return nil, model.ErrUnauthenticated
	}
	return s.files.ListActive(ctx, caller.ID)
}

// Gallery groups the caller's active files by month of effective date,
// newest first, for display.
func (s *VaultService) Gallery(ctx context.Context, caller model.Caller) ([]model.GallerySection, error) {
	records, err := s.ListActive(ctx, caller)
	if err != nil {
		return nil, err
	}

	sections := make([]model.GallerySection, 0)
	for _, rec := range records {
		title := rec.EffectiveDate.Format("January 2006")
		if n := len(sections); n > 0 && sections[n-1].Title == title {
			sections[n-1].Files = append(sections[n-1].Files, rec)
			continue
		}
		sections = append(sections, model.GallerySection{Title: title, Files: []model.FileRecord{rec}})
	}
	return sections, nil
}

func (s *VaultService) ListTrashed(ctx context.Context, caller model.Caller) ([]model.TrashItem, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return nil, model.ErrUnauthenticated
	}

	records, err := s.files.ListTrashed(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]model.TrashItem, 0, len(records))
	for _, rec := range records {
		items = append(items, model.TrashItem{
			FileRecord: rec,
			DaysLeft:   rec.DaysLeft(now, s.retention),
			ExpiresAt:  rec.ExpiresAt(s.retention),
		})
	}
	return items, nil
}

// GrantRead shares a file with another user for reading. Owner only.
func (s *VaultService) GrantRead(ctx context.Context, caller model.Caller, fileID string, userID string) error {
	rec, err := s.mutableRecord(ctx, caller, fileID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(userID) == "" || userID == caller.ID {
		return fmt.Errorf("%w: grantee must be another user", model.ErrValidation)
	}

	if err := s.grants.Grant(ctx, fileID, userID); err != nil {
		return err
	}

	s.publish(event.TypeGrantAdded, caller, rec, "")
	return nil
}

func (s *VaultService) RevokeRead(ctx context.Context, caller model.Caller, fileID string, userID string) error {
	rec, err := s.mutableRecord(ctx, caller, fileID)
	if err != nil {
		return err
	}

	if err := s.grants.Revoke(ctx, fileID, userID); err != nil {
		return err
	}

	s.publish(event.TypeGrantRemoved, caller, rec, "")
	return nil
}

func (s *VaultService) ListGrants(ctx context.Context, caller model.Caller, fileID string) ([]model.PermissionGrant, error) {
	if _, err := s.mutableRecord(ctx, caller, fileID); err != nil {
		return nil, err
	}
	return s.grants.ListForFile(ctx, fileID)
}

// mutableRecord loads a record and requires Owner access. A read grant
// never allows mutation.
func (s *VaultService) mutableRecord(ctx context.Context, caller model.Caller, fileID string) (model.FileRecord, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return model.FileRecord{}, model.ErrUnauthenticated
	}

	rec, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}

	access, err := resolveAccess(ctx, s.grants, caller, rec)
	if err != nil {
		return model.FileRecord{}, err
	}
	if access != AccessOwner {
		return model.FileRecord{}, model.ErrForbidden
	}

	return rec, nil
}

// readableRecord loads a record and requires Owner or PermittedReader.
func (s *VaultService) readableRecord(ctx context.Context, caller model.Caller, fileID string) (model.FileRecord, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return model.FileRecord{}, model.ErrUnauthenticated
	}

	rec, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return model.FileRecord{}, err
	}

	access, err := resolveAccess(ctx, s.grants, caller, rec)
	if err != nil {
		return model.FileRecord{}, err
	}
	if access == AccessDenied {
		return model.FileRecord{}, model.ErrForbidden
	}

	return rec, nil
}

// transitionConflict classifies a guarded update that changed no rows:
// the record either disappeared (purged concurrently) or is no longer
// in the state the transition expects.
func (s *VaultService) transitionConflict(ctx context.Context, fileID string) error {
	if _, err := s.files.FindByID(ctx, fileID); err != nil {
		return err
	}
	return model.ErrInvalidState
}

// removeObject is the best-effort half of purge. Failure is logged and
// swallowed: an orphaned object is less harmful than a stuck trash
// entry. The returned text ends up in the audit trail.
func (s *VaultService) removeObject(ctx context.Context, rec model.FileRecord) string {
	if err := s.objects.Remove(ctx, rec.StorageKey); err != nil {
		slog.Warn("object delete failed during purge",
			"file_id", rec.ID, "storage_key", rec.StorageKey, "error", err)
		return err.Error()
	}
	return ""
}

func (s *VaultService) publish(t event.Type, caller model.Caller, rec model.FileRecord, errText string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: s.now().Format(time.RFC3339Nano),
		ActorID:   caller.ID,
		Payload: event.FilePayload{
			FileID:     rec.ID,
			StorageKey: rec.StorageKey,
			ActorEmail: caller.Email,
			Err:        errText,
		},
	})
}
