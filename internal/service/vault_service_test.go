package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"photovault/internal/event"
	"photovault/internal/model"
	"photovault/internal/storage"
)

var testNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

const (
	testOwner    = "11111111-1111-1111-1111-111111111111"
	testStranger = "22222222-2222-2222-2222-222222222222"
	testFileID   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func newTestVault(files *mockFileStore, grants *mockGrantStore, objects *storage.MockObjectStore) *VaultService {
	svc := NewVaultService(files, grants, objects, event.NewBus(), time.Hour, 30*24*time.Hour, 64<<20)
	svc.now = func() time.Time { return testNow }
	return svc
}

func activeRecord() model.FileRecord {
	created := testNow.Add(-48 * time.Hour)
	return model.FileRecord{
		ID:               testFileID,
		OwnerID:          testOwner,
		StorageKey:       StorageKey(testOwner, testFileID),
		OriginalFilename: "beach.jpg",
		MimeType:         "image/jpeg",
		FileSize:         2048,
		EffectiveDate:    created,
		CreatedAt:        created,
	}
}

func trashedRecord() model.FileRecord {
	rec := activeRecord()
	deletedAt := testNow.Add(-24 * time.Hour)
	rec.DeletedAt = &deletedAt
	return rec
}

func owner() model.Caller {
	return model.Caller{ID: testOwner, Email: "owner@example.com"}
}

func stranger() model.Caller {
	return model.Caller{ID: testStranger, Email: "other@example.com"}
}

func TestVaultService_RequestUpload(t *testing.T) {
	t.Run("issues credential and metadata echo", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, grants, objects)

		objects.On("PresignPut", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", time.Hour).
			Return("https://store.example/put", nil)

		capturedAt := time.Date(2024, 7, 14, 18, 0, 0, 0, time.UTC)
		ticket, err := svc.RequestUpload(context.Background(), owner(), model.UploadRequest{
			Filename:   "beach.jpg",
			MimeType:   "image/jpeg",
			FileSize:   2048,
			CapturedAt: &capturedAt,
		})

		assert.NoError(t, err)
		assert.Equal(t, "https://store.example/put", ticket.UploadURL)
		assert.NotEmpty(t, ticket.FileID)
		assert.Equal(t, StorageKey(testOwner, ticket.FileID), ticket.StorageKey)
		assert.Equal(t, "beach.jpg", ticket.Metadata.OriginalFilename)
		assert.Equal(t, capturedAt, ticket.Metadata.EffectiveDate)
		assert.NotNil(t, ticket.Metadata.OriginalCreatedAt)

		// No record store interaction at negotiation time.
		files.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("effective date falls back to now without capture date", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, grants, objects)

		objects.On("PresignPut", mock.Anything, mock.AnythingOfType("string"), "video/mp4", time.Hour).
			Return("https://store.example/put", nil)

		ticket, err := svc.RequestUpload(context.Background(), owner(), model.UploadRequest{
			Filename: "clip.mp4",
			MimeType: "video/mp4",
			FileSize: 1 << 20,
		})

		assert.NoError(t, err)
		assert.Equal(t, testNow, ticket.Metadata.EffectiveDate)
		assert.Nil(t, ticket.Metadata.OriginalCreatedAt)
	})

	t.Run("binds the declared content type into the credential", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		svc := newTestVault(new(mockFileStore), new(mockGrantStore), objects)

		objects.On("PresignPut", mock.Anything, mock.AnythingOfType("string"), "image/png", time.Hour).
			Return("https://store.example/put", nil).Once()

		_, err := svc.RequestUpload(context.Background(), owner(), model.UploadRequest{
			Filename: "scan.png",
			MimeType: "image/png",
			FileSize: 512,
		})

		assert.NoError(t, err)
		// The credential must be signed for image/png and nothing else.
		objects.AssertExpectations(t)
	})

	t.Run("rejects files above the upload limit", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		svc := newTestVault(new(mockFileStore), new(mockGrantStore), objects)

		_, err := svc.RequestUpload(context.Background(), owner(), model.UploadRequest{
			Filename: "raw.mov",
			MimeType: "video/quicktime",
			FileSize: 64<<20 + 1,
		})

		assert.ErrorIs(t, err, model.ErrValidation)
		objects.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects missing metadata", func(t *testing.T) {
		svc := newTestVault(new(mockFileStore), new(mockGrantStore), new(storage.MockObjectStore))

		for _, req := range []model.UploadRequest{
			{MimeType: "image/jpeg", FileSize: 10},
			{Filename: "a.jpg", FileSize: 10},
			{Filename: "a.jpg", MimeType: "image/jpeg"},
			{Filename: "report.pdf", MimeType: "application/pdf", FileSize: 10},
		} {
			_, err := svc.RequestUpload(context.Background(), owner(), req)
			assert.ErrorIs(t, err, model.ErrValidation)
		}
	})

	t.Run("rejects unauthenticated caller", func(t *testing.T) {
		svc := newTestVault(new(mockFileStore), new(mockGrantStore), new(storage.MockObjectStore))

		_, err := svc.RequestUpload(context.Background(), model.Caller{}, model.UploadRequest{
			Filename: "a.jpg", MimeType: "image/jpeg", FileSize: 10,
		})
		assert.ErrorIs(t, err, model.ErrUnauthenticated)
	})

	t.Run("wraps presign failure as upstream", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		svc := newTestVault(new(mockFileStore), new(mockGrantStore), objects)

		objects.On("PresignPut", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", time.Hour).
			Return("", errors.New("connection refused"))

		_, err := svc.RequestUpload(context.Background(), owner(), model.UploadRequest{
			Filename: "a.jpg", MimeType: "image/jpeg", FileSize: 10,
		})
		assert.ErrorIs(t, err, model.ErrUpstream)
	})
}

func TestVaultService_ConfirmUpload(t *testing.T) {
	metadata := model.FileMetadata{
		OriginalFilename: "beach.jpg",
		MimeType:         "image/jpeg",
		FileSize:         2048,
		EffectiveDate:    time.Date(2024, 7, 14, 18, 0, 0, 0, time.UTC),
	}

	t.Run("registers active record", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("Insert", mock.Anything, mock.MatchedBy(func(rec model.FileRecord) bool {
			return rec.ID == testFileID &&
				rec.OwnerID == testOwner &&
				rec.StorageKey == StorageKey(testOwner, testFileID) &&
				rec.DeletedAt == nil &&
				rec.EffectiveDate.Equal(metadata.EffectiveDate)
		})).Return(nil)

		rec, err := svc.ConfirmUpload(context.Background(), owner(), model.ConfirmUploadRequest{
			FileID:     testFileID,
			StorageKey: StorageKey(testOwner, testFileID),
			Metadata:   metadata,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StateActive, rec.State())
		files.AssertExpectations(t)
	})

	t.Run("second confirmation fails on identity constraint", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("Insert", mock.Anything, mock.Anything).Return(model.ErrAlreadyExists)

		_, err := svc.ConfirmUpload(context.Background(), owner(), model.ConfirmUploadRequest{
			FileID:     testFileID,
			StorageKey: StorageKey(testOwner, testFileID),
			Metadata:   metadata,
		})
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
	})

	t.Run("rejects a storage key minted for another user", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		_, err := svc.ConfirmUpload(context.Background(), owner(), model.ConfirmUploadRequest{
			FileID:     testFileID,
			StorageKey: StorageKey(testStranger, testFileID),
			Metadata:   metadata,
		})

		assert.ErrorIs(t, err, model.ErrForbidden)
		files.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestVaultService_SoftDelete(t *testing.T) {
	t.Run("owner trashes active file", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil)
		files.On("MarkTrashed", mock.Anything, testFileID, testNow).Return(true, nil)

		rec, err := svc.SoftDelete(context.Background(), owner(), testFileID)

		assert.NoError(t, err)
		assert.Equal(t, model.StateTrashed, rec.State())
		assert.Equal(t, testNow, *rec.DeletedAt)
		files.AssertExpectations(t)
	})

	t.Run("already trashed is an invalid state, not a no-op", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(trashedRecord(), nil)

		_, err := svc.SoftDelete(context.Background(), owner(), testFileID)

		assert.ErrorIs(t, err, model.ErrInvalidState)
		files.AssertNotCalled(t, "MarkTrashed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner is forbidden even with a read grant", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		svc := newTestVault(files, grants, new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil)
		grants.On("Exists", mock.Anything, testFileID, testStranger).Return(true, nil)

		_, err := svc.SoftDelete(context.Background(), stranger(), testFileID)

		assert.ErrorIs(t, err, model.ErrForbidden)
		files.AssertNotCalled(t, "MarkTrashed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, "missing").Return(model.FileRecord{}, model.ErrFileNotFound)

		_, err := svc.SoftDelete(context.Background(), owner(), "missing")
		assert.ErrorIs(t, err, model.ErrFileNotFound)
	})

	t.Run("losing the race resolves to invalid state", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		// The record was active at read time but another request trashed
		// it before our guarded update ran.
		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil).Once()
		files.On("MarkTrashed", mock.Anything, testFileID, testNow).Return(false, nil)
		files.On("FindByID", mock.Anything, testFileID).Return(trashedRecord(), nil).Once()

		_, err := svc.SoftDelete(context.Background(), owner(), testFileID)
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})

	t.Run("losing the race to a purge resolves to not found", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil).Once()
		files.On("MarkTrashed", mock.Anything, testFileID, testNow).Return(false, nil)
		files.On("FindByID", mock.Anything, testFileID).Return(model.FileRecord{}, model.ErrFileNotFound).Once()

		_, err := svc.SoftDelete(context.Background(), owner(), testFileID)
		assert.ErrorIs(t, err, model.ErrFileNotFound)
	})
}

func TestVaultService_Restore(t *testing.T) {
	t.Run("owner restores trashed file", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(trashedRecord(), nil)
		files.On("ClearTrashed", mock.Anything, testFileID).Return(true, nil)

		rec, err := svc.Restore(context.Background(), owner(), testFileID)

		assert.NoError(t, err)
		assert.Equal(t, model.StateActive, rec.State())
		assert.Nil(t, rec.DeletedAt)
	})

	t.Run("active file has nothing to restore", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil)

		_, err := svc.Restore(context.Background(), owner(), testFileID)

		assert.ErrorIs(t, err, model.ErrInvalidState)
		files.AssertNotCalled(t, "ClearTrashed", mock.Anything, mock.Anything)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		svc := newTestVault(files, grants, new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(trashedRecord(), nil)
		grants.On("Exists", mock.Anything, testFileID, testStranger).Return(false, nil)

		_, err := svc.Restore(context.Background(), stranger(), testFileID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestVaultService_SoftDeleteRestoreRoundTrip(t *testing.T) {
	// Trash then restore touches deleted_at and nothing else.
	files := new(mockFileStore)
	svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

	before := activeRecord()
	files.On("FindByID", mock.Anything, testFileID).Return(before, nil).Once()
	files.On("MarkTrashed", mock.Anything, testFileID, testNow).Return(true, nil)

	trashed, err := svc.SoftDelete(context.Background(), owner(), testFileID)
	assert.NoError(t, err)

	files.On("FindByID", mock.Anything, testFileID).Return(trashed, nil).Once()
	files.On("ClearTrashed", mock.Anything, testFileID).Return(true, nil)

	restored, err := svc.Restore(context.Background(), owner(), testFileID)
	assert.NoError(t, err)
	assert.Equal(t, before, restored)
}

func TestVaultService_Purge(t *testing.T) {
	t.Run("owner purges trashed file", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		rec := trashedRecord()
		files.On("FindByID", mock.Anything, testFileID).Return(rec, nil)
		objects.On("Remove", mock.Anything, rec.StorageKey).Return(nil)
		files.On("DeleteTrashed", mock.Anything, testFileID).Return(true, nil)

		err := svc.Purge(context.Background(), owner(), testFileID)

		assert.NoError(t, err)
		files.AssertExpectations(t)
		objects.AssertExpectations(t)
	})

	t.Run("object store failure never blocks the metadata deletion", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		rec := trashedRecord()
		files.On("FindByID", mock.Anything, testFileID).Return(rec, nil)
		objects.On("Remove", mock.Anything, rec.StorageKey).Return(errors.New("503 slow down"))
		files.On("DeleteTrashed", mock.Anything, testFileID).Return(true, nil)

		err := svc.Purge(context.Background(), owner(), testFileID)

		assert.NoError(t, err)
		files.AssertExpectations(t)
	})

	t.Run("purging an active file is rejected and leaves it untouched", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil)

		err := svc.Purge(context.Background(), owner(), testFileID)

		assert.ErrorIs(t, err, model.ErrInvalidState)
		objects.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
		files.AssertNotCalled(t, "DeleteTrashed", mock.Anything, mock.Anything)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		svc := newTestVault(files, grants, new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(trashedRecord(), nil)
		grants.On("Exists", mock.Anything, testFileID, testStranger).Return(true, nil)

		err := svc.Purge(context.Background(), stranger(), testFileID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestVaultService_GetDownloadCredential(t *testing.T) {
	t.Run("owner gets a presigned read URL", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		rec := activeRecord()
		files.On("FindByID", mock.Anything, testFileID).Return(rec, nil)
		objects.On("PresignGet", mock.Anything, rec.StorageKey, "beach.jpg", time.Hour).
			Return("https://store.example/get", nil)

		cred, err := svc.GetDownloadCredential(context.Background(), owner(), testFileID)

		assert.NoError(t, err)
		assert.Equal(t, "https://store.example/get", cred.URL)
		assert.Equal(t, "beach.jpg", cred.Filename)
		assert.Equal(t, "image/jpeg", cred.MimeType)
	})

	t.Run("permitted reader qualifies", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, grants, objects)

		rec := activeRecord()
		files.On("FindByID", mock.Anything, testFileID).Return(rec, nil)
		grants.On("Exists", mock.Anything, testFileID, testStranger).Return(true, nil)
		objects.On("PresignGet", mock.Anything, rec.StorageKey, "beach.jpg", time.Hour).
			Return("https://store.example/get", nil)

		_, err := svc.GetDownloadCredential(context.Background(), stranger(), testFileID)
		assert.NoError(t, err)
	})

	t.Run("no grant means denied", func(t *testing.T) {
		files := new(mockFileStore)
		grants := new(mockGrantStore)
		svc := newTestVault(files, grants, new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(activeRecord(), nil)
		grants.On("Exists", mock.Anything, testFileID, testStranger).Return(false, nil)

		_, err := svc.GetDownloadCredential(context.Background(), stranger(), testFileID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("purged file is gone", func(t *testing.T) {
		files := new(mockFileStore)
		svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

		files.On("FindByID", mock.Anything, testFileID).Return(model.FileRecord{}, model.ErrFileNotFound)

		_, err := svc.GetDownloadCredential(context.Background(), owner(), testFileID)
		assert.ErrorIs(t, err, model.ErrFileNotFound)
	})
}

func TestVaultService_ListTrashed(t *testing.T) {
	files := new(mockFileStore)
	svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

	justTrashed := activeRecord()
	deletedAt := testNow
	justTrashed.DeletedAt = &deletedAt

	files.On("ListTrashed", mock.Anything, testOwner).Return([]model.FileRecord{justTrashed}, nil)

	items, err := svc.ListTrashed(context.Background(), owner())

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 30, items[0].DaysLeft)
	assert.Equal(t, deletedAt.Add(30*24*time.Hour), items[0].ExpiresAt)
}

func TestVaultService_Gallery(t *testing.T) {
	files := new(mockFileStore)
	svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

	april1 := activeRecord()
	april1.ID = "f1"
	april1.EffectiveDate = time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)
	april2 := activeRecord()
	april2.ID = "f2"
	april2.EffectiveDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	march := activeRecord()
	march.ID = "f3"
	march.EffectiveDate = time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	files.On("ListActive", mock.Anything, testOwner).
		Return([]model.FileRecord{april1, april2, march}, nil)

	sections, err := svc.Gallery(context.Background(), owner())

	assert.NoError(t, err)
	assert.Len(t, sections, 2)
	assert.Equal(t, "April 2026", sections[0].Title)
	assert.Len(t, sections[0].Files, 2)
	assert.Equal(t, "March 2026", sections[1].Title)
	assert.Len(t, sections[1].Files, 1)
}

func TestVaultService_BulkSoftDelete(t *testing.T) {
	// Three files, one already purged by another session: the stale id
	// reports not_found, the other two succeed.
	files := new(mockFileStore)
	svc := newTestVault(files, new(mockGrantStore), new(storage.MockObjectStore))

	recA := activeRecord()
	recA.ID = "file-a"
	recB := activeRecord()
	recB.ID = "file-b"

	files.On("FindByID", mock.Anything, "file-a").Return(recA, nil)
	files.On("FindByID", mock.Anything, "file-b").Return(recB, nil)
	files.On("FindByID", mock.Anything, "file-stale").Return(model.FileRecord{}, model.ErrFileNotFound)
	files.On("MarkTrashed", mock.Anything, "file-a", testNow).Return(true, nil)
	files.On("MarkTrashed", mock.Anything, "file-b", testNow).Return(true, nil)

	result := svc.BulkSoftDelete(context.Background(), owner(), []string{"file-a", "file-b", "file-stale"})

	assert.Equal(t, []string{"file-a", "file-b"}, result.Succeeded)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, "file-stale", result.Failed[0].ID)
	assert.Equal(t, "not_found", result.Failed[0].Reason)
}

func TestVaultService_SweepExpired(t *testing.T) {
	t.Run("purges everything past retention", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		old := trashedRecord()
		old.ID = "old-1"
		old.StorageKey = StorageKey(testOwner, "old-1")
		older := trashedRecord()
		older.ID = "old-2"
		older.StorageKey = StorageKey(testOwner, "old-2")

		cutoff := testNow.Add(-30 * 24 * time.Hour)
		files.On("ListExpired", mock.Anything, cutoff, sweepBatchSize).
			Return([]model.FileRecord{old, older}, nil)
		objects.On("Remove", mock.Anything, old.StorageKey).Return(nil)
		objects.On("Remove", mock.Anything, older.StorageKey).Return(errors.New("timeout"))
		files.On("DeleteTrashed", mock.Anything, "old-1").Return(true, nil)
		files.On("DeleteTrashed", mock.Anything, "old-2").Return(true, nil)

		purged, err := svc.SweepExpired(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 2, purged)
	})

	t.Run("stops instead of re-listing a batch it cannot delete", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		stuck := trashedRecord()
		files.On("ListExpired", mock.Anything, mock.Anything, sweepBatchSize).
			Return([]model.FileRecord{stuck}, nil)
		objects.On("Remove", mock.Anything, stuck.StorageKey).Return(nil)
		files.On("DeleteTrashed", mock.Anything, stuck.ID).Return(false, errors.New("deadlock detected"))

		purged, err := svc.SweepExpired(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 0, purged)
		files.AssertNumberOfCalls(t, "ListExpired", 1)
	})

	t.Run("skips records restored since listing", func(t *testing.T) {
		files := new(mockFileStore)
		objects := new(storage.MockObjectStore)
		svc := newTestVault(files, new(mockGrantStore), objects)

		rec := trashedRecord()
		files.On("ListExpired", mock.Anything, mock.Anything, sweepBatchSize).
			Return([]model.FileRecord{rec}, nil)
		objects.On("Remove", mock.Anything, rec.StorageKey).Return(nil)
		files.On("DeleteTrashed", mock.Anything, rec.ID).Return(false, nil)

		purged, err := svc.SweepExpired(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, purged)
	})
}
