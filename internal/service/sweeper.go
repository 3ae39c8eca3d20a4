package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"photovault/internal/event"
	"photovault/internal/model"
)

const sweepBatchSize = 100

// StartRetentionSweeper purges trash entries whose retention window has
// closed. Manual purge stays available; the sweeper is the scheduled
// path for records nobody touches. Runs until the context is canceled.
func (s *VaultService) StartRetentionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.SweepExpired(ctx)
			if err != nil {
				slog.Error("retention sweep failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("retention sweep purged expired trash", "count", purged)
			}
		}
	}
}

// SweepExpired purges every trashed record past its retention expiry and
// returns how many were removed. Each record is one independent purge;
// a failure on one does not stop the rest, but a batch where every
// deletion fails ends the sweep, since re-listing would return the same
// rows and spin until the next interval anyway.
func (s *VaultService) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)

	purged := 0
	for {
		expired, err := s.files.ListExpired(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return purged, err
		}
		if len(expired) == 0 {
			return purged, nil
		}

		// Rows that delete cleanly, or turn out to be restored or gone,
		// will not show up in the next listing. Rows whose delete errors
		// will, so a batch with zero resolved rows cannot make progress.
		resolved := 0
		for _, rec := range expired {
			objErr := s.removeObject(ctx, rec)

			deleted, err := s.files.DeleteTrashed(ctx, rec.ID)
			if err != nil {
				slog.Error("sweep: delete record failed", "file_id", rec.ID, "error", err)
				continue
			}
			resolved++
			if !deleted {
				// Restored or purged since we listed it.
				continue
			}

			purged++
			s.publishSweep(rec, objErr)
		}

		if resolved == 0 {
			return purged, fmt.Errorf("sweep stalled: none of %d expired records could be deleted", len(expired))
		}
		if len(expired) < sweepBatchSize {
			return purged, nil
		}
	}
}

func (s *VaultService) publishSweep(rec model.FileRecord, errText string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      event.TypeFilePurged,
		Timestamp: s.now().Format(time.RFC3339Nano),
		Payload: event.FilePayload{
			FileID:     rec.ID,
			StorageKey: rec.StorageKey,
			Err:        errText,
		},
	})
}
