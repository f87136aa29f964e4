package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"notesync/cmd/internal/domain/entity"
	"notesync/cmd/internal/infrastructure/aws/storage"
	"notesync/cmd/internal/utils"
	"time"

	"github.com/labstack/gommon/log"
)

type NoteSnapshotSource interface {
	FindAll(ctx context.Context) ([]*entity.Note, error)
}

type snapshotNote struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updated_at"`
	Deleted   int    `json:"deleted"`
}

type snapshot struct {
	TakenAt int64           `json:"taken_at"`
	Notes   []*snapshotNote `json:"notes"`
}

// SnapshotExporter periodically uploads every note, tombstones included, to
// object storage. It only reads from the store.
type SnapshotExporter struct {
	noteRepo NoteSnapshotSource
	bucket   storage.S3Client
	interval time.Duration
	now      func() int64
}

func NewSnapshotExporter(repo NoteSnapshotSource, bucket storage.S3Client, interval time.Duration) *SnapshotExporter {
	return &SnapshotExporter{
		noteRepo: repo,
		bucket:   bucket,
		interval: interval,
		now:      utils.NowUTC,
	}
}

func (s *SnapshotExporter) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Infof("Snapshot exporter cron started, interval %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping snapshot exporter...")
			return
		case <-ticker.C:
			if _, err := s.Export(ctx); err != nil {
				log.Errorf("Exporter: %v", err)
			}
		}
	}
}

// Export uploads one snapshot and returns the object key it was stored at.
func (s *SnapshotExporter) Export(ctx context.Context) (string, error) {
	notes, err := s.noteRepo.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read notes: %w", err)
	}

	takenAt := s.now()
	snap := snapshot{
		TakenAt: takenAt,
		Notes:   make([]*snapshotNote, len(notes)),
	}
	for i, note := range notes {
		snap.Notes[i] = &snapshotNote{
			ID:        note.ID,
			Content:   note.Content,
			UpdatedAt: note.UpdatedAt,
			Deleted:   utils.BoolToInt(note.Deleted),
		}
	}

	data, err := json.Marshal(&snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("%snotes-%d.json", storage.PathSnapshots, takenAt)
	if _, err = s.bucket.UploadFile(ctx, data, key); err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	log.Debugf("Exporter: uploaded %d notes to %s (%s)", len(notes), key, utils.FormatEpoch(takenAt))
	return key, nil
}
