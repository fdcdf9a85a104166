package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/pkg/jobs"
	"github.com/uniarchive/archive-api/pkg/storage"
)

type exportPayload struct {
	Filename string
	Data     []byte
}

// ExportArchive keeps an on-disk copy of every rendered activity log
// export. Writes happen off the request path through a worker queue, and
// copies older than the retention period are pruned after each write.
type ExportArchive struct {
	store     *storage.LocalStorage
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
}

// NewExportArchive sets up the archive directory and its worker queue.
func NewExportArchive(dir string, retention time.Duration, logger *zap.Logger) (*ExportArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}

	a := &ExportArchive{store: store, retention: retention, logger: logger}
	a.queue = jobs.NewQueue("export-archive", a.handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return a, nil
}

// Start launches the archive workers.
func (a *ExportArchive) Start(ctx context.Context) {
	a.queue.Start(ctx)
}

// Stop drains the archive workers.
func (a *ExportArchive) Stop() {
	a.queue.Stop()
}

// Store schedules an export copy. Failures only affect the archive copy,
// never the download already being served.
func (a *ExportArchive) Store(filename string, data []byte) {
	if a == nil {
		return
	}
	err := a.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "store-export",
		Payload: exportPayload{Filename: filename, Data: data},
	})
	if err != nil {
		a.logger.Warn("failed to schedule export archive copy", zap.String("file", filename), zap.Error(err))
	}
}

func (a *ExportArchive) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	if _, err := a.store.Save(payload.Filename, payload.Data); err != nil {
		return err
	}
	if removed, err := a.store.CleanupOlderThan(a.retention); err != nil {
		a.logger.Warn("export archive cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		a.logger.Info("pruned archived exports", zap.Int("count", len(removed)))
	}
	return nil
}
