package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streamia/backend/internal/logging"
)

// Storage persists raw asset payloads and returns their public location.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// StatusUpdater records the outcome of an offload attempt against the video row.
type StatusUpdater interface {
	MarkAssetReady(ctx context.Context, videoID int64, location string, size int64) error
	MarkAssetFailed(ctx context.Context, videoID int64) error
}

// Config controls the concurrency characteristics of the ingestor.
type Config struct {
	QueueSize int
	Workers   int
}

// Job is one video payload awaiting offload to object storage.
type Job struct {
	VideoID     int64
	Data        []byte
	ContentType string
}

// Ingestor asynchronously offloads uploaded video payloads to object storage
// and records the outcome on the owning video row.
type Ingestor struct {
	storage Storage
	updater StatusUpdater
	logger  *slog.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errIngestorClosed = errors.New("asset ingestor closed")

// NewIngestor constructs a background worker pool that offloads assets.
func NewIngestor(storage Storage, updater StatusUpdater, cfg Config, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules offload of the supplied payload. It blocks while the
// queue is full and fails once the ingestor has been closed.
func (i *Ingestor) Enqueue(ctx context.Context, job Job) error {
	if job.VideoID <= 0 || len(job.Data) == 0 {
		return errors.New("assets: job requires a video id and payload")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (i *Ingestor) Close() {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})
	i.wg.Wait()
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for job := range i.jobs {
		i.process(job)
	}
}

func (i *Ingestor) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctx = logging.WithLogger(ctx, i.logger)
	ctx, span := logging.StartSpan(ctx, "asset.offload")
	defer span.End()
	logger := logging.FromContext(ctx)

	key := fmt.Sprintf("videos/%d/video.mp4", job.VideoID)
	location, err := i.storage.Save(ctx, key, job.Data, job.ContentType)
	if err != nil {
		logger.Error("asset offload failed", "videoId", job.VideoID, "error", err)
		if err := i.updater.MarkAssetFailed(ctx, job.VideoID); err != nil {
			logger.Error("mark asset failed", "videoId", job.VideoID, "error", err)
		}
		return
	}

	if err := i.updater.MarkAssetReady(ctx, job.VideoID, location, int64(len(job.Data))); err != nil {
		logger.Error("mark asset ready", "videoId", job.VideoID, "error", err)
		return
	}

	logger.Info("asset offloaded", "videoId", job.VideoID, "location", location, "size", len(job.Data))
}
