// Package poller watches qBittorrent for completed downloads and turns
// them into user notifications via the background job queue.
package poller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/internal/qbit"
	"github.com/qbitmaster/qbitmaster-api/pkg/jobs"
)

// JobTypeCompletion identifies completion jobs on the queue.
const JobTypeCompletion = "torrent_completion"

// CompletionPayload is the job payload for one completed torrent.
type CompletionPayload struct {
	Torrent models.Torrent
}

type torrentLister interface {
	ListAll(ctx context.Context) ([]models.Torrent, error)
}

type torrentClient interface {
	Torrents(ctx context.Context) ([]qbit.TorrentSnapshot, error)
}

type completionNotifier interface {
	NotifyCompleted(ctx context.Context, torrent *models.Torrent) (bool, error)
}

// Poller periodically reconciles live qBittorrent state against the
// tracked torrents and enqueues completion events. Deduplication happens
// in the notification layer, so re-observing a completed torrent is
// harmless.
type Poller struct {
	repo     torrentLister
	client   torrentClient
	queue    *jobs.Queue
	interval time.Duration
	logger   *zap.Logger
}

// New constructs a Poller.
func New(repo torrentLister, client torrentClient, queue *jobs.Queue, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{repo: repo, client: client, queue: queue, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, polling on the configured interval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("completion poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("completion poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	snapshots, err := p.client.Torrents(ctx)
	if err != nil {
		p.logger.Warn("poll skipped, qbittorrent unreachable", zap.Error(err))
		return
	}

	completed := make(map[string]struct{})
	for _, snap := range snapshots {
		if snap.Progress >= 1 {
			completed[snap.Hash] = struct{}{}
		}
	}
	if len(completed) == 0 {
		return
	}

	torrents, err := p.repo.ListAll(ctx)
	if err != nil {
		p.logger.Warn("poll skipped, failed to list torrents", zap.Error(err))
		return
	}

	enqueued := 0
	for _, torrent := range torrents {
		if torrent.Hash == "" {
			continue
		}
		if _, done := completed[torrent.Hash]; !done {
			continue
		}
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeCompletion,
			Payload: CompletionPayload{Torrent: torrent},
		}
		if err := p.queue.Enqueue(job); err != nil {
			p.logger.Warn("failed to enqueue completion job", zap.String("torrent_id", torrent.ID), zap.Error(err))
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		p.logger.Debug("queued completion jobs",
			zap.Int("enqueued", enqueued),
			zap.Int("queue_depth", p.queue.Depth()))
	}
}

// CompletionHandler returns the queue handler that writes deduplicated
// notifications for completion jobs.
func CompletionHandler(notifier completionNotifier, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(CompletionPayload)
		if !ok {
			logger.Warn("dropping job with unexpected payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		created, err := notifier.NotifyCompleted(ctx, &payload.Torrent)
		if err != nil {
			return err
		}
		if created {
			logger.Debug("completion notification delivered",
				zap.String("torrent_id", payload.Torrent.ID),
				zap.String("user_id", payload.Torrent.UserID))
		}
		return nil
	}
}
