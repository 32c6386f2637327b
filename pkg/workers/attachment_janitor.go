package workers

import (
	"context"
	"log/slog"
	"time"
)

type AttachmentSweeper interface {
	Sweep() int
}

// attachmentJanitor periodically drops expired pending attachments so
// sessions that upload a file and never send a follow-up message do not
// grow the store forever.
type attachmentJanitor struct {
	repo     AttachmentSweeper
	interval time.Duration
}

func NewAttachmentJanitor(repo AttachmentSweeper, interval time.Duration) (*attachmentJanitor, error) {
	return &attachmentJanitor{
		repo:     repo,
		interval: interval,
	}, nil
}

func (a *attachmentJanitor) Name() string { return "attachment_janitor_worker" }

func (a *attachmentJanitor) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", a.Name(), "interval", a.interval)
	defer slog.Info("Worker stopped", "name", a.Name())

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if dropped := a.repo.Sweep(); dropped > 0 {
				slog.Info("Dropped expired attachments", "count", dropped)
			}
		}
	}
}
