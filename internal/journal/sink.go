package journal

import (
	"context"
	"time"

	"github.com/nerrad567/posbridge/internal/events"
)

// Sink writes command events into a Repository.
type Sink struct {
	repo Repository
}

// NewSink returns an events.Sink backed by repo.
func NewSink(repo Repository) *Sink {
	return &Sink{repo: repo}
}

// Name implements events.Sink.
func (s *Sink) Name() string { return "journal" }

// Handle implements events.Sink.
func (s *Sink) Handle(ctx context.Context, ev events.CommandEvent) error {
	return s.repo.Create(ctx, &Entry{
		ID:           ev.ID,
		ConnectionID: ev.ConnectionID,
		Command:      ev.Command,
		DeviceID:     ev.DeviceID,
		Status:       ev.Status,
		Message:      ev.Message,
		DurationMS:   ev.DurationMillis(),
		CreatedAt:    ev.Timestamp,
	})
}

// PruneOlderThan removes entries older than days before now. Zero or
// negative days keeps everything.
func PruneOlderThan(ctx context.Context, repo Repository, days int, now time.Time) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	return repo.Prune(ctx, now.Add(-time.Duration(days)*24*time.Hour))
}
