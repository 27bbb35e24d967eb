// Package monitoring runs the periodic activity digest.
package monitoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/taskloft/taskloft-be/internal/events"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
)

// Broadcaster delivers a digest summary to every connected event client.
type Broadcaster interface {
	BroadcastAll(data []byte)
}

// Summary is the digest payload: row counts, not host metrics.
type Summary struct {
	Users          int64     `json:"users"`
	PendingTasks   int64     `json:"pendingTasks"`
	CompletedTasks int64     `json:"completedTasks"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Digest periodically logs and broadcasts store totals on a cron schedule.
type Digest struct {
	store    store.Store
	hub      Broadcaster
	schedule cron.Schedule
	log      zerolog.Logger
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time
}

// NewDigest creates a digest job. spec is a standard cron expression
// (descriptors like @hourly are accepted).
func NewDigest(st store.Store, hub Broadcaster, spec string, log zerolog.Logger) (*Digest, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &Digest{
		store:    st,
		hub:      hub,
		schedule: schedule,
		log:      log,
		done:     make(chan bool),
	}, nil
}

// Run starts the digest loop. The loop ticks once a minute and fires when
// the schedule's next run time has passed.
func (d *Digest) Run() {
	d.log.Info().Msg("Starting activity digest")
	d.nextRun = d.schedule.Next(time.Now())
	d.ticker = time.NewTicker(1 * time.Minute)
	defer d.ticker.Stop()

	for {
		select {
		case <-d.done:
			d.log.Info().Msg("Stopping activity digest")
			return
		case <-d.ticker.C:
			now := time.Now()
			if now.After(d.nextRun) {
				d.runOnce()
				d.nextRun = d.schedule.Next(now)
			}
		}
	}
}

// Stop halts the digest loop.
func (d *Digest) Stop() {
	d.done <- true
}

func (d *Digest) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := d.store.CountUsers(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("Digest: failed to count users")
		return
	}
	tasks, err := d.store.CountTasksByStatus(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("Digest: failed to count tasks")
		return
	}

	summary := Summary{
		Users:          users,
		PendingTasks:   tasks[models.StatusPending],
		CompletedTasks: tasks[models.StatusCompleted],
		GeneratedAt:    time.Now().UTC(),
	}
	d.log.Info().
		Int64("users", summary.Users).
		Int64("pending_tasks", summary.PendingTasks).
		Int64("completed_tasks", summary.CompletedTasks).
		Msg("Activity digest")

	if d.hub != nil {
		data, err := json.Marshal(events.Message{Action: "digest", Payload: summary})
		if err != nil {
			d.log.Error().Err(err).Msg("Digest: failed to encode summary")
			return
		}
		d.hub.BroadcastAll(data)
	}
}
