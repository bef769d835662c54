package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultSchedule = "0 3 * * *"

// Purger is the part of the event service the worker drives.
type Purger interface {
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Event, error)
}

type Config struct {
	Schedule   string
	Retention  time.Duration
	RunTimeout time.Duration
	RunOnStart bool
}

// EventCleanupWorker purges completed events on a cron schedule and once at
// start. Runs never overlap and a failing run never stops the schedule.
type EventCleanupWorker struct {
	purger Purger
	cfg    Config
	cron   *cron.Cron
	now    func() time.Time

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup

	// held for the duration of a purge
	runMu sync.Mutex
}

func NewEventCleanupWorker(purger Purger, cfg Config) *EventCleanupWorker {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}

	return &EventCleanupWorker{
		purger: purger,
		cfg:    cfg,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		now: time.Now,
	}
}

func (w *EventCleanupWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("cleanup worker already started")
	}

	if _, err := w.cron.AddFunc(w.cfg.Schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", w.cfg.Schedule, err)
	}

	if w.cfg.RunOnStart {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.RunOnce(ctx)
		}()
	}

	w.cron.Start()
	w.running = true

	logrus.WithFields(logrus.Fields{
		"schedule":  w.cfg.Schedule,
		"retention": w.cfg.Retention.String(),
	}).Info("Event cleanup worker started")
	return nil
}

// Stop waits for an in-flight run to finish.
func (w *EventCleanupWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	logrus.Info("Event cleanup worker stopping...")
	<-w.cron.Stop().Done()
	w.wg.Wait()
	logrus.Info("Event cleanup worker stopped")
}

// RunOnce performs a single purge. Errors and panics are logged and swallowed.
// A call made while another purge is in flight returns nil without purging.
func (w *EventCleanupWorker) RunOnce(ctx context.Context) (deleted []*entity.Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Event cleanup panicked: %v", r)
			deleted = nil
		}
	}()

	if ctx.Err() != nil {
		return nil
	}

	if !w.runMu.TryLock() {
		logrus.Warn("Event cleanup already running, skipping")
		return nil
	}
	defer w.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	cutoff := w.now().Add(-w.cfg.Retention)
	logrus.WithField("cutoff", cutoff).Info("Starting completed events cleanup")

	deleted, err := w.purger.PurgeCompletedBefore(ctx, cutoff)
	if err != nil {
		logrus.Errorf("Failed to purge completed events: %v", err)
		return nil
	}

	if len(deleted) == 0 {
		logrus.Info("No completed events found for cleanup")
		return deleted
	}

	logrus.WithField("deleted", len(deleted)).Infof("Deleted %d completed events", len(deleted))
	for _, event := range deleted {
		logrus.WithFields(logrus.Fields{
			"event_id": event.ID,
			"title":    event.Title,
		}).Debug("Deleted completed event")
	}
	return deleted
}
