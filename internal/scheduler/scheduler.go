// Package scheduler runs the daily backup job and delivers archives.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"mindvault/internal/archive"
	"mindvault/internal/intake"
)

// BackupCaption accompanies every scheduled backup document.
const BackupCaption = "💾 Daily backup"

const jobName = "daily-backup"

// Sender is the interface for sending Telegram documents.
type Sender interface {
	SendDocument(chatID int64, name string, data []byte, caption string) error
}

// BackupRunner produces per-user backup outcomes and records deliveries.
type BackupRunner interface {
	RunScheduledBackups(ctx context.Context, handle func(intake.BackupOutcome)) error
	RecordBackup(ctx context.Context, userID string, at time.Time) error
}

// Delivery reports what happened to one user during a run.
type Delivery struct {
	UserID string             `json:"user_id"`
	Kind   intake.OutcomeKind `json:"outcome"`
	Sent   bool               `json:"sent"`
	Error  string             `json:"error,omitempty"`
}

// Scheduler triggers backups on a cron schedule.
type Scheduler struct {
	svc      BackupRunner
	sender   Sender
	schedule string
	log      *slog.Logger
	now      func() time.Time
	pause    time.Duration

	// runs is held for a whole RunOnce so cron and manual triggers never overlap.
	runs sync.Mutex
}

// New creates a Scheduler for the given cron expression (UTC, five fields).
func New(svc BackupRunner, sender Sender, schedule string, log *slog.Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		sender:   sender,
		schedule: schedule,
		log:      log.With("component", "scheduler"),
		now:      time.Now,
		pause:    50 * time.Millisecond,
	}
}

// SetPause overrides the delay between two deliveries.
func (s *Scheduler) SetPause(d time.Duration) {
	s.pause = d
}

// Run schedules the backup job and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	cs, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(s.log),
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	job, err := cs.NewJob(
		gocron.CronJob(s.schedule, false),
		gocron.NewTask(func() { s.RunOnce(ctx) }),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cs.Shutdown()
		return fmt.Errorf("schedule %s: %w", jobName, err)
	}

	cs.Start()
	if next, err := job.NextRun(); err == nil {
		s.log.Info("backup job scheduled", "cron", s.schedule, "next_run", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	if err := cs.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// RunOnce builds and delivers backups for every eligible user. Each
// archive is sent before the next user's is built.
func (s *Scheduler) RunOnce(ctx context.Context) []Delivery {
	s.runs.Lock()
	defer s.runs.Unlock()

	var deliveries []Delivery
	sent := 0
	err := s.svc.RunScheduledBackups(ctx, func(o intake.BackupOutcome) {
		d := Delivery{UserID: o.UserID, Kind: o.Kind}
		switch o.Kind {
		case intake.OutcomeBuilt:
			if err := s.deliver(ctx, o.UserID, o.Archive); err != nil {
				s.log.Error("deliver backup", "user_id", o.UserID, "error", err)
				d.Error = err.Error()
			} else {
				d.Sent = true
				sent++
			}
			if s.pause > 0 {
				time.Sleep(s.pause)
			}
		case intake.OutcomeFailed:
			if o.Err != nil {
				d.Error = o.Err.Error()
			}
		}
		deliveries = append(deliveries, d)
	})
	if err != nil {
		s.log.Error("run scheduled backups", "error", err)
	}

	s.log.Info("backup run finished", "users", len(deliveries), "sent", sent)
	return deliveries
}

func (s *Scheduler) deliver(ctx context.Context, userID string, a *archive.Archive) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("chat id from user id %q: %w", userID, err)
	}

	data, err := a.Zip()
	if err != nil {
		return fmt.Errorf("zip archive: %w", err)
	}
	if err := s.sender.SendDocument(chatID, a.Name(archive.LabelBackup), data, BackupCaption); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	if err := s.svc.RecordBackup(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("record backup: %w", err)
	}
	return nil
}
