package attendance

import (
	"context"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/modules/calendar"
)

// BatchBuilder produces the missed punch-in batch for a date.
// Satisfied by *Service.
type BatchBuilder interface {
	MissedPunchIns(ctx context.Context, date string) (*NotificationBatch, error)
}

// ActiveCalendarSource supplies the active work calendar. Satisfied by
// calendar.Service.
type ActiveCalendarSource interface {
	GetActive(ctx context.Context) (*calendar.WorkCalendar, error)
}

// Trigger fires the missed punch-in check once per day at the active
// calendar's start time. The timer is always scheduled forward: if the
// process starts after today's cutoff the first firing is tomorrow,
// never a late catch-up for today. Without an active calendar the
// trigger idles and polls until one appears or Reload is called.
type Trigger struct {
	cfg       config.AttendanceConfig
	calendars ActiveCalendarSource
	builder   BatchBuilder
	notifier  Notifier
	metrics   *observability.Metrics
	logger    *observability.Logger

	reload    chan struct{}
	lastFired string

	// now is replaceable in tests
	now func() time.Time
}

func NewTrigger(
	cfg config.AttendanceConfig,
	calendars ActiveCalendarSource,
	builder BatchBuilder,
	notifier Notifier,
	metrics *observability.Metrics,
	logger *observability.Logger,
) *Trigger {
	return &Trigger{
		cfg:       cfg,
		calendars: calendars,
		builder:   builder,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		reload:    make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Reload wakes the trigger so it recomputes its timer against the
// current active calendar. Safe to call from any goroutine; calls
// while a reload is already pending coalesce.
func (t *Trigger) Reload() {
	select {
	case t.reload <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (t *Trigger) Run(ctx context.Context) {
	ctx = context.WithValue(ctx, observability.JobKey, "attendance_daily_trigger")
	t.logger.Info(ctx, "Attendance daily trigger started")

	for {
		cal, err := t.calendars.GetActive(ctx)
		if err != nil {
			t.logger.Error(ctx, "Failed to load active calendar", t.logger.Field("error", err.Error()))
		}

		if cal == nil {
			if !t.waitForReload(ctx) {
				return
			}
			continue
		}

		next, ok := t.nextFireTime(t.now(), cal)
		if !ok {
			t.logger.Error(ctx, "Active calendar has an invalid start time",
				t.logger.Field("start_time", cal.StartTime))
			if !t.waitForReload(ctx) {
				return
			}
			continue
		}

		timer := time.NewTimer(next.Sub(t.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info(ctx, "Attendance daily trigger stopped")
			return
		case <-t.reload:
			timer.Stop()
		case <-timer.C:
			t.fire(ctx, next.Format(dateLayout))
		}
	}
}

// waitForReload idles until a reload, the recheck interval, or
// cancellation. Returns false when ctx is done.
func (t *Trigger) waitForReload(ctx context.Context) bool {
	timer := time.NewTimer(t.cfg.RecheckInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		t.logger.Info(ctx, "Attendance daily trigger stopped")
		return false
	case <-t.reload:
		return true
	case <-timer.C:
		return true
	}
}

// nextFireTime returns the next start-time instant strictly in the
// future. The lastFired guard keeps a same-day recompute (calendar
// swap after firing) from producing a second firing for that date.
func (t *Trigger) nextFireTime(now time.Time, cal *calendar.WorkCalendar) (time.Time, bool) {
	hour, min, sec, err := cal.StartClock()
	if err != nil {
		return time.Time{}, false
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, now.Location())
	if !next.After(now) || t.lastFired == next.Format(dateLayout) {
		next = next.AddDate(0, 0, 1)
	}
	return next, true
}

func (t *Trigger) fire(ctx context.Context, date string) {
	if t.lastFired == date {
		return
	}
	t.lastFired = date

	start := time.Now()
	batch, err := t.builder.MissedPunchIns(ctx, date)
	t.metrics.RecordBackgroundJob("attendance_daily_trigger", time.Since(start), err)

	if err != nil {
		t.logger.Error(ctx, "Missed punch-in check failed",
			t.logger.Field("date", date), t.logger.Field("error", err.Error()))
		return
	}
	if batch == nil {
		t.logger.Info(ctx, "No missed punch-ins to report", t.logger.Field("date", date))
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, t.cfg.NotifyTimeout)
	defer cancel()

	if err := t.notifier.Send(notifyCtx, batch); err != nil {
		t.logger.Error(ctx, "Missed punch-in notification failed",
			t.logger.Field("date", date), t.logger.Field("error", err.Error()))
		return
	}
	t.logger.Info(ctx, "Missed punch-in notification sent",
		t.logger.Field("date", date), t.logger.Field("count", len(batch.Absent)))
}
