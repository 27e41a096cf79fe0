package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/modules/calendar"
	"github.com/vipin760/hand-pass-BE/internal/modules/events"
	"github.com/vipin760/hand-pass-BE/internal/modules/users"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

const dateLayout = "2006-01-02"

// ErrCalendarNotConfigured is returned by every reconciliation
// operation when no work calendar is active.
var ErrCalendarNotConfigured = apperrors.New(apperrors.ErrCodeNotConfigured, "Attendance calendar not configured")

// CalendarProvider supplies the active work calendar and holidays.
// Satisfied by calendar.Service.
type CalendarProvider interface {
	GetActive(ctx context.Context) (*calendar.WorkCalendar, error)
	HolidaysByDate(ctx context.Context, from, to string) (map[string]*calendar.Holiday, error)
}

// PunchSource supplies first-punch lookups from the access log.
// Satisfied by events.Store.
type PunchSource interface {
	EarliestPunchForUserOnDate(ctx context.Context, userID, date string) (time.Time, error)
	EarliestPunchesInRange(ctx context.Context, userID, from, to string) (map[string]time.Time, error)
	EarliestPunchesForDate(ctx context.Context, date string) (map[string]time.Time, error)
	MissedPunchUsers(ctx context.Context, date string, cutoff time.Time, excludedRoles []string) ([]*events.AbsentUser, error)
}

// UserSource lists the users that appear on attendance reports.
// Satisfied by users.Service.
type UserSource interface {
	ListActiveAttendees(ctx context.Context, excludedRoles []string) ([]*users.User, error)
}

// Service derives attendance on demand. Nothing is persisted: every
// report is recomputed from the access log, the active calendar and
// the holiday table, so a late-arriving scan is reflected the next
// time the same day is queried.
type Service struct {
	cfg       config.AttendanceConfig
	calendars CalendarProvider
	punches   PunchSource
	users     UserSource
	validator *validator.Validator
	metrics   *observability.Metrics
	logger    *observability.Logger
}

func NewService(
	cfg config.AttendanceConfig,
	calendars CalendarProvider,
	punches PunchSource,
	users UserSource,
	validator *validator.Validator,
	metrics *observability.Metrics,
	logger *observability.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		calendars: calendars,
		punches:   punches,
		users:     users,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// DayStatusFor reconciles a single (user, date) pair. Precedence:
// weekly off, then holiday, then absent, then present. Lateness is
// only meaningful on present days.
func (s *Service) DayStatusFor(ctx context.Context, q DayQuery) (*DayRecord, error) {
	cal, err := s.activeCalendar(ctx)
	if err != nil {
		return nil, err
	}

	holidays, err := s.calendars.HolidaysByDate(ctx, q.Date, q.Date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch holidays")
	}

	var punch *time.Time
	at, err := s.punches.EarliestPunchForUserOnDate(ctx, q.UserID, q.Date)
	if err != nil && err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch punches")
	}
	if err == nil {
		punch = &at
	}

	rec := s.deriveDay(cal, holidays, q.Date, punch)
	return &rec, nil
}

// Summary reconciles every day in [from, to] for one user and
// aggregates the counts. AttendanceRate is present over working days
// and zero when the range has no working days at all.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (*RangeSummary, error) {
	from, err := time.ParseInLocation(dateLayout, q.From, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "Invalid from date")
	}
	to, err := time.ParseInLocation(dateLayout, q.To, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "Invalid to date")
	}
	if to.Before(from) {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "Range end precedes range start")
	}

	cal, err := s.activeCalendar(ctx)
	if err != nil {
		return nil, err
	}

	holidays, err := s.calendars.HolidaysByDate(ctx, q.From, q.To)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch holidays")
	}
	punches, err := s.punches.EarliestPunchesInRange(ctx, q.UserID, q.From, q.To)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch punches")
	}

	summary := &RangeSummary{
		UserID: q.UserID,
		From:   q.From,
		To:     q.To,
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		var punch *time.Time
		if at, ok := punches[date]; ok {
			punch = &at
		}

		rec := s.deriveDay(cal, holidays, date, punch)
		summary.Days = append(summary.Days, rec)

		switch rec.Status {
		case StatusWeekOff:
			summary.WeekOffs++
		case StatusHoliday:
			summary.Holidays++
		case StatusAbsent:
			summary.WorkingDays++
			summary.Absent++
		case StatusPresent:
			summary.WorkingDays++
			summary.Present++
			if rec.Late {
				summary.LateDays++
			}
		}
	}

	if summary.WorkingDays > 0 {
		summary.AttendanceRate = float64(summary.Present) / float64(summary.WorkingDays)
	}
	return summary, nil
}

// Sheet reconciles one date for every active user outside the excluded
// roles. On a week off or holiday the day-level status is set and every
// entry carries it.
func (s *Service) Sheet(ctx context.Context, q SheetQuery) (*DailySheet, error) {
	cal, err := s.activeCalendar(ctx)
	if err != nil {
		return nil, err
	}

	holidays, err := s.calendars.HolidaysByDate(ctx, q.Date, q.Date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch holidays")
	}
	attendees, err := s.users.ListActiveAttendees(ctx, s.cfg.ExcludedRoles)
	if err != nil {
		return nil, err
	}
	punches, err := s.punches.EarliestPunchesForDate(ctx, q.Date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch punches")
	}

	sheet := &DailySheet{Date: q.Date, Entries: make([]SheetEntry, 0, len(attendees))}
	if dayStatus, ok := s.nonWorkingStatus(cal, holidays, q.Date); ok {
		sheet.Status = dayStatus
	}

	for _, u := range attendees {
		var punch *time.Time
		if at, ok := punches[u.ID]; ok {
			punch = &at
		}
		rec := s.deriveDay(cal, holidays, q.Date, punch)
		sheet.Entries = append(sheet.Entries, SheetEntry{
			UserID:     u.ID,
			Name:       u.Name,
			Status:     rec.Status,
			Late:       rec.Late,
			FirstPunch: rec.FirstPunch,
		})
	}
	return sheet, nil
}

// MissedPunchIns builds the notification batch for the daily trigger.
// A nil batch means there is nothing to send: the date is a week off,
// a holiday, or nobody missed their punch-in.
func (s *Service) MissedPunchIns(ctx context.Context, date string) (*NotificationBatch, error) {
	cal, err := s.activeCalendar(ctx)
	if err != nil {
		return nil, err
	}

	holidays, err := s.calendars.HolidaysByDate(ctx, date, date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch holidays")
	}
	if _, ok := s.nonWorkingStatus(cal, holidays, date); ok {
		return nil, nil
	}

	cutoff, err := s.startInstant(cal, date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid calendar start time")
	}

	missed, err := s.punches.MissedPunchUsers(ctx, date, cutoff, s.cfg.ExcludedRoles)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch missed punch-ins")
	}

	s.metrics.MissedPunchUsers.Observe(float64(len(missed)))
	if len(missed) == 0 {
		return nil, nil
	}

	batch := &NotificationBatch{
		Date:    date,
		Absent:  make([]Absentee, 0, len(missed)),
		FiredAt: time.Now().UTC(),
	}
	for _, m := range missed {
		batch.Absent = append(batch.Absent, Absentee{
			UserID: m.UserID,
			Name:   m.Name,
			Email:  m.Email,
		})
	}
	return batch, nil
}

func (s *Service) activeCalendar(ctx context.Context) (*calendar.WorkCalendar, error) {
	cal, err := s.calendars.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotConfigured
	}
	return cal, nil
}

// nonWorkingStatus reports whether the date is a week off or holiday.
// Weekly off takes precedence over a holiday that lands on the same
// date.
func (s *Service) nonWorkingStatus(cal *calendar.WorkCalendar, holidays map[string]*calendar.Holiday, date string) (DayStatus, bool) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return "", false
	}
	if cal.IsWeeklyOff(d.Weekday()) {
		return StatusWeekOff, true
	}
	if _, ok := holidays[date]; ok {
		return StatusHoliday, true
	}
	return "", false
}

func (s *Service) deriveDay(cal *calendar.WorkCalendar, holidays map[string]*calendar.Holiday, date string, punch *time.Time) DayRecord {
	rec := DayRecord{Date: date}

	if status, ok := s.nonWorkingStatus(cal, holidays, date); ok {
		rec.Status = status
		if status == StatusHoliday {
			rec.Holiday = holidays[date].Name
		}
		return rec
	}
	if punch == nil {
		rec.Status = StatusAbsent
		return rec
	}

	rec.Status = StatusPresent
	rec.FirstPunch = punch
	rec.Late = s.isLate(cal, date, *punch)
	return rec
}

// startInstant resolves the calendar start time on the given date to a
// local instant.
func (s *Service) startInstant(cal *calendar.WorkCalendar, date string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	hour, min, sec, err := cal.StartClock()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, sec, 0, time.Local), nil
}

// isLate compares the first punch against the calendar start time on
// that date. Grace minutes are only added when the deployment opts in.
func (s *Service) isLate(cal *calendar.WorkCalendar, date string, punch time.Time) bool {
	threshold, err := s.startInstant(cal, date)
	if err != nil {
		return false
	}
	if s.cfg.ApplyGrace {
		threshold = threshold.Add(time.Duration(cal.GraceMinutes) * time.Minute)
	}
	return punch.After(threshold)
}
