package calendar

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
	dberrors "github.com/vipin760/hand-pass-BE/internal/infrastructure/database/errors"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

type Service struct {
	store     *Store
	tx        TxRunner
	validator *validator.Validator
	logger    *observability.Logger

	// onActivate hooks fire after a calendar activation commits. The
	// daily trigger registers here to recompute its timer.
	onActivate []func()
}

func NewService(store *Store, tx TxRunner, validator *validator.Validator, logger *observability.Logger) *Service {
	return &Service{
		store:     store,
		tx:        tx,
		validator: validator,
		logger:    logger,
	}
}

// OnActivate registers a callback invoked after calendar activation.
// Must be called during wiring, before requests are served.
func (s *Service) OnActivate(fn func()) {
	s.onActivate = append(s.onActivate, fn)
}

func (s *Service) CreateCalendar(ctx context.Context, req CreateCalendarRequest) (*WorkCalendar, error) {
	if _, _, _, err := parseClock(req.StartTime); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "Invalid start_time")
	}
	if _, _, _, err := parseClock(req.EndTime); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "Invalid end_time")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate calendar ID")
	}

	cal := &WorkCalendar{
		ID:            id.String(),
		Name:          req.Name,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		GraceMinutes:  req.GraceMinutes,
		WeeklyOffDays: req.WeeklyOffDays,
		Active:        false,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreateCalendar(ctx, cal); err != nil {
		if dberrors.IsDuplicateKey(err) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "A calendar with this name already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to create calendar")
	}
	return cal, nil
}

func (s *Service) ListCalendars(ctx context.Context) ([]*WorkCalendar, error) {
	list, err := s.store.ListCalendars(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list calendars")
	}
	return list, nil
}

// GetActive returns the active calendar, or nil when none is configured.
func (s *Service) GetActive(ctx context.Context) (*WorkCalendar, error) {
	cal, err := s.store.GetActiveCalendar(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch active calendar")
	}
	return cal, nil
}

// Activate makes the calendar the single active one and notifies
// registered listeners.
func (s *Service) Activate(ctx context.Context, id string) error {
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		return ActivateCalendarTx(ctx, tx, id)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to activate calendar")
	}

	s.logger.Info(ctx, "Work calendar activated", s.logger.Field("calendar_id", id))
	for _, fn := range s.onActivate {
		fn()
	}
	return nil
}

func (s *Service) DeleteCalendar(ctx context.Context, id string) error {
	if err := s.store.DeleteCalendar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.New(apperrors.ErrCodeConflict, "Calendar not found or still active")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to delete calendar")
	}
	return nil
}

func (s *Service) CreateHoliday(ctx context.Context, req CreateHolidayRequest) (*Holiday, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate holiday ID")
	}

	holiday := &Holiday{
		ID:        id.String(),
		Name:      req.Name,
		Date:      req.Date,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateHoliday(ctx, holiday); err != nil {
		if dberrors.IsDuplicateKey(err) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "A holiday already exists on this date")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to create holiday")
	}
	return holiday, nil
}

func (s *Service) ListHolidays(ctx context.Context, from, to string) ([]*Holiday, error) {
	list, err := s.store.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list holidays")
	}
	return list, nil
}

// HolidaysByDate returns holidays in [from, to] keyed by date string.
func (s *Service) HolidaysByDate(ctx context.Context, from, to string) (map[string]*Holiday, error) {
	list, err := s.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	result := make(map[string]*Holiday, len(list))
	for _, h := range list {
		result[h.Date] = h
	}
	return result, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	if err := s.store.DeleteHoliday(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to delete holiday")
	}
	return nil
}
