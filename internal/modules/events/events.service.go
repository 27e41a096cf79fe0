package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

const deviceTimeLayout = "2006-01-02 15:04:05"

type Service struct {
	store     *Store
	validator *validator.Validator
	metrics   *observability.Metrics
	logger    *observability.Logger
}

func NewService(store *Store, validator *validator.Validator, metrics *observability.Metrics, logger *observability.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *Service) Ingest(ctx context.Context, req IngestEventRequest) (*AccessLog, error) {
	deviceTime, err := time.ParseInLocation(deviceTimeLayout, req.DeviceDateTime, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "Invalid device_date_time")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate event ID")
	}

	event := &AccessLog{
		ID:             id.String(),
		SN:             req.SN,
		UserID:         req.UserID,
		Name:           req.Name,
		PalmType:       req.PalmType,
		Status:         req.Status,
		DeviceDateTime: deviceTime,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.Create(ctx, event); err != nil {
		s.metrics.AccessEventsTotal.WithLabelValues(req.PalmType, "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to store access event")
	}

	s.metrics.AccessEventsTotal.WithLabelValues(req.PalmType, req.Status).Inc()
	s.logger.Debug(ctx, "Access event ingested",
		s.logger.Field("device_sn", event.SN),
		s.logger.Field("user_id", event.UserID),
		s.logger.Field("status", event.Status),
	)
	return event, nil
}

func (s *Service) List(ctx context.Context, q ListEventsQuery) ([]*AccessLog, error) {
	list, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list access events")
	}
	return list, nil
}
