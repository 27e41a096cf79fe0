package devices

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	dberrors "github.com/vipin760/hand-pass-BE/internal/infrastructure/database/errors"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

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

func (s *Service) Register(ctx context.Context, req RegisterDeviceRequest) (*Device, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate device ID")
	}

	device := &Device{
		ID:        id.String(),
		SN:        req.SN,
		Name:      req.Name,
		Location:  req.Location,
		Online:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, device); err != nil {
		if dberrors.IsDuplicateKey(err) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "A device with this serial number already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to register device")
	}

	s.logger.Info(ctx, "Device registered",
		s.logger.Field("device_sn", device.SN),
		s.logger.Field("device_id", device.ID),
	)
	return device, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Device, error) {
	device, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch device")
	}
	return device, nil
}

func (s *Service) List(ctx context.Context, q ListDevicesQuery) ([]*Device, error) {
	list, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list devices")
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateDeviceRequest) (*Device, error) {
	device, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch device")
	}

	if req.Name != "" {
		device.Name = req.Name
	}
	if req.Location != "" {
		device.Location = req.Location
	}

	if err := s.store.Update(ctx, device); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to update device")
	}
	return device, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to delete device")
	}
	return nil
}

// Heartbeat marks the device online and stamps its last seen time.
// Unknown serial numbers are rejected so a misconfigured scanner cannot
// create phantom devices.
func (s *Service) Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResponse, error) {
	seenAt := time.Now().UTC()
	err := s.store.RecordHeartbeat(ctx, req.SN, seenAt)
	if err != nil {
		if err == sql.ErrNoRows {
			s.metrics.DeviceHeartbeatsTotal.WithLabelValues("unknown_device").Inc()
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Device not registered")
		}
		s.metrics.DeviceHeartbeatsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to record heartbeat")
	}

	s.metrics.DeviceHeartbeatsTotal.WithLabelValues("ok").Inc()
	return &HeartbeatResponse{
		SN:     req.SN,
		Online: true,
		SeenAt: seenAt,
	}, nil
}

// SweepStale marks devices offline whose heartbeat is older than
// staleAfter, and refreshes the online devices gauge.
func (s *Service) SweepStale(ctx context.Context, staleAfter time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-staleAfter)
	n, err := s.store.MarkOfflineStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.metrics.DevicesMarkedOffline.Add(float64(n))
	}
	if online, err := s.store.CountOnline(ctx); err == nil {
		s.metrics.DevicesOnline.Set(float64(online))
	}
	return n, nil
}
