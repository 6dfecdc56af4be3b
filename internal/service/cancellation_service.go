package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/model"
)

// CancelScope определяет, какие приёмы серии затрагивает отмена
type CancelScope string

const (
	ScopeAll           CancelScope = "all"
	ScopeThisAndFuture CancelScope = "this_and_future"
	ScopeThisOnly      CancelScope = "this_only"
)

// CancellationService отменяет серию целиком или её часть.
// Отмены независимы по строкам и не требуют межстрочных блокировок.
type CancellationService struct {
	series       SeriesStore
	appointments AppointmentStore
	activity     ActivityStore
	logger       *zap.Logger
}

// NewCancellationService создаёт новый сервис отмен
func NewCancellationService(
	series SeriesStore,
	appointments AppointmentStore,
	activity ActivityStore,
	logger *zap.Logger,
) *CancellationService {
	return &CancellationService{
		series:       series,
		appointments: appointments,
		activity:     activity,
		logger:       logger,
	}
}

// CancelSeries отменяет приёмы серии в заданном объёме.
//
//   - all: серия деактивируется, все pendiente-приёмы переходят в cancelada;
//     приёмы в терминальных статусах не трогаются.
//   - this_and_future: отменяются pendiente-приёмы, начиная со времени
//     якорного приёма; сама серия остаётся активной.
//   - this_only: отменяется ровно якорный приём, без фильтра по статусу —
//     эта асимметрия с остальными объёмами намеренная.
//
// Для this_only и this_and_future якорь обязателен. Повторная отмена уже
// отменённого приёма — no-op, не ошибка.
func (s *CancellationService) CancelSeries(
	ctx context.Context,
	seriesID uuid.UUID,
	scope CancelScope,
	anchorAppointmentID *uuid.UUID,
	reason string,
) error {
	if seriesID == uuid.Nil {
		return &ValidationError{Field: "series_id", Reason: "required"}
	}

	var cancelled int64

	switch scope {
	case ScopeAll:
		if err := s.series.SetActive(ctx, seriesID, false); err != nil {
			return &StorageError{Op: "deactivate series", Err: err}
		}
		n, err := s.appointments.CancelPendingBySeries(ctx, seriesID)
		if err != nil {
			return &StorageError{Op: "cancel series appointments", Err: err}
		}
		cancelled = n

	case ScopeThisAndFuture:
		anchor, err := s.resolveAnchor(ctx, scope, anchorAppointmentID)
		if err != nil {
			return err
		}
		n, err := s.appointments.CancelPendingStartingAt(ctx, seriesID, anchor.StartTime)
		if err != nil {
			return &StorageError{Op: "cancel future appointments", Err: err}
		}
		cancelled = n

	case ScopeThisOnly:
		anchor, err := s.resolveAnchor(ctx, scope, anchorAppointmentID)
		if err != nil {
			return err
		}
		// Без фильтра по статусу: this_only отменяет якорь каким бы он ни был
		if err := s.appointments.UpdateStatus(ctx, anchor.ID, model.StatusCancelada); err != nil {
			return &StorageError{Op: "cancel appointment", Err: err}
		}
		cancelled = 1

	default:
		return &ValidationError{Field: "scope", Reason: fmt.Sprintf("unknown scope %q", scope)}
	}

	description := fmt.Sprintf("Serie %s: %d citas canceladas (%s)", seriesID, cancelled, scope)
	if reason != "" {
		description += ": " + reason
	}
	s.recordActivity(ctx, seriesID, description)

	s.logger.Info("Series cancellation applied",
		zap.String("series_id", seriesID.String()),
		zap.String("scope", string(scope)),
		zap.Int64("cancelled", cancelled),
	)

	return nil
}

func (s *CancellationService) resolveAnchor(ctx context.Context, scope CancelScope, anchorID *uuid.UUID) (*model.Appointment, error) {
	if anchorID == nil || *anchorID == uuid.Nil {
		return nil, &ValidationError{
			Field:  "anchor_appointment_id",
			Reason: fmt.Sprintf("required for scope %q", scope),
		}
	}

	anchor, err := s.appointments.GetByID(ctx, *anchorID)
	if err != nil {
		return nil, &StorageError{Op: "get anchor appointment", Err: err}
	}
	if anchor == nil {
		return nil, &ValidationError{Field: "anchor_appointment_id", Reason: "appointment not found"}
	}

	return anchor, nil
}

func (s *CancellationService) recordActivity(ctx context.Context, seriesID uuid.UUID, description string) {
	series, err := s.series.GetByID(ctx, seriesID)
	if err != nil || series == nil {
		s.logger.Warn("Skipping cancellation audit: series lookup failed",
			zap.String("series_id", seriesID.String()),
			zap.Error(err),
		)
		return
	}

	err = s.activity.Record(ctx, &model.ActivityRecord{
		DoctorID:    series.DoctorID,
		Type:        model.ActivitySeriesCancelled,
		Description: description,
	})
	if err != nil {
		s.logger.Warn("Failed to write activity record",
			zap.String("series_id", seriesID.String()),
			zap.Error(err),
		)
	}
}
