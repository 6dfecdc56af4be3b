package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/scheduler"
)

// RescheduleService управляет интерактивным перемещением приёмов поверх
// конечного автомата scheduler.DragSession. Hover — чистое чтение;
// единственный переход с персистентностью — Commit.
type RescheduleService struct {
	appointments AppointmentStore
	activity     ActivityStore
	logger       *zap.Logger

	// allowSwap разрешает обмен слотами при конфликте. При false commit в
	// занятый слот завершается ConflictUnresolvedError (строгий режим).
	allowSwap bool

	now func() time.Time
}

// NewRescheduleService создаёт новый сервис перемещения
func NewRescheduleService(
	appointments AppointmentStore,
	activity ActivityStore,
	allowSwap bool,
	logger *zap.Logger,
) *RescheduleService {
	return &RescheduleService{
		appointments: appointments,
		activity:     activity,
		allowSwap:    allowSwap,
		logger:       logger,
		now:          time.Now,
	}
}

// MoveResult — итог зафиксированного перемещения
type MoveResult struct {
	Moved       *model.Appointment
	SwappedWith *model.Appointment // nil при обычном перемещении
}

// BeginMove захватывает приём для перемещения. Без персистентности.
func (s *RescheduleService) BeginMove(ctx context.Context, appointmentID uuid.UUID) (*scheduler.DragSession, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, &StorageError{Op: "get appointment", Err: err}
	}
	if appt == nil {
		return nil, &ValidationError{Field: "appointment_id", Reason: "appointment not found"}
	}

	session := &scheduler.DragSession{}
	if err := session.Begin(appt); err != nil {
		return nil, err
	}
	return session, nil
}

// Hover вычисляет окно-кандидат и сообщает о конфликте для живой подсветки.
// Повторяемо, ничего не изменяет.
func (s *RescheduleService) Hover(ctx context.Context, session *scheduler.DragSession, targetDate time.Time, targetHour, targetMinute int) (scheduler.HoverResult, error) {
	held := session.Held()
	if held == nil {
		return scheduler.HoverResult{}, scheduler.ErrNoHeldAppointment
	}

	target := scheduler.TargetAt(targetDate, targetHour, targetMinute)
	window := scheduler.NewWindow(target, held.DurationMinutes)

	existing, err := s.appointments.QueryOverlapping(ctx, held.DoctorID, window.Start, window.End)
	if err != nil {
		return scheduler.HoverResult{}, &StorageError{Op: "query appointments", Err: err}
	}

	return session.Hover(target, existing)
}

// CommitMove фиксирует перемещение захваченного приёма на target.
//
// Слот в прошлом отклоняется с PastSlotError без изменения состояния.
// Конфликт с приёмом X разрешается обменом: захваченный приём получает
// целевое окно со своей длительностью, X — исходное время захваченного
// приёма со своей собственной длительностью; оба обновления атомарны.
// Без конфликта применяется одиночное неатомарное обновление окна.
func (s *RescheduleService) CommitMove(ctx context.Context, session *scheduler.DragSession, targetDate time.Time, targetHour, targetMinute int) (*MoveResult, error) {
	held := session.Held()
	if held == nil {
		return nil, scheduler.ErrNoHeldAppointment
	}

	target := scheduler.TargetAt(targetDate, targetHour, targetMinute)
	now := s.now()
	if target.Before(now) {
		return nil, &PastSlotError{Target: target, Now: now}
	}

	window := scheduler.NewWindow(target, held.DurationMinutes)
	existing, err := s.appointments.QueryOverlapping(ctx, held.DoctorID, window.Start, window.End)
	if err != nil {
		return nil, &StorageError{Op: "query appointments", Err: err}
	}

	_, conflict := scheduler.HasConflict(target, held.DurationMinutes, existing, held.ID)

	if conflict != nil {
		return s.commitSwap(ctx, session, held, conflict, window)
	}

	if err := s.appointments.UpdateWindow(ctx, held.ID, window.Start, window.End); err != nil {
		return nil, &StorageError{Op: "update appointment window", Err: err}
	}

	s.recordActivity(ctx, held.DoctorID, model.ActivityRescheduled,
		fmt.Sprintf("Cita reprogramada para %s", window.Start.Format("02/01/2006 15:04")))

	held.SetWindow(window.Start)
	session.Cancel()

	s.logger.Info("Appointment moved",
		zap.String("appointment_id", held.ID.String()),
		zap.Time("new_start", window.Start),
	)

	return &MoveResult{Moved: held}, nil
}

// CancelMove сбрасывает захват без обращений к хранилищу
func (s *RescheduleService) CancelMove(session *scheduler.DragSession) {
	session.Cancel()
}

func (s *RescheduleService) commitSwap(ctx context.Context, session *scheduler.DragSession, held, other *model.Appointment, window scheduler.Window) (*MoveResult, error) {
	if !s.allowSwap {
		return nil, &ConflictUnresolvedError{ConflictingID: other.ID}
	}

	originalStart := held.StartTime
	otherWindow := scheduler.NewWindow(originalStart, other.DurationMinutes)

	// Обе строки в одной транзакции с оптимистической защитой: гонка двух
	// одновременных перемещений не должна дать двойное бронирование.
	err := s.appointments.AtomicSwap(ctx,
		SwapUpdate{ID: held.ID, ExpectedStart: held.StartTime, NewStart: window.Start, NewEnd: window.End},
		SwapUpdate{ID: other.ID, ExpectedStart: other.StartTime, NewStart: otherWindow.Start, NewEnd: otherWindow.End},
	)
	if err != nil {
		return nil, &StorageError{Op: "swap appointments", Err: err}
	}

	s.recordActivity(ctx, held.DoctorID, model.ActivitySwapped,
		fmt.Sprintf("Citas intercambiadas: %s ↔ %s", held.ID, other.ID))

	held.SetWindow(window.Start)
	other.SetWindow(originalStart)
	session.Cancel()

	s.logger.Info("Appointments swapped",
		zap.String("appointment_id", held.ID.String()),
		zap.String("swapped_with", other.ID.String()),
	)

	return &MoveResult{Moved: held, SwappedWith: other}, nil
}

func (s *RescheduleService) recordActivity(ctx context.Context, doctorID uuid.UUID, activityType, description string) {
	err := s.activity.Record(ctx, &model.ActivityRecord{
		DoctorID:    doctorID,
		Type:        activityType,
		Description: description,
	})
	if err != nil {
		s.logger.Warn("Failed to write activity record",
			zap.String("doctor_id", doctorID.String()),
			zap.String("type", activityType),
			zap.Error(err),
		)
	}
}
