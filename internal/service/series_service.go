package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/recurrence"
)

// SeriesService создаёт серии приёмов и материализует их в конкретные приёмы.
//
// Консистентность создания намеренно слабая: вставка серии, пакетная вставка
// приёмов и обновление счётчика — три отдельные записи, не одна транзакция.
// Частичный отказ вставки даёт частичный счётчик, а не откат серии.
type SeriesService struct {
	series       SeriesStore
	appointments AppointmentStore
	activity     ActivityStore
	logger       *zap.Logger

	horizonMonths int
	hardLimit     int
}

// NewSeriesService создаёт новый сервис серий
func NewSeriesService(
	series SeriesStore,
	appointments AppointmentStore,
	activity ActivityStore,
	horizonMonths int,
	hardLimit int,
	logger *zap.Logger,
) *SeriesService {
	return &SeriesService{
		series:        series,
		appointments:  appointments,
		activity:      activity,
		horizonMonths: horizonMonths,
		hardLimit:     hardLimit,
		logger:        logger,
	}
}

// CreateSeriesResult — итог создания серии. Warning непустой, если серия
// сохранена, но приёмы не созданы.
type CreateSeriesResult struct {
	SeriesID            uuid.UUID
	AppointmentsCreated int
	Warning             string
}

// CreateSeries сохраняет серию и создаёт по приёму на каждую дату правила.
//
// Если правило не породило ни одной даты, серия сохраняется (не откатывается),
// а вызов завершается успешно с предупреждением — это поведение продукта,
// а не недочёт.
func (s *SeriesService) CreateSeries(
	ctx context.Context,
	doctorID uuid.UUID,
	patientRef, officeRef string,
	rule recurrence.Rule,
	template model.AppointmentTemplate,
	startDate time.Time,
) (*CreateSeriesResult, error) {
	if doctorID == uuid.Nil {
		return nil, &ValidationError{Field: "doctor_id", Reason: "required"}
	}
	if patientRef == "" {
		return nil, &ValidationError{Field: "patient_ref", Reason: "required"}
	}
	if template.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}
	if err := rule.Validate(); err != nil {
		return nil, &ValidationError{Field: "rule", Reason: err.Error()}
	}

	series := &model.Series{
		ID:         uuid.New(),
		DoctorID:   doctorID,
		PatientRef: patientRef,
		OfficeRef:  officeRef,
		Rule:       rule,
		Template:   template,
		StartDate:  startDate,
		IsActive:   true,
	}

	if err := s.series.Insert(ctx, series); err != nil {
		return nil, &StorageError{Op: "insert series", Err: err}
	}

	occurrences, err := s.GenerateOccurrences(rule, startDate, template.DurationMinutes)
	if err != nil {
		// Правило прошло Validate, сюда попадает только неконсистентность
		// самих границ; серия уже сохранена, сообщаем как warning.
		s.logger.Warn("Series saved but occurrence generation failed",
			zap.String("series_id", series.ID.String()),
			zap.Error(err),
		)
		return &CreateSeriesResult{SeriesID: series.ID, Warning: WarnNoOccurrences}, nil
	}

	if len(occurrences) == 0 {
		s.logger.Warn("Series saved with zero occurrences",
			zap.String("series_id", series.ID.String()),
		)
		return &CreateSeriesResult{SeriesID: series.ID, Warning: WarnNoOccurrences}, nil
	}

	appts := make([]*model.Appointment, len(occurrences))
	for i, start := range occurrences {
		idx := i
		appt := &model.Appointment{
			ID:              uuid.New(),
			SeriesID:        &series.ID,
			RecurrenceIndex: &idx,
			DoctorID:        doctorID,
			PatientRef:      patientRef,
			OfficeRef:       officeRef,
			DurationMinutes: template.DurationMinutes,
			Status:          model.StatusPendiente,
			Reason:          template.Reason,
			Kind:            template.Kind,
			Notes:           template.Notes,
			Price:           template.Price,
			PaymentMethod:   template.PaymentMethod,
		}
		appt.SetWindow(start)
		appts[i] = appt
	}

	inserted, insertErr := s.appointments.InsertBatch(ctx, appts)
	created := len(inserted)

	// Счётчик фиксирует реально вставленное количество, даже при частичном
	// отказе. Отказ обновления счётчика серьёзнее не делает — логируем.
	if err := s.series.UpdateCounter(ctx, series.ID, created); err != nil {
		s.logger.Error("Failed to update series occurrence counter",
			zap.String("series_id", series.ID.String()),
			zap.Int("created", created),
			zap.Error(err),
		)
	}

	if insertErr != nil {
		return &CreateSeriesResult{SeriesID: series.ID, AppointmentsCreated: created},
			&StorageError{Op: "insert appointments", Err: insertErr}
	}

	s.recordActivity(ctx, doctorID, model.ActivitySeriesCreated,
		fmt.Sprintf("Serie creada: %d citas desde %s", created, startDate.Format("02/01/2006 15:04")))

	s.logger.Info("Series created",
		zap.String("series_id", series.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.Int("appointments_created", created),
	)

	return &CreateSeriesResult{SeriesID: series.ID, AppointmentsCreated: created}, nil
}

// GenerateOccurrences разворачивает правило в даты без сохранения —
// используется и внутри CreateSeries, и вызывающими для предпросмотра
func (s *SeriesService) GenerateOccurrences(rule recurrence.Rule, startDate time.Time, durationMinutes int) ([]time.Time, error) {
	horizon := startDate.AddDate(0, s.horizonMonths, 0)
	return recurrence.Generate(rule, startDate, durationMinutes, horizon, s.hardLimit)
}

// GetSeries возвращает серию по id
func (s *SeriesService) GetSeries(ctx context.Context, id uuid.UUID) (*model.Series, error) {
	series, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "get series", Err: err}
	}
	return series, nil
}

// ListActiveSeries возвращает активные серии врача
func (s *SeriesService) ListActiveSeries(ctx context.Context, doctorID uuid.UUID) ([]*model.Series, error) {
	list, err := s.series.ListActiveByDoctor(ctx, doctorID)
	if err != nil {
		return nil, &StorageError{Op: "list series", Err: err}
	}
	return list, nil
}

// ListSeriesAppointments возвращает приёмы серии в порядке recurrence_index
func (s *SeriesService) ListSeriesAppointments(ctx context.Context, seriesID uuid.UUID) ([]*model.Appointment, error) {
	list, err := s.appointments.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, &StorageError{Op: "list series appointments", Err: err}
	}
	return list, nil
}

func (s *SeriesService) recordActivity(ctx context.Context, doctorID uuid.UUID, activityType, description string) {
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
