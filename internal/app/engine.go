package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/recurrence"
	"github.com/medagenda/agenda/internal/scheduler"
	"github.com/medagenda/agenda/internal/service"
)

// Engine — фасад движка расписаний: единая поверхность операций,
// которую видит внешний вызывающий слой (UI/API). Фоновых задач нет —
// все операции синхронные команды и запросы.
type Engine struct {
	series       *service.SeriesService
	cancellation *service.CancellationService
	reschedule   *service.RescheduleService
}

// NewEngine создаёт новый фасад движка
func NewEngine(
	series *service.SeriesService,
	cancellation *service.CancellationService,
	reschedule *service.RescheduleService,
) *Engine {
	return &Engine{
		series:       series,
		cancellation: cancellation,
		reschedule:   reschedule,
	}
}

// Run блокируется до отмены контекста. Движок не держит фоновых задач;
// Run существует, чтобы процессу было на чём дожидаться завершения.
func (e *Engine) Run(ctx context.Context, logger *zap.Logger) {
	logger.Info("Scheduling engine running")
	<-ctx.Done()
	logger.Info("Scheduling engine stopped")
}

// GenerateOccurrences — предпросмотр дат правила без сохранения
func (e *Engine) GenerateOccurrences(rule recurrence.Rule, start time.Time, durationMinutes int) ([]time.Time, error) {
	return e.series.GenerateOccurrences(rule, start, durationMinutes)
}

// CreateSeries создаёт серию и материализует её приёмы
func (e *Engine) CreateSeries(
	ctx context.Context,
	doctorID uuid.UUID,
	patientRef, officeRef string,
	rule recurrence.Rule,
	template model.AppointmentTemplate,
	startDate time.Time,
) (*service.CreateSeriesResult, error) {
	return e.series.CreateSeries(ctx, doctorID, patientRef, officeRef, rule, template, startDate)
}

// CancelSeries отменяет серию или её часть
func (e *Engine) CancelSeries(ctx context.Context, seriesID uuid.UUID, scope service.CancelScope, anchorID *uuid.UUID, reason string) error {
	return e.cancellation.CancelSeries(ctx, seriesID, scope, anchorID, reason)
}

// BeginMove захватывает приём для интерактивного перемещения
func (e *Engine) BeginMove(ctx context.Context, appointmentID uuid.UUID) (*scheduler.DragSession, error) {
	return e.reschedule.BeginMove(ctx, appointmentID)
}

// Hover — живая подсветка слота при перетаскивании
func (e *Engine) Hover(ctx context.Context, session *scheduler.DragSession, targetDate time.Time, hour, minute int) (scheduler.HoverResult, error) {
	return e.reschedule.Hover(ctx, session, targetDate, hour, minute)
}

// CommitMove фиксирует перемещение или обмен слотами
func (e *Engine) CommitMove(ctx context.Context, session *scheduler.DragSession, targetDate time.Time, hour, minute int) (*service.MoveResult, error) {
	return e.reschedule.CommitMove(ctx, session, targetDate, hour, minute)
}

// CancelMove сбрасывает перемещение
func (e *Engine) CancelMove(session *scheduler.DragSession) {
	e.reschedule.CancelMove(session)
}
