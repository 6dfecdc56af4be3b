package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda/internal/model"
)

// SwapUpdate — одна сторона атомарного обмена окнами. ExpectedStart —
// оптимистическая защита: если приём уже сдвинут конкурентной операцией,
// обмен целиком откатывается.
type SwapUpdate struct {
	ID            uuid.UUID
	ExpectedStart time.Time
	NewStart      time.Time
	NewEnd        time.Time
}

// AppointmentStore — операции хранилища приёмов. Сервисы получают хранилище
// явно через конструктор; общего глобального хэндла нет.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// QueryOverlapping возвращает неотменённые приёмы врача, чьи окна
	// пересекают полуинтервал [from, to).
	QueryOverlapping(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*model.Appointment, error)
	// InsertBatch вставляет приёмы по порядку и возвращает id реально
	// вставленных. При отказе возвращает вставленные до него id вместе
	// с ошибкой — частичная вставка не откатывается.
	InsertBatch(ctx context.Context, appts []*model.Appointment) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	UpdateWindow(ctx context.Context, id uuid.UUID, start, end time.Time) error
	// AtomicSwap применяет оба обновления в одной транзакции:
	// либо применяются оба, либо ни одного.
	AtomicSwap(ctx context.Context, a, b SwapUpdate) error
	// CancelPendingBySeries переводит все pendiente-приёмы серии в cancelada
	CancelPendingBySeries(ctx context.Context, seriesID uuid.UUID) (int64, error)
	// CancelPendingStartingAt — то же, но только для приёмов с
	// start_time >= from
	CancelPendingStartingAt(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error)
}

// SeriesStore — операции хранилища серий
type SeriesStore interface {
	Insert(ctx context.Context, series *model.Series) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Series, error)
	ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Series, error)
	UpdateCounter(ctx context.Context, id uuid.UUID, count int) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ActivityStore — приёмник записей аудита (fire-and-forget)
type ActivityStore interface {
	Record(ctx context.Context, rec *model.ActivityRecord) error
}
