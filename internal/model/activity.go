package model

import (
	"time"

	"github.com/google/uuid"
)

// Типы записей журнала активности врача
const (
	ActivitySeriesCreated   = "series_created"
	ActivitySeriesCancelled = "series_cancelled"
	ActivityRescheduled     = "appointment_rescheduled"
	ActivitySwapped         = "appointments_swapped"
)

// ActivityRecord — запись аудита. Пишется best-effort: ошибка записи
// логируется, но не откатывает вызвавшую операцию.
type ActivityRecord struct {
	ID          int64     `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
