package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda/internal/recurrence"
)

// AppointmentTemplate — поля, копируемые без изменений в каждый приём серии
type AppointmentTemplate struct {
	DurationMinutes int      `json:"duration_minutes"`
	Reason          string   `json:"reason"`
	Kind            string   `json:"kind"`
	Notes           string   `json:"notes"`
	Price           *float64 `json:"price"`
	PaymentMethod   string   `json:"payment_method"`
}

// Series представляет определение повторяющейся серии приёмов.
// Правило и шаблон неизменяемы после создания. OccurrencesCreated
// выставляется один раз — по количеству реально вставленных приёмов —
// и не уменьшается при последующих отменах.
type Series struct {
	ID                 uuid.UUID           `json:"id"`
	DoctorID           uuid.UUID           `json:"doctor_id"`
	PatientRef         string              `json:"patient_ref"`
	OfficeRef          string              `json:"office_ref"`
	Rule               recurrence.Rule     `json:"rule"`
	Template           AppointmentTemplate `json:"template"`
	StartDate          time.Time           `json:"start_date"` // дата и время первого приёма
	OccurrencesCreated int                 `json:"occurrences_created"`
	IsActive           bool                `json:"is_active"`
	CreatedAt          time.Time           `json:"created_at"`
}
