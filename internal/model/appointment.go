package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus — статус приёма. Значения хранятся в БД как есть,
// словарь платформы испанский.
type AppointmentStatus string

const (
	StatusPendiente  AppointmentStatus = "pendiente"
	StatusConfirmada AppointmentStatus = "confirmada"
	StatusCompletada AppointmentStatus = "completada"
	StatusCancelada  AppointmentStatus = "cancelada"
	StatusNoAsistio  AppointmentStatus = "no_asistio"
)

// Appointment представляет один приём в календаре врача.
// Приём может принадлежать серии (SeriesID != nil); отменённый приём
// сохраняет SeriesID — меняется только статус.
type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	SeriesID        *uuid.UUID        `json:"series_id"`
	RecurrenceIndex *int              `json:"recurrence_index"` // 0-based, в хронологическом порядке серии
	DoctorID        uuid.UUID         `json:"doctor_id"`
	PatientRef      string            `json:"patient_ref"` // внешняя ссылка на пациента (обычного или офлайн)
	OfficeRef       string            `json:"office_ref"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"` // всегда StartTime + DurationMinutes
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason"`
	Kind            string            `json:"kind"`
	Notes           string            `json:"notes"`
	Price           *float64          `json:"price"`
	PaymentMethod   string            `json:"payment_method"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// SetWindow устанавливает окно приёма, поддерживая инвариант
// EndTime = StartTime + DurationMinutes
func (a *Appointment) SetWindow(start time.Time) {
	a.StartTime = start
	a.EndTime = start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
