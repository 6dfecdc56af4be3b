package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda/internal/model"
)

// Window — полуинтервал времени [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow строит окно от начала и длительности в минутах
func NewWindow(start time.Time, durationMinutes int) Window {
	return Window{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps проверяет пересечение двух полуинтервалов: [s1,e1) и [s2,e2)
// конфликтуют тогда и только тогда, когда s1 < e2 && s2 < e1. Окна,
// которые лишь касаются (a.End == b.Start), не конфликтуют.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// HasConflict ищет конфликт окна-кандидата с существующими приёмами.
// Приём с id == excludeID (перемещаемый) из сравнения исключается.
// Возвращает первый конфликтующий приём в хронологическом порядке.
func HasConflict(candidateStart time.Time, durationMinutes int, existing []*model.Appointment, excludeID uuid.UUID) (bool, *model.Appointment) {
	candidate := NewWindow(candidateStart, durationMinutes)

	var culprit *model.Appointment
	for _, appt := range existing {
		if appt.ID == excludeID {
			continue
		}
		if !Overlaps(candidate, Window{Start: appt.StartTime, End: appt.EndTime}) {
			continue
		}
		if culprit == nil || appt.StartTime.Before(culprit.StartTime) {
			culprit = appt
		}
	}

	return culprit != nil, culprit
}
