package scheduler

import (
	"errors"
	"time"

	"github.com/medagenda/agenda/internal/model"
)

// DragState — состояние интерактивного перемещения приёма
type DragState int

const (
	StateIdle DragState = iota
	StateHolding
	StateHoveringFree
	StateHoveringConflict
)

// ErrNoHeldAppointment означает попытку hover/commit без захваченного приёма
var ErrNoHeldAppointment = errors.New("scheduler: no appointment is being moved")

// ErrAlreadyHolding означает повторный захват до завершения предыдущего
var ErrAlreadyHolding = errors.New("scheduler: another appointment is already being moved")

// HoverResult — обратная связь для наведения: окно-кандидат и конфликтующий
// приём, если он есть. Чистое чтение, без побочных эффектов.
type HoverResult struct {
	Window   Window
	Conflict *model.Appointment
}

// DragSession моделирует конечный автомат перемещения:
// Idle → Holding → HoveringFree | HoveringConflict → Idle.
// Автомат не делает обращений к хранилищу — персистентность происходит
// только на переходе Commit, и им управляет вызывающий сервис.
type DragSession struct {
	state DragState
	held  *model.Appointment
}

// State возвращает текущее состояние автомата
func (s *DragSession) State() DragState {
	return s.state
}

// Held возвращает захваченный приём или nil
func (s *DragSession) Held() *model.Appointment {
	return s.held
}

// Begin захватывает приём для перемещения. Ничего не сохраняет.
func (s *DragSession) Begin(appt *model.Appointment) error {
	if appt == nil {
		return ErrNoHeldAppointment
	}
	if s.state != StateIdle {
		return ErrAlreadyHolding
	}
	s.state = StateHolding
	s.held = appt
	return nil
}

// Hover вычисляет окно-кандидат из длительности захваченного приёма и
// проверяет его на конфликт с существующими приёмами. Повторяемо.
func (s *DragSession) Hover(target time.Time, existing []*model.Appointment) (HoverResult, error) {
	if s.held == nil {
		return HoverResult{}, ErrNoHeldAppointment
	}

	window := NewWindow(target, s.held.DurationMinutes)
	_, conflict := HasConflict(target, s.held.DurationMinutes, existing, s.held.ID)

	if conflict != nil {
		s.state = StateHoveringConflict
	} else {
		s.state = StateHoveringFree
	}

	return HoverResult{Window: window, Conflict: conflict}, nil
}

// Cancel сбрасывает захват без сохранения
func (s *DragSession) Cancel() {
	s.state = StateIdle
	s.held = nil
}

// TargetAt собирает момент начала из даты и времени слота, в таймзоне даты
func TargetAt(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
