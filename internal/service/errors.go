package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError — некорректные входные данные: плохое правило,
// отсутствующий обязательный параметр, пустая ссылка на пациента.
// Возвращается синхронно и никогда не проглатывается.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// PastSlotError — попытка зафиксировать перемещение в прошлое
type PastSlotError struct {
	Target time.Time
	Now    time.Time
}

func (e *PastSlotError) Error() string {
	return fmt.Sprintf("target slot %s is in the past (now %s)",
		e.Target.Format(time.RFC3339), e.Now.Format(time.RFC3339))
}

// ConflictUnresolvedError — commit в занятый слот при выключенном swap.
// Зарезервировано под строгий режим.
type ConflictUnresolvedError struct {
	ConflictingID uuid.UUID
}

func (e *ConflictUnresolvedError) Error() string {
	return fmt.Sprintf("target slot conflicts with appointment %s and swapping is disabled", e.ConflictingID)
}

// StorageError — отказ ввода-вывода хранилища. Пробрасывается вызывающему
// типизированно; единственное исключение — запись аудита (best-effort).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WarnNoOccurrences — текст нефатального предупреждения: серия создана,
// но правило не породило ни одной даты. Требует внимания, но не является
// ошибкой вызова.
const WarnNoOccurrences = "no occurrence dates were generated; check the recurrence configuration"
