package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Frequency определяет тип повторения серии
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// Rule описывает правило повторения серии приёмов.
// Interval — размер шага; единица зависит от частоты (дни для daily/custom,
// недели для weekly, месяцы для monthly). Biweekly всегда шагает на 2 недели.
type Rule struct {
	Frequency Frequency      `json:"frequency"`
	Interval  int            `json:"interval"`
	Weekdays  []time.Weekday `json:"weekdays"` // 0 = Sunday, 6 = Saturday; только weekly/biweekly
	// Условие окончания: EndsOn ограничивает по дате (исключительно, полночь
	// этого дня), MaxOccurrences — по количеству. Если оба нулевые, правило
	// бесконечно и вызывающий обязан передать horizon в Generate.
	EndsOn         *time.Time `json:"ends_on"`
	MaxOccurrences int        `json:"max_occurrences"`
}

// ErrInvalidRule означает, что правило не может породить ни одной даты
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Validate проверяет корректность правила
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyCustom:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}

	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidRule, r.Interval)
	}

	for _, wd := range r.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, wd)
		}
	}

	if r.MaxOccurrences < 0 {
		return fmt.Errorf("%w: max occurrences must not be negative", ErrInvalidRule)
	}

	return nil
}

// Bounded сообщает, ограничено ли правило датой или количеством
func (r Rule) Bounded() bool {
	return r.EndsOn != nil || r.MaxOccurrences > 0
}
