package recurrence

import (
	"fmt"
	"sort"
	"time"
)

// Generate разворачивает правило в отсортированный список дат начала приёмов.
//
// Чистая функция: не читает текущее время. Для неограниченных правил
// (EndsOn == nil и MaxOccurrences == 0) верхней границей служит horizon;
// для правил с MaxOccurrences горизонт не применяется — количество задаёт
// границу само. hardLimit — абсолютный потолок на размер результата.
//
// Даты в прошлом допустимы: валидность времени — забота вызывающего.
func Generate(rule Rule, start time.Time, durationMinutes int, horizon time.Time, hardLimit int) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d minutes", ErrInvalidRule, durationMinutes)
	}
	if hardLimit <= 0 {
		return nil, fmt.Errorf("%w: hard limit must be positive, got %d", ErrInvalidRule, hardLimit)
	}

	// Верхняя граница по дате. Для правил, ограниченных количеством,
	// её может не быть вовсе.
	var until time.Time
	hasUntil := false
	switch {
	case rule.EndsOn != nil:
		until, hasUntil = *rule.EndsOn, true
	case rule.MaxOccurrences > 0:
		// граница по количеству
	default:
		if horizon.IsZero() {
			return nil, fmt.Errorf("%w: unbounded rule requires a horizon", ErrInvalidRule)
		}
		until, hasUntil = horizon, true
	}

	maxCount := hardLimit
	if rule.MaxOccurrences > 0 && rule.MaxOccurrences < maxCount {
		maxCount = rule.MaxOccurrences
	}

	inBound := func(t time.Time) bool {
		return !hasUntil || t.Before(until)
	}

	var out []time.Time

	switch rule.Frequency {
	case FrequencyDaily, FrequencyCustom:
		step := rule.Interval
		for cur := start; len(out) < maxCount && inBound(cur); cur = cur.AddDate(0, 0, step) {
			out = append(out, cur)
		}

	case FrequencyWeekly, FrequencyBiweekly:
		weeks := rule.Interval
		if rule.Frequency == FrequencyBiweekly {
			weeks = 2
		}

		if len(rule.Weekdays) == 0 {
			// Без выбранных дней недели — как daily с шагом в несколько недель,
			// начиная с дня недели стартовой даты.
			for cur := start; len(out) < maxCount && inBound(cur); cur = cur.AddDate(0, 0, 7*weeks) {
				out = append(out, cur)
			}
			break
		}

		offsets := weekdayOffsets(start.Weekday(), rule.Weekdays)
		for window := start; len(out) < maxCount; window = window.AddDate(0, 0, 7*weeks) {
			emitted := false
			for _, off := range offsets {
				cur := window.AddDate(0, 0, off)
				if !inBound(cur) {
					continue
				}
				out = append(out, cur)
				emitted = true
				if len(out) == maxCount {
					break
				}
			}
			// Все дни окна за границей — дальше будет только позже.
			if hasUntil && !emitted && !inBound(window) {
				break
			}
		}

	case FrequencyMonthly:
		day := start.Day()
		for k := 0; len(out) < maxCount; k += rule.Interval {
			cur := addMonthsClamped(start, k, day)
			if !inBound(cur) {
				break
			}
			out = append(out, cur)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// weekdayOffsets возвращает смещения в днях от начала окна до каждого
// выбранного дня недели, в хронологическом порядке и без дубликатов.
func weekdayOffsets(anchor time.Weekday, weekdays []time.Weekday) []int {
	seen := [7]bool{}
	var offsets []int
	for _, wd := range weekdays {
		if seen[wd] {
			continue
		}
		seen[wd] = true
		offsets = append(offsets, (int(wd)-int(anchor)+7)%7)
	}
	sort.Ints(offsets)
	return offsets
}

// addMonthsClamped прибавляет months месяцев, сохраняя день месяца исходной
// даты. Если в целевом месяце меньше дней, дата прижимается к последнему дню
// месяца (31 января + 1 месяц = 28/29 февраля, а не 2/3 марта, как сделал бы
// AddDate).
func addMonthsClamped(start time.Time, months, day int) time.Time {
	y, m, _ := start.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		return firstOfTarget.AddDate(0, 0, last-1)
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

// daysIn возвращает число дней в месяце
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
