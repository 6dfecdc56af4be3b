package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/repository/base"
)

const seriesColumns = `
	id, doctor_id, patient_ref, office_ref,
	recurrence_type, recurrence_interval, recurrence_days, ends_on, max_occurrences,
	duration_minutes, reason, kind, notes, price, payment_method,
	start_date, occurrences_created, is_active, created_at`

// SeriesRepository управляет сериями приёмов в базе данных
type SeriesRepository struct {
	*base.Repository
}

// NewSeriesRepository создаёт новый репозиторий серий
func NewSeriesRepository(pool *pgxpool.Pool) *SeriesRepository {
	return &SeriesRepository{Repository: base.NewRepository(pool)}
}

// Insert создаёт новую серию
func (r *SeriesRepository) Insert(ctx context.Context, series *model.Series) error {
	query := `
		INSERT INTO appointment_series (
			id, doctor_id, patient_ref, office_ref,
			recurrence_type, recurrence_interval, recurrence_days, ends_on, max_occurrences,
			duration_minutes, reason, kind, notes, price, payment_method,
			start_date, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		series.ID, series.DoctorID, series.PatientRef, series.OfficeRef,
		series.Rule.Frequency, series.Rule.Interval, weekdaysToInts(series.Rule.Weekdays),
		series.Rule.EndsOn, series.Rule.MaxOccurrences,
		series.Template.DurationMinutes, series.Template.Reason, series.Template.Kind,
		series.Template.Notes, series.Template.Price, series.Template.PaymentMethod,
		series.StartDate, series.IsActive,
	).Scan(&series.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}

	return nil
}

// GetByID получает серию по ID
func (r *SeriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Series, error) {
	query := `SELECT ` + seriesColumns + ` FROM appointment_series WHERE id = $1`

	series, err := scanSeries(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get series by id: %w", err)
	}

	return series, nil
}

// ListActiveByDoctor получает активные серии врача
func (r *SeriesRepository) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Series, error) {
	query := `
		SELECT ` + seriesColumns + `
		FROM appointment_series
		WHERE doctor_id = $1 AND is_active = true
		ORDER BY start_date
	`

	rows, err := r.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list active series: %w", err)
	}
	defer rows.Close()

	var list []*model.Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		list = append(list, series)
	}

	return list, rows.Err()
}

// UpdateCounter выставляет occurrences_created. Вызывается один раз после
// материализации; последующие отмены счётчик не уменьшают.
func (r *SeriesRepository) UpdateCounter(ctx context.Context, id uuid.UUID, count int) error {
	query := `UPDATE appointment_series SET occurrences_created = $2 WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id, count); err != nil {
		return fmt.Errorf("update series counter: %w", err)
	}
	return nil
}

// SetActive переключает флаг активности серии
func (r *SeriesRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE appointment_series SET is_active = $2 WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id, active); err != nil {
		return fmt.Errorf("set series active: %w", err)
	}
	return nil
}

func scanSeries(row pgx.Row) (*model.Series, error) {
	var (
		s        model.Series
		weekdays []int32
		endsOn   *time.Time
	)

	err := row.Scan(
		&s.ID, &s.DoctorID, &s.PatientRef, &s.OfficeRef,
		&s.Rule.Frequency, &s.Rule.Interval, &weekdays, &endsOn, &s.Rule.MaxOccurrences,
		&s.Template.DurationMinutes, &s.Template.Reason, &s.Template.Kind,
		&s.Template.Notes, &s.Template.Price, &s.Template.PaymentMethod,
		&s.StartDate, &s.OccurrencesCreated, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Rule.EndsOn = endsOn
	s.Rule.Weekdays = intsToWeekdays(weekdays)
	return &s, nil
}

func weekdaysToInts(weekdays []time.Weekday) []int32 {
	out := make([]int32, len(weekdays))
	for i, wd := range weekdays {
		out[i] = int32(wd)
	}
	return out
}

func intsToWeekdays(ints []int32) []time.Weekday {
	if len(ints) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(ints))
	for i, v := range ints {
		out[i] = time.Weekday(v)
	}
	return out
}
