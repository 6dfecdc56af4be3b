package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/repository/base"
	"github.com/medagenda/agenda/internal/service"
)

const appointmentColumns = `
	id, series_id, recurrence_index, doctor_id, patient_ref, office_ref,
	start_time, end_time, duration_minutes, status, reason, kind, notes,
	price, payment_method, created_at, updated_at`

// AppointmentRepository управляет приёмами в базе данных
type AppointmentRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAppointmentRepository создаёт новый репозиторий приёмов
func NewAppointmentRepository(pool *pgxpool.Pool, logger *zap.Logger) *AppointmentRepository {
	return &AppointmentRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetByID получает приём по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// QueryOverlapping получает неотменённые приёмы врача, чьи окна пересекают
// полуинтервал [from, to)
func (r *AppointmentRepository) QueryOverlapping(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		  AND status != 'cancelada'
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query overlapping appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListBySeries получает приёмы серии в порядке recurrence_index
func (r *AppointmentRepository) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE series_id = $1
		ORDER BY recurrence_index
	`

	rows, err := r.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by series: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// InsertBatch вставляет приёмы пакетом, по порядку. При отказе возвращает
// id реально вставленных приёмов вместе с ошибкой — уже вставленные строки
// не откатываются.
func (r *AppointmentRepository) InsertBatch(ctx context.Context, appts []*model.Appointment) ([]uuid.UUID, error) {
	query := `
		INSERT INTO appointments (
			id, series_id, recurrence_index, doctor_id, patient_ref, office_ref,
			start_time, end_time, duration_minutes, status, reason, kind, notes,
			price, payment_method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	// Вставляем построчно, без обрамляющей транзакции: pgx.Batch исполняет
	// пакет в неявной транзакции и откатил бы уже вставленные строки.
	inserted := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		_, err := r.Pool().Exec(ctx, query,
			a.ID, a.SeriesID, a.RecurrenceIndex, a.DoctorID, a.PatientRef, a.OfficeRef,
			a.StartTime, a.EndTime, a.DurationMinutes, a.Status, a.Reason, a.Kind, a.Notes,
			a.Price, a.PaymentMethod,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert appointment %s: %w", a.ID, err)
		}
		inserted = append(inserted, a.ID)
	}

	return inserted, nil
}

// UpdateStatus обновляет статус приёма
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id, status); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// UpdateWindow обновляет окно приёма
func (r *AppointmentRepository) UpdateWindow(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	query := `UPDATE appointments SET start_time = $2, end_time = $3, updated_at = now() WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id, start, end); err != nil {
		return fmt.Errorf("update appointment window: %w", err)
	}
	return nil
}

// AtomicSwap применяет оба обновления окон в одной транзакции.
// Каждое обновление условно по ожидаемому start_time: если любой из приёмов
// уже сдвинут конкурентной операцией, транзакция откатывается целиком и
// двойное бронирование не возникает.
func (r *AppointmentRepository) AtomicSwap(ctx context.Context, a, b service.SwapUpdate) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin swap transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE appointments
		SET start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $1 AND start_time = $4
	`

	for _, upd := range []service.SwapUpdate{a, b} {
		tag, err := tx.Exec(ctx, query, upd.ID, upd.NewStart, upd.NewEnd, upd.ExpectedStart)
		if err != nil {
			return fmt.Errorf("swap update %s: %w", upd.ID, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("swap update %s: appointment was moved concurrently", upd.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit swap transaction: %w", err)
	}

	r.logger.Debug("Appointments swapped atomically",
		zap.String("first_id", a.ID.String()),
		zap.String("second_id", b.ID.String()),
	)

	return nil
}

// CancelPendingBySeries переводит все pendiente-приёмы серии в cancelada
func (r *AppointmentRepository) CancelPendingBySeries(ctx context.Context, seriesID uuid.UUID) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelada', updated_at = now()
		WHERE series_id = $1 AND status = 'pendiente'
	`

	n, err := r.ExecAffected(ctx, query, seriesID)
	if err != nil {
		return 0, fmt.Errorf("cancel pending by series: %w", err)
	}
	return n, nil
}

// CancelPendingStartingAt отменяет pendiente-приёмы серии, начиная с from
func (r *AppointmentRepository) CancelPendingStartingAt(ctx context.Context, seriesID uuid.UUID, from time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelada', updated_at = now()
		WHERE series_id = $1 AND status = 'pendiente' AND start_time >= $2
	`

	n, err := r.ExecAffected(ctx, query, seriesID, from)
	if err != nil {
		return 0, fmt.Errorf("cancel pending starting at: %w", err)
	}
	return n, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.SeriesID, &a.RecurrenceIndex, &a.DoctorID, &a.PatientRef, &a.OfficeRef,
		&a.StartTime, &a.EndTime, &a.DurationMinutes, &a.Status, &a.Reason, &a.Kind, &a.Notes,
		&a.Price, &a.PaymentMethod, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]*model.Appointment, error) {
	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}
