package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medagenda/agenda/internal/model"
	"github.com/medagenda/agenda/internal/repository/base"
)

// ActivityRepository пишет журнал активности врача
type ActivityRepository struct {
	*base.Repository
}

// NewActivityRepository создаёт новый репозиторий журнала
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{Repository: base.NewRepository(pool)}
}

// Record добавляет запись аудита
func (r *ActivityRepository) Record(ctx context.Context, rec *model.ActivityRecord) error {
	query := `
		INSERT INTO activity_log (doctor_id, activity_type, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, rec.DoctorID, rec.Type, rec.Description).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	return nil
}
