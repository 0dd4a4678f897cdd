package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillflow/skillflow/pkg/models"
)

func (r *SQLiteRepo) CreateTraining(ctx context.Context, t *models.Training) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("training is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO trainings (name, description, duration_hours, created, updated) VALUES (?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.DurationHours, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetTrainingByID(ctx context.Context, id int64) (*models.Training, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, description, duration_hours, created, updated FROM trainings WHERE id = ?`, id)
	var t models.Training
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.DurationHours, &t.Created, &t.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &t, nil
}

func (r *SQLiteRepo) listTrainings(ctx context.Context, query string, args ...any) ([]models.Training, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Training
	for rows.Next() {
		var t models.Training
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DurationHours, &t.Created, &t.Updated); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListTrainings(ctx context.Context, limit, offset int) ([]models.Training, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listTrainings(ctx, `SELECT id, name, description, duration_hours, created, updated FROM trainings ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *SQLiteRepo) ListAllTrainings(ctx context.Context) ([]models.Training, error) {
	return r.listTrainings(ctx, `SELECT id, name, description, duration_hours, created, updated FROM trainings ORDER BY id`)
}

func (r *SQLiteRepo) UpdateTraining(ctx context.Context, t *models.Training) error {
	if t == nil {
		return fmt.Errorf("training is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE trainings SET name = ?, description = ?, duration_hours = ?, updated = ? WHERE id = ?`,
		t.Name, t.Description, t.DurationHours, now(), t.ID)
	return err
}

func (r *SQLiteRepo) DeleteTraining(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM trainings WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountTrainings(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM trainings`)
}

func (r *SQLiteRepo) CountTrainingsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM trainings WHERE created <= ?`, cutoff)
}

func (r *SQLiteRepo) SumTrainingHours(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COALESCE(SUM(duration_hours), 0) FROM trainings`)
}
