package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/skillflow/skillflow/pkg/models"
)

const enrollmentCols = `id, employee_id, training_id, status, progress, enrolled_date, start_date, end_date, completed_date, created, updated`

func (r *SQLiteRepo) CreateEnrollment(ctx context.Context, e *models.Enrollment) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("enrollment is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO enrollments (employee_id, training_id, status, progress, enrolled_date, start_date, end_date, completed_date, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EmployeeID, e.TrainingID, e.Status, e.Progress, e.EnrolledDate, e.StartDate, e.EndDate, e.CompletedDate, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanEnrollment(scan func(dest ...any) error) (*models.Enrollment, error) {
	var e models.Enrollment
	var start, end, completed sql.NullInt64
	if err := scan(&e.ID, &e.EmployeeID, &e.TrainingID, &e.Status, &e.Progress, &e.EnrolledDate, &start, &end, &completed, &e.Created, &e.Updated); err != nil {
		return nil, err
	}

	if start.Valid {
		v := start.Int64
		e.StartDate = &v
	}
	if end.Valid {
		v := end.Int64
		e.EndDate = &v
	}
	if completed.Valid {
		v := completed.Int64
		e.CompletedDate = &v
	}

	return &e, nil
}

func (r *SQLiteRepo) GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE id = ?`, id)
	e, err := scanEnrollment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return e, nil
}

// GetActiveEnrollment finds an enrolled or in-progress enrollment for the
// (employee, training) pair, used to reject duplicate enrollments.
func (r *SQLiteRepo) GetActiveEnrollment(ctx context.Context, employeeID, trainingID int64) (*models.Enrollment, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE employee_id = ? AND training_id = ? AND status IN (?, ?) LIMIT 1`,
		employeeID, trainingID, models.EnrollmentEnrolled, models.EnrollmentInProgress)
	e, err := scanEnrollment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return e, nil
}

func (r *SQLiteRepo) listEnrollments(ctx context.Context, query string, args ...any) ([]models.Enrollment, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListEnrollments(ctx context.Context, limit, offset int) ([]models.Enrollment, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listEnrollments(ctx, `SELECT `+enrollmentCols+` FROM enrollments ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *SQLiteRepo) ListAllEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	return r.listEnrollments(ctx, `SELECT `+enrollmentCols+` FROM enrollments ORDER BY id`)
}

func (r *SQLiteRepo) ListEnrollmentsByEmployee(ctx context.Context, employeeID int64) ([]models.Enrollment, error) {
	return r.listEnrollments(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE employee_id = ? ORDER BY id`, employeeID)
}

func (r *SQLiteRepo) ListRecentEnrollments(ctx context.Context, limit int) ([]models.Enrollment, error) {
	if limit <= 0 {
		limit = 8
	}

	return r.listEnrollments(ctx, `SELECT `+enrollmentCols+` FROM enrollments ORDER BY created DESC, id DESC LIMIT ?`, limit)
}

func (r *SQLiteRepo) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	if e == nil {
		return fmt.Errorf("enrollment is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE enrollments SET employee_id = ?, training_id = ?, status = ?, progress = ?, enrolled_date = ?, start_date = ?, end_date = ?, completed_date = ?, updated = ? WHERE id = ?`,
		e.EmployeeID, e.TrainingID, e.Status, e.Progress, e.EnrolledDate, e.StartDate, e.EndDate, e.CompletedDate, now(), e.ID)
	return err
}

func (r *SQLiteRepo) DeleteEnrollment(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM enrollments WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountEnrollments(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM enrollments`)
}

func (r *SQLiteRepo) CountEnrollmentsByStatus(ctx context.Context, statuses ...string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, s)
	}

	return r.countRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE status IN (`+placeholders+`)`, args...)
}

func (r *SQLiteRepo) CountEnrollmentsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE created <= ?`, cutoff)
}

func (r *SQLiteRepo) CountEnrollmentsCompletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE completed_date IS NOT NULL AND completed_date <= ?`, cutoff)
}
