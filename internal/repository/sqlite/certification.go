package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillflow/skillflow/pkg/models"
)

const certificationCols = `id, employee_id, training_id, enrollment_id, cert_number, issued_date, expires_at, status, file_url, created, updated`

func (r *SQLiteRepo) CreateCertification(ctx context.Context, c *models.Certification) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("certification is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO certifications (employee_id, training_id, enrollment_id, cert_number, issued_date, expires_at, status, file_url, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.EmployeeID, c.TrainingID, c.EnrollmentID, c.CertNumber, c.IssuedDate, c.ExpiresAt, c.Status, c.FileURL, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func scanCertification(scan func(dest ...any) error) (*models.Certification, error) {
	var c models.Certification
	var expires sql.NullInt64
	var fileURL sql.NullString
	if err := scan(&c.ID, &c.EmployeeID, &c.TrainingID, &c.EnrollmentID, &c.CertNumber, &c.IssuedDate, &expires, &c.Status, &fileURL, &c.Created, &c.Updated); err != nil {
		return nil, err
	}

	if expires.Valid {
		v := expires.Int64
		c.ExpiresAt = &v
	}
	if fileURL.Valid {
		v := fileURL.String
		c.FileURL = &v
	}

	return &c, nil
}

func (r *SQLiteRepo) getCertification(ctx context.Context, query string, args ...any) (*models.Certification, error) {
	row := r.conn.QueryRow(ctx, query, args...)
	c, err := scanCertification(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) GetCertificationByID(ctx context.Context, id int64) (*models.Certification, error) {
	return r.getCertification(ctx, `SELECT `+certificationCols+` FROM certifications WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetCertificationByEnrollmentID(ctx context.Context, enrollmentID int64) (*models.Certification, error) {
	return r.getCertification(ctx, `SELECT `+certificationCols+` FROM certifications WHERE enrollment_id = ?`, enrollmentID)
}

func (r *SQLiteRepo) GetCertificationByNumber(ctx context.Context, certNumber string) (*models.Certification, error) {
	return r.getCertification(ctx, `SELECT `+certificationCols+` FROM certifications WHERE cert_number = ?`, certNumber)
}

func (r *SQLiteRepo) listCertifications(ctx context.Context, query string, args ...any) ([]models.Certification, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Certification
	for rows.Next() {
		c, err := scanCertification(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListCertifications(ctx context.Context, limit, offset int) ([]models.Certification, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listCertifications(ctx, `SELECT `+certificationCols+` FROM certifications ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *SQLiteRepo) ListAllCertifications(ctx context.Context) ([]models.Certification, error) {
	return r.listCertifications(ctx, `SELECT `+certificationCols+` FROM certifications ORDER BY id`)
}

func (r *SQLiteRepo) ListCertificationsByEmployee(ctx context.Context, employeeID int64) ([]models.Certification, error) {
	return r.listCertifications(ctx, `SELECT `+certificationCols+` FROM certifications WHERE employee_id = ? ORDER BY id`, employeeID)
}

func (r *SQLiteRepo) UpdateCertification(ctx context.Context, c *models.Certification) error {
	if c == nil {
		return fmt.Errorf("certification is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE certifications SET employee_id = ?, training_id = ?, enrollment_id = ?, cert_number = ?, issued_date = ?, expires_at = ?, status = ?, file_url = ?, updated = ? WHERE id = ?`,
		c.EmployeeID, c.TrainingID, c.EnrollmentID, c.CertNumber, c.IssuedDate, c.ExpiresAt, c.Status, c.FileURL, now(), c.ID)
	return err
}

func (r *SQLiteRepo) DeleteCertification(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM certifications WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountCertifications(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM certifications`)
}

func (r *SQLiteRepo) CountCertificationsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM certifications WHERE created <= ?`, cutoff)
}

// CountCertificationsExpiringBetween counts certifications whose expiry falls
// in [from, to]. A non-zero createdBefore additionally restricts to rows that
// already existed at that cutoff, for day-over-day comparisons.
func (r *SQLiteRepo) CountCertificationsExpiringBetween(ctx context.Context, from, to, createdBefore int64) (int64, error) {
	if createdBefore > 0 {
		return r.countRow(ctx, `SELECT COUNT(*) FROM certifications WHERE expires_at IS NOT NULL AND expires_at >= ? AND expires_at <= ? AND created <= ?`, from, to, createdBefore)
	}

	return r.countRow(ctx, `SELECT COUNT(*) FROM certifications WHERE expires_at IS NOT NULL AND expires_at >= ? AND expires_at <= ?`, from, to)
}
