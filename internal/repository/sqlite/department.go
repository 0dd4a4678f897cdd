package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillflow/skillflow/pkg/models"
)

func (r *SQLiteRepo) CreateDepartment(ctx context.Context, d *models.Department) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("department is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO departments (name, description, created, updated) VALUES (?, ?, ?, ?)`, d.Name, d.Description, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, description, created, updated FROM departments WHERE id = ?`, id)
	return scanDepartment(row)
}

func (r *SQLiteRepo) GetDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, description, created, updated FROM departments WHERE name = ?`, name)
	return scanDepartment(row)
}

func scanDepartment(row *sql.Row) (*models.Department, error) {
	var d models.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Created, &d.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &d, nil
}

func (r *SQLiteRepo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, description, created, updated FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Created, &d.Updated); err != nil {
			return nil, err
		}

		out = append(out, d)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateDepartment(ctx context.Context, d *models.Department) error {
	if d == nil {
		return fmt.Errorf("department is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE departments SET name = ?, description = ?, updated = ? WHERE id = ?`, d.Name, d.Description, now(), d.ID)
	return err
}

func (r *SQLiteRepo) DeleteDepartment(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM departments WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountDepartments(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM departments`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
