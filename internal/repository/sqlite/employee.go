package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillflow/skillflow/pkg/models"
)

const employeeCols = `id, code, first_name, last_name, email, department_id, position, hire_date, is_active, created, updated`

func (r *SQLiteRepo) CreateEmployee(ctx context.Context, e *models.Employee) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("employee is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO employees (code, first_name, last_name, email, department_id, position, hire_date, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Code, e.FirstName, e.LastName, e.Email, e.DepartmentID, e.Position, e.HireDate, e.IsActive, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employeeCols+` FROM employees WHERE id = ?`, id)
	return scanEmployeeRow(row)
}

func (r *SQLiteRepo) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employeeCols+` FROM employees WHERE email = ?`, email)
	return scanEmployeeRow(row)
}

func (r *SQLiteRepo) GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employeeCols+` FROM employees WHERE code = ?`, code)
	return scanEmployeeRow(row)
}

func scanEmployeeRow(row *sql.Row) (*models.Employee, error) {
	var e models.Employee
	var deptID, hireDate sql.NullInt64
	if err := row.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &deptID, &e.Position, &hireDate, &e.IsActive, &e.Created, &e.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if deptID.Valid {
		v := deptID.Int64
		e.DepartmentID = &v
	}
	if hireDate.Valid {
		v := hireDate.Int64
		e.HireDate = &v
	}

	return &e, nil
}

func (r *SQLiteRepo) listEmployees(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		var e models.Employee
		var deptID, hireDate sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &deptID, &e.Position, &hireDate, &e.IsActive, &e.Created, &e.Updated); err != nil {
			return nil, err
		}
		if deptID.Valid {
			v := deptID.Int64
			e.DepartmentID = &v
		}
		if hireDate.Valid {
			v := hireDate.Int64
			e.HireDate = &v
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListEmployees(ctx context.Context, limit, offset int) ([]models.Employee, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listEmployees(ctx, `SELECT `+employeeCols+` FROM employees ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *SQLiteRepo) ListAllEmployees(ctx context.Context) ([]models.Employee, error) {
	return r.listEmployees(ctx, `SELECT `+employeeCols+` FROM employees ORDER BY id`)
}

func (r *SQLiteRepo) ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]models.Employee, error) {
	return r.listEmployees(ctx, `SELECT `+employeeCols+` FROM employees WHERE department_id = ? ORDER BY id`, departmentID)
}

func (r *SQLiteRepo) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if e == nil {
		return fmt.Errorf("employee is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE employees SET code = ?, first_name = ?, last_name = ?, email = ?, department_id = ?, position = ?, hire_date = ?, is_active = ?, updated = ? WHERE id = ?`,
		e.Code, e.FirstName, e.LastName, e.Email, e.DepartmentID, e.Position, e.HireDate, e.IsActive, now(), e.ID)
	return err
}

func (r *SQLiteRepo) DeleteEmployee(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM employees WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountEmployees(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM employees`)
}

func (r *SQLiteRepo) CountEmployeesCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM employees WHERE created <= ?`, cutoff)
}

func (r *SQLiteRepo) countRow(ctx context.Context, query string, args ...any) (int64, error) {
	row := r.conn.QueryRow(ctx, query, args...)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
