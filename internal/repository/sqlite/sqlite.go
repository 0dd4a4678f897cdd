package sqlite

import (
	"time"

	"github.com/skillflow/skillflow/internal/db"
	"github.com/skillflow/skillflow/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.DepartmentRepo = (*SQLiteRepo)(nil)
var _ repository.EmployeeRepo = (*SQLiteRepo)(nil)
var _ repository.TrainingRepo = (*SQLiteRepo)(nil)
var _ repository.EnrollmentRepo = (*SQLiteRepo)(nil)
var _ repository.CertificationRepo = (*SQLiteRepo)(nil)
var _ repository.UserRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
