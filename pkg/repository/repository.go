package repository

import (
	"context"

	"github.com/skillflow/skillflow/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// List methods return nil-safe slices; Get methods return (nil, nil) when
// the row does not exist. The *CreatedBefore counters take a UTC epoch-ms
// cutoff and back the dashboard's day-over-day baselines.

type DepartmentRepo interface {
	CreateDepartment(ctx context.Context, d *models.Department) (int64, error)
	GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error)
	GetDepartmentByName(ctx context.Context, name string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, d *models.Department) error
	DeleteDepartment(ctx context.Context, id int64) error
	CountDepartments(ctx context.Context) (int64, error)
}

type EmployeeRepo interface {
	CreateEmployee(ctx context.Context, e *models.Employee) (int64, error)
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error)
	ListEmployees(ctx context.Context, limit, offset int) ([]models.Employee, error)
	ListAllEmployees(ctx context.Context) ([]models.Employee, error)
	ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]models.Employee, error)
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	CountEmployees(ctx context.Context) (int64, error)
	CountEmployeesCreatedBefore(ctx context.Context, cutoff int64) (int64, error)
}

type TrainingRepo interface {
	CreateTraining(ctx context.Context, t *models.Training) (int64, error)
	GetTrainingByID(ctx context.Context, id int64) (*models.Training, error)
	ListTrainings(ctx context.Context, limit, offset int) ([]models.Training, error)
	ListAllTrainings(ctx context.Context) ([]models.Training, error)
	UpdateTraining(ctx context.Context, t *models.Training) error
	DeleteTraining(ctx context.Context, id int64) error
	CountTrainings(ctx context.Context) (int64, error)
	CountTrainingsCreatedBefore(ctx context.Context, cutoff int64) (int64, error)
	SumTrainingHours(ctx context.Context) (int64, error)
}

type EnrollmentRepo interface {
	CreateEnrollment(ctx context.Context, e *models.Enrollment) (int64, error)
	GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error)
	GetActiveEnrollment(ctx context.Context, employeeID, trainingID int64) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, limit, offset int) ([]models.Enrollment, error)
	ListAllEnrollments(ctx context.Context) ([]models.Enrollment, error)
	ListEnrollmentsByEmployee(ctx context.Context, employeeID int64) ([]models.Enrollment, error)
	ListRecentEnrollments(ctx context.Context, limit int) ([]models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
	DeleteEnrollment(ctx context.Context, id int64) error
	CountEnrollments(ctx context.Context) (int64, error)
	CountEnrollmentsByStatus(ctx context.Context, statuses ...string) (int64, error)
	CountEnrollmentsCreatedBefore(ctx context.Context, cutoff int64) (int64, error)
	CountEnrollmentsCompletedBefore(ctx context.Context, cutoff int64) (int64, error)
}

type CertificationRepo interface {
	CreateCertification(ctx context.Context, c *models.Certification) (int64, error)
	GetCertificationByID(ctx context.Context, id int64) (*models.Certification, error)
	GetCertificationByEnrollmentID(ctx context.Context, enrollmentID int64) (*models.Certification, error)
	GetCertificationByNumber(ctx context.Context, certNumber string) (*models.Certification, error)
	ListCertifications(ctx context.Context, limit, offset int) ([]models.Certification, error)
	ListAllCertifications(ctx context.Context) ([]models.Certification, error)
	ListCertificationsByEmployee(ctx context.Context, employeeID int64) ([]models.Certification, error)
	UpdateCertification(ctx context.Context, c *models.Certification) error
	DeleteCertification(ctx context.Context, id int64) error
	CountCertifications(ctx context.Context) (int64, error)
	CountCertificationsCreatedBefore(ctx context.Context, cutoff int64) (int64, error)
	CountCertificationsExpiringBetween(ctx context.Context, from, to, createdBefore int64) (int64, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
