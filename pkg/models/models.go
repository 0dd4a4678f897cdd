package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Enrollment lifecycle states. Progress drives enrolled -> in_progress ->
// completed; cancelled is only reachable through an explicit update.
const (
	EnrollmentEnrolled   = "enrolled"
	EnrollmentInProgress = "in_progress"
	EnrollmentCompleted  = "completed"
	EnrollmentCancelled  = "cancelled"
)

// Certification states as stored. Date-based expiry is evaluated at read
// time; the status column is not rewritten when a certificate lapses.
const (
	CertificationActive  = "active"
	CertificationExpired = "expired"
	CertificationRevoked = "revoked"
)

// All timestamps and dates are UTC epoch milliseconds. Nullable dates are
// pointers so a missing value survives the JSON and SQL round trips.

type Department struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name" validate:"required"`
	Description string `json:"description,omitempty" db:"description"`
	Created     int64  `json:"created_at" db:"created"`
	Updated     int64  `json:"updated_at" db:"updated"`
}

type Employee struct {
	ID           int64  `json:"id" db:"id"`
	Code         string `json:"employee_code" db:"code" validate:"required"`
	FirstName    string `json:"first_name" db:"first_name" validate:"required"`
	LastName     string `json:"last_name" db:"last_name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	DepartmentID *int64 `json:"department_id,omitempty" db:"department_id"`
	Position     string `json:"position,omitempty" db:"position"`
	HireDate     *int64 `json:"hire_date,omitempty" db:"hire_date"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	Created      int64  `json:"created_at" db:"created"`
	Updated      int64  `json:"updated_at" db:"updated"`
}

// FullName joins first and last name for report rows.
func (e *Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Training struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name" validate:"required"`
	Description   string `json:"description,omitempty" db:"description"`
	DurationHours int64  `json:"duration_hours" db:"duration_hours"`
	Created       int64  `json:"created_at" db:"created"`
	Updated       int64  `json:"updated_at" db:"updated"`
}

type Enrollment struct {
	ID            int64  `json:"id" db:"id"`
	EmployeeID    int64  `json:"employee_id" db:"employee_id"`
	TrainingID    int64  `json:"training_id" db:"training_id"`
	Status        string `json:"status" db:"status"`
	Progress      int    `json:"progress" db:"progress"`
	EnrolledDate  int64  `json:"enrolled_date" db:"enrolled_date"`
	StartDate     *int64 `json:"start_date,omitempty" db:"start_date"`
	EndDate       *int64 `json:"end_date,omitempty" db:"end_date"`
	CompletedDate *int64 `json:"completed_date,omitempty" db:"completed_date"`
	Created       int64  `json:"created_at" db:"created"`
	Updated       int64  `json:"updated_at" db:"updated"`
}

// Active reports whether the enrollment still occupies the
// (employee, training) slot for duplicate-enrollment checks.
func (e *Enrollment) Active() bool {
	return e.Status == EnrollmentEnrolled || e.Status == EnrollmentInProgress
}

type Certification struct {
	ID           int64   `json:"id" db:"id"`
	EmployeeID   int64   `json:"employee_id" db:"employee_id"`
	TrainingID   int64   `json:"training_id" db:"training_id"`
	EnrollmentID int64   `json:"enrollment_id" db:"enrollment_id"`
	CertNumber   string  `json:"cert_number" db:"cert_number"`
	IssuedDate   int64   `json:"issued_date" db:"issued_date"`
	ExpiresAt    *int64  `json:"expires_at,omitempty" db:"expires_at"`
	Status       string  `json:"status" db:"status"`
	FileURL      *string `json:"file_url,omitempty" db:"file_url"`
	Created      int64   `json:"created_at" db:"created"`
	Updated      int64   `json:"updated_at" db:"updated"`
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created_at" db:"created"`
}
