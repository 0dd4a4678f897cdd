package mock

import (
	"context"
	"sort"

	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

// Store is an in-memory implementation of every repository interface for
// tests. Seed it by assigning the exported slices directly or through the
// Create methods (which assign sequential IDs). Setting Err makes every
// method fail with that error, which exercises degraded paths.
type Store struct {
	Departments    []models.Department
	Employees      []models.Employee
	Trainings      []models.Training
	Enrollments    []models.Enrollment
	Certifications []models.Certification
	Users          []models.User

	Err    error
	nextID int64
}

var _ repository.DepartmentRepo = (*Store)(nil)
var _ repository.EmployeeRepo = (*Store)(nil)
var _ repository.TrainingRepo = (*Store)(nil)
var _ repository.EnrollmentRepo = (*Store)(nil)
var _ repository.CertificationRepo = (*Store)(nil)
var _ repository.UserRepo = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Department methods

func (s *Store) CreateDepartment(ctx context.Context, d *models.Department) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	d.ID = s.id()
	s.Departments = append(s.Departments, *d)
	return d.ID, nil
}

func (s *Store) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Departments {
		if s.Departments[i].ID == id {
			d := s.Departments[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Store) GetDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Departments {
		if s.Departments[i].Name == name {
			d := s.Departments[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]models.Department(nil), s.Departments...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, d *models.Department) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Departments {
		if s.Departments[i].ID == d.ID {
			s.Departments[i] = *d
			return nil
		}
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Departments {
		if s.Departments[i].ID == id {
			s.Departments = append(s.Departments[:i], s.Departments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountDepartments(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Departments)), nil
}

// Employee methods

func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	e.ID = s.id()
	s.Employees = append(s.Employees, *e)
	return e.ID, nil
}

func (s *Store) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			e := s.Employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Employees {
		if s.Employees[i].Email == email {
			e := s.Employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Employees {
		if s.Employees[i].Code == code {
			e := s.Employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) ListEmployees(ctx context.Context, limit, offset int) ([]models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.Employees) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.Employees) {
		end = len(s.Employees)
	}
	return append([]models.Employee(nil), s.Employees[offset:end]...), nil
}

func (s *Store) ListAllEmployees(ctx context.Context) ([]models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Employee(nil), s.Employees...), nil
}

func (s *Store) ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]models.Employee, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Employee
	for _, e := range s.Employees {
		if e.DepartmentID != nil && *e.DepartmentID == departmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Employees {
		if s.Employees[i].ID == e.ID {
			s.Employees[i] = *e
			return nil
		}
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			s.Employees = append(s.Employees[:i], s.Employees[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Employees)), nil
}

func (s *Store) CountEmployeesCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, e := range s.Employees {
		if e.Created <= cutoff {
			n++
		}
	}
	return n, nil
}

// Training methods

func (s *Store) CreateTraining(ctx context.Context, t *models.Training) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	t.ID = s.id()
	s.Trainings = append(s.Trainings, *t)
	return t.ID, nil
}

func (s *Store) GetTrainingByID(ctx context.Context, id int64) (*models.Training, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Trainings {
		if s.Trainings[i].ID == id {
			t := s.Trainings[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) ListTrainings(ctx context.Context, limit, offset int) ([]models.Training, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if offset < 0 || offset >= len(s.Trainings) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	end := offset + limit
	if end > len(s.Trainings) {
		end = len(s.Trainings)
	}
	return append([]models.Training(nil), s.Trainings[offset:end]...), nil
}

func (s *Store) ListAllTrainings(ctx context.Context) ([]models.Training, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Training(nil), s.Trainings...), nil
}

func (s *Store) UpdateTraining(ctx context.Context, t *models.Training) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Trainings {
		if s.Trainings[i].ID == t.ID {
			s.Trainings[i] = *t
			return nil
		}
	}
	return nil
}

func (s *Store) DeleteTraining(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Trainings {
		if s.Trainings[i].ID == id {
			s.Trainings = append(s.Trainings[:i], s.Trainings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountTrainings(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Trainings)), nil
}

func (s *Store) CountTrainingsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, t := range s.Trainings {
		if t.Created <= cutoff {
			n++
		}
	}
	return n, nil
}

func (s *Store) SumTrainingHours(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var sum int64
	for _, t := range s.Trainings {
		sum += t.DurationHours
	}
	return sum, nil
}

// Enrollment methods

func (s *Store) CreateEnrollment(ctx context.Context, e *models.Enrollment) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	e.ID = s.id()
	s.Enrollments = append(s.Enrollments, *e)
	return e.ID, nil
}

func (s *Store) GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Enrollments {
		if s.Enrollments[i].ID == id {
			e := s.Enrollments[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) GetActiveEnrollment(ctx context.Context, employeeID, trainingID int64) (*models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Enrollments {
		e := s.Enrollments[i]
		if e.EmployeeID == employeeID && e.TrainingID == trainingID && e.Active() {
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) ListEnrollments(ctx context.Context, limit, offset int) ([]models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if offset < 0 || offset >= len(s.Enrollments) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	end := offset + limit
	if end > len(s.Enrollments) {
		end = len(s.Enrollments)
	}
	return append([]models.Enrollment(nil), s.Enrollments[offset:end]...), nil
}

func (s *Store) ListAllEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Enrollment(nil), s.Enrollments...), nil
}

func (s *Store) ListEnrollmentsByEmployee(ctx context.Context, employeeID int64) ([]models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Enrollment
	for _, e := range s.Enrollments {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListRecentEnrollments(ctx context.Context, limit int) ([]models.Enrollment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit <= 0 {
		limit = 8
	}
	out := append([]models.Enrollment(nil), s.Enrollments...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Enrollments {
		if s.Enrollments[i].ID == e.ID {
			s.Enrollments[i] = *e
			return nil
		}
	}
	return nil
}

func (s *Store) DeleteEnrollment(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Enrollments {
		if s.Enrollments[i].ID == id {
			s.Enrollments = append(s.Enrollments[:i], s.Enrollments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountEnrollments(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Enrollments)), nil
}

func (s *Store) CountEnrollmentsByStatus(ctx context.Context, statuses ...string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, e := range s.Enrollments {
		for _, st := range statuses {
			if e.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *Store) CountEnrollmentsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, e := range s.Enrollments {
		if e.Created <= cutoff {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountEnrollmentsCompletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, e := range s.Enrollments {
		if e.CompletedDate != nil && *e.CompletedDate <= cutoff {
			n++
		}
	}
	return n, nil
}

// Certification methods

func (s *Store) CreateCertification(ctx context.Context, c *models.Certification) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	c.ID = s.id()
	s.Certifications = append(s.Certifications, *c)
	return c.ID, nil
}

func (s *Store) GetCertificationByID(ctx context.Context, id int64) (*models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Certifications {
		if s.Certifications[i].ID == id {
			c := s.Certifications[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetCertificationByEnrollmentID(ctx context.Context, enrollmentID int64) (*models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Certifications {
		if s.Certifications[i].EnrollmentID == enrollmentID {
			c := s.Certifications[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetCertificationByNumber(ctx context.Context, certNumber string) (*models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Certifications {
		if s.Certifications[i].CertNumber == certNumber {
			c := s.Certifications[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListCertifications(ctx context.Context, limit, offset int) ([]models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if offset < 0 || offset >= len(s.Certifications) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	end := offset + limit
	if end > len(s.Certifications) {
		end = len(s.Certifications)
	}
	return append([]models.Certification(nil), s.Certifications[offset:end]...), nil
}

func (s *Store) ListAllCertifications(ctx context.Context) ([]models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Certification(nil), s.Certifications...), nil
}

func (s *Store) ListCertificationsByEmployee(ctx context.Context, employeeID int64) ([]models.Certification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Certification
	for _, c := range s.Certifications {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpdateCertification(ctx context.Context, c *models.Certification) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Certifications {
		if s.Certifications[i].ID == c.ID {
			s.Certifications[i] = *c
			return nil
		}
	}
	return nil
}

func (s *Store) DeleteCertification(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Certifications {
		if s.Certifications[i].ID == id {
			s.Certifications = append(s.Certifications[:i], s.Certifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountCertifications(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Certifications)), nil
}

func (s *Store) CountCertificationsCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, c := range s.Certifications {
		if c.Created <= cutoff {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountCertificationsExpiringBetween(ctx context.Context, from, to, createdBefore int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, c := range s.Certifications {
		if c.ExpiresAt == nil || *c.ExpiresAt < from || *c.ExpiresAt > to {
			continue
		}
		if createdBefore > 0 && c.Created > createdBefore {
			continue
		}
		n++
	}
	return n, nil
}

// User methods

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	u.ID = s.id()
	s.Users = append(s.Users, *u)
	return u.ID, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Users {
		if s.Users[i].Email == email {
			u := s.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}
