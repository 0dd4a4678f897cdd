// Package compliance derives employee, department and certification
// compliance metrics from the stored records. Every call recomputes from
// current state; there is no caching.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

// FilterAll selects every department.
const FilterAll = "all"

const (
	expiringWindowDays = 30
	criticalWindowDays = 7
	overdueGraceDays   = 30
)

var logger = slog.Default()

// SetLogger overrides the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Report is the full compliance report for one department filter.
type Report struct {
	TotalEmployees        int     `json:"total_employees"`
	CompliantEmployees    int     `json:"compliant_employees"`
	NonCompliantEmployees int     `json:"non_compliant_employees"`
	ExpiringSoon          int     `json:"expiring_soon"`
	ExpiredCertifications int     `json:"expired_certifications"`
	TotalTrainings        int     `json:"total_trainings"`
	CompletedTrainings    int     `json:"completed_trainings"`
	PendingTrainings      int     `json:"pending_trainings"`
	OverallComplianceRate float64 `json:"overall_compliance_rate"`

	DepartmentCompliance  []DepartmentCompliance  `json:"department_compliance"`
	CertificationStatus   []CertificationStatus   `json:"certification_status"`
	UpcomingExpirations   []UpcomingExpiration    `json:"upcoming_expirations"`
	MissingCertifications []MissingCertification  `json:"missing_certifications"`
}

type DepartmentCompliance struct {
	Department         string  `json:"department"`
	ComplianceRate     float64 `json:"compliance_rate"`
	TotalEmployees     int     `json:"total_employees"`
	CompliantEmployees int     `json:"compliant_employees"`
	CompletedTrainings int     `json:"completed_trainings"`
	PendingTrainings   int     `json:"pending_trainings"`
	TotalTrainings     int     `json:"total_trainings"`
}

type CertificationStatus struct {
	Certification  string  `json:"certification"`
	Total          int     `json:"total"`
	Valid          int     `json:"valid"`
	ExpiringSoon   int     `json:"expiring_soon"`
	Expired        int     `json:"expired"`
	ComplianceRate float64 `json:"compliance_rate"`
}

type UpcomingExpiration struct {
	ID                int64  `json:"id"`
	EmployeeName      string `json:"employee_name"`
	CertificationName string `json:"certification_name"`
	ExpiryDate        string `json:"expiry_date"`
	DaysUntilExpiry   int    `json:"days_until_expiry"`
	Department        string `json:"department"`
}

type MissingCertification struct {
	ID                    int64  `json:"id"`
	EmployeeName          string `json:"employee_name"`
	RequiredCertification string `json:"required_certification"`
	Department            string `json:"department"`
	DaysOverdue           int    `json:"days_overdue"`
}

// TrainingStats carries the training tallies plus the derived rates served
// by the statistics endpoint.
type TrainingStats struct {
	TotalTrainings     int     `json:"total_trainings"`
	CompletedTrainings int     `json:"completed_trainings"`
	PendingTrainings   int     `json:"pending_trainings"`
	CompletionRate     float64 `json:"completion_rate"`
	InProgressRate     float64 `json:"in_progress_rate"`
}

// Engine computes compliance reports from the repositories.
type Engine struct {
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	trainings   repository.TrainingRepo
	enrollments repository.EnrollmentRepo
	certs       repository.CertificationRepo
	clk         clock.Clock
}

func NewEngine(
	departments repository.DepartmentRepo,
	employees repository.EmployeeRepo,
	trainings repository.TrainingRepo,
	enrollments repository.EnrollmentRepo,
	certs repository.CertificationRepo,
	clk clock.Clock,
) *Engine {
	if clk == nil {
		clk = clock.System(nil)
	}

	return &Engine{
		departments: departments,
		employees:   employees,
		trainings:   trainings,
		enrollments: enrollments,
		certs:       certs,
		clk:         clk,
	}
}

// snapshot is one batched load of every table the report needs. Reports are
// O(rows) over it instead of issuing per-employee queries.
type snapshot struct {
	departments    []models.Department
	employees      []models.Employee
	trainings      []models.Training
	enrollments    []models.Enrollment
	certifications []models.Certification

	deptByID          map[int64]models.Department
	trainingByID      map[int64]models.Training
	certsByEmployee   map[int64][]models.Certification
	enrollsByEmployee map[int64][]models.Enrollment
	certPairs         map[[2]int64]bool
}

func (g *Engine) load(ctx context.Context) (*snapshot, error) {
	s := &snapshot{
		deptByID:          make(map[int64]models.Department),
		trainingByID:      make(map[int64]models.Training),
		certsByEmployee:   make(map[int64][]models.Certification),
		enrollsByEmployee: make(map[int64][]models.Enrollment),
		certPairs:         make(map[[2]int64]bool),
	}

	var err error
	if s.departments, err = g.departments.ListDepartments(ctx); err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	if s.employees, err = g.employees.ListAllEmployees(ctx); err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	if s.trainings, err = g.trainings.ListAllTrainings(ctx); err != nil {
		return nil, fmt.Errorf("load trainings: %w", err)
	}
	if s.enrollments, err = g.enrollments.ListAllEnrollments(ctx); err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	if s.certifications, err = g.certs.ListAllCertifications(ctx); err != nil {
		return nil, fmt.Errorf("load certifications: %w", err)
	}

	for _, d := range s.departments {
		s.deptByID[d.ID] = d
	}
	for _, t := range s.trainings {
		s.trainingByID[t.ID] = t
	}
	for _, e := range s.enrollments {
		s.enrollsByEmployee[e.EmployeeID] = append(s.enrollsByEmployee[e.EmployeeID], e)
	}
	for _, c := range s.certifications {
		s.certsByEmployee[c.EmployeeID] = append(s.certsByEmployee[c.EmployeeID], c)
		s.certPairs[[2]int64{c.EmployeeID, c.TrainingID}] = true
	}

	return s, nil
}

func (s *snapshot) departmentName(e *models.Employee) string {
	if e.DepartmentID == nil {
		return ""
	}
	if d, ok := s.deptByID[*e.DepartmentID]; ok {
		return d.Name
	}
	return ""
}

func (s *snapshot) trainingName(id int64) string {
	if t, ok := s.trainingByID[id]; ok {
		return t.Name
	}
	return "Unknown Training"
}

// matches reports whether the employee passes the department filter. Filter
// "all" passes everyone, including employees without a department.
func (s *snapshot) matches(e *models.Employee, filter string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return s.departmentName(e) == filter
}

// daysUntil counts calendar days from now to the stored expiry in the
// report timezone. Negative means already past.
func (g *Engine) daysUntil(now time.Time, ms int64) int {
	return clock.DaysBetween(now, clock.FromMillis(ms, now.Location()))
}

type employeeStanding struct {
	compliant   bool
	hasExpiring bool
	hasExpired  bool
}

// classify applies the compliance rule to one employee: compliant iff every
// certification is active and unexpired and every enrollment is completed.
// Empty collections pass vacuously, so an employee with no records at all is
// compliant. The expiring and expired flags are independent of compliance.
func (g *Engine) classify(s *snapshot, employeeID int64, now time.Time) employeeStanding {
	st := employeeStanding{compliant: true}

	for _, c := range s.certsByEmployee[employeeID] {
		valid := c.Status == models.CertificationActive &&
			(c.ExpiresAt == nil || g.daysUntil(now, *c.ExpiresAt) >= 0)
		if !valid {
			st.compliant = false
		}
		if c.ExpiresAt != nil {
			d := g.daysUntil(now, *c.ExpiresAt)
			if d >= 0 && d <= expiringWindowDays {
				st.hasExpiring = true
			}
			if d < 0 {
				st.hasExpired = true
			}
		}
	}

	for _, e := range s.enrollsByEmployee[employeeID] {
		if e.Status != models.EnrollmentCompleted {
			st.compliant = false
		}
	}

	return st
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Report builds the full compliance report for a department filter. Empty
// data yields zero-filled sections, never an error; unknown department names
// yield empty collections.
func (g *Engine) Report(ctx context.Context, filter string) (*Report, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}

	now := g.clk.Now()
	r := &Report{}

	for i := range s.employees {
		e := &s.employees[i]
		if !s.matches(e, filter) {
			continue
		}
		r.TotalEmployees++

		st := g.classify(s, e.ID, now)
		if st.compliant {
			r.CompliantEmployees++
		}
		if st.hasExpiring {
			r.ExpiringSoon++
		}
		if st.hasExpired {
			r.ExpiredCertifications++
		}
	}
	r.NonCompliantEmployees = r.TotalEmployees - r.CompliantEmployees
	if r.TotalEmployees > 0 {
		r.OverallComplianceRate = round2(float64(r.CompliantEmployees) / float64(r.TotalEmployees) * 100)
	}

	r.DepartmentCompliance = g.departmentCompliance(s, filter, now)
	r.CertificationStatus = g.certificationStatus(s, filter, now)
	r.UpcomingExpirations = g.upcomingExpirations(s, filter, now)
	r.MissingCertifications = g.missingCertifications(s, filter, now)

	stats := g.trainingStats(s, filter)
	r.TotalTrainings = stats.TotalTrainings
	r.CompletedTrainings = stats.CompletedTrainings
	r.PendingTrainings = stats.PendingTrainings

	logger.Debug("compliance report built",
		"filter", filter,
		"total_employees", r.TotalEmployees,
		"compliance_rate", r.OverallComplianceRate)

	return r, nil
}

func (g *Engine) departmentCompliance(s *snapshot, filter string, now time.Time) []DepartmentCompliance {
	var out []DepartmentCompliance

	for _, dept := range s.departments {
		if filter != "" && filter != FilterAll && dept.Name != filter {
			continue
		}

		var members []*models.Employee
		for i := range s.employees {
			e := &s.employees[i]
			if e.DepartmentID != nil && *e.DepartmentID == dept.ID {
				members = append(members, e)
			}
		}
		// Departments without employees are omitted, not zero-filled.
		if len(members) == 0 {
			continue
		}

		dc := DepartmentCompliance{Department: dept.Name, TotalEmployees: len(members)}
		for _, e := range members {
			if g.classify(s, e.ID, now).compliant {
				dc.CompliantEmployees++
			}
			for _, en := range s.enrollsByEmployee[e.ID] {
				dc.TotalTrainings++
				switch en.Status {
				case models.EnrollmentCompleted:
					dc.CompletedTrainings++
				case models.EnrollmentEnrolled, models.EnrollmentInProgress:
					dc.PendingTrainings++
				}
			}
		}
		dc.ComplianceRate = round2(float64(dc.CompliantEmployees) / float64(dc.TotalEmployees) * 100)

		out = append(out, dc)
	}

	return out
}

func (g *Engine) certificationStatus(s *snapshot, filter string, now time.Time) []CertificationStatus {
	empByID := make(map[int64]*models.Employee, len(s.employees))
	for i := range s.employees {
		empByID[s.employees[i].ID] = &s.employees[i]
	}

	groups := make(map[string][]models.Certification)
	var order []string
	for _, c := range s.certifications {
		e, ok := empByID[c.EmployeeID]
		if !ok || !s.matches(e, filter) {
			continue
		}
		name := s.trainingName(c.TrainingID)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}

	out := make([]CertificationStatus, 0, len(order))
	for _, name := range order {
		certs := groups[name]
		cs := CertificationStatus{Certification: name, Total: len(certs)}
		for _, c := range certs {
			valid := c.Status == models.CertificationActive &&
				(c.ExpiresAt == nil || g.daysUntil(now, *c.ExpiresAt) >= 0)
			if valid {
				cs.Valid++
			}
			if c.ExpiresAt != nil {
				d := g.daysUntil(now, *c.ExpiresAt)
				if d >= 0 && d <= expiringWindowDays {
					cs.ExpiringSoon++
				}
				if d < 0 {
					cs.Expired++
				}
			}
		}
		if cs.Total > 0 {
			cs.ComplianceRate = round2(float64(cs.Valid) / float64(cs.Total) * 100)
		}
		out = append(out, cs)
	}

	return out
}

func (g *Engine) upcomingExpirations(s *snapshot, filter string, now time.Time) []UpcomingExpiration {
	empByID := make(map[int64]*models.Employee, len(s.employees))
	for i := range s.employees {
		empByID[s.employees[i].ID] = &s.employees[i]
	}

	var out []UpcomingExpiration
	for _, c := range s.certifications {
		if c.ExpiresAt == nil {
			continue
		}
		e, ok := empByID[c.EmployeeID]
		if !ok || !s.matches(e, filter) {
			continue
		}
		d := g.daysUntil(now, *c.ExpiresAt)
		if d < 0 || d > expiringWindowDays {
			continue
		}

		dept := s.departmentName(e)
		if dept == "" {
			dept = "N/A"
		}
		out = append(out, UpcomingExpiration{
			ID:                c.ID,
			EmployeeName:      e.FullName(),
			CertificationName: s.trainingName(c.TrainingID),
			ExpiryDate:        clock.FromMillis(*c.ExpiresAt, now.Location()).Format("2006-01-02"),
			DaysUntilExpiry:   d,
			Department:        dept,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntilExpiry < out[j].DaysUntilExpiry })
	return out
}

func (g *Engine) missingCertifications(s *snapshot, filter string, now time.Time) []MissingCertification {
	empByID := make(map[int64]*models.Employee, len(s.employees))
	for i := range s.employees {
		empByID[s.employees[i].ID] = &s.employees[i]
	}

	var out []MissingCertification
	for _, en := range s.enrollments {
		if en.Status != models.EnrollmentCompleted {
			continue
		}
		if s.certPairs[[2]int64{en.EmployeeID, en.TrainingID}] {
			continue
		}
		e, ok := empByID[en.EmployeeID]
		if !ok || !s.matches(e, filter) {
			continue
		}

		// Completion starts a 30 day grace period before the gap counts
		// as overdue.
		daysOverdue := 0
		if en.CompletedDate != nil {
			completed := clock.FromMillis(*en.CompletedDate, now.Location())
			if d := clock.DaysBetween(completed, now) - overdueGraceDays; d > 0 {
				daysOverdue = d
			}
		}

		dept := s.departmentName(e)
		if dept == "" {
			dept = "N/A"
		}
		out = append(out, MissingCertification{
			ID:                    en.EmployeeID,
			EmployeeName:          e.FullName(),
			RequiredCertification: s.trainingName(en.TrainingID),
			Department:            dept,
			DaysOverdue:           daysOverdue,
		})
	}

	return out
}

// trainingStats: the training total is global while the enrollment breakdown
// honors the department filter. That asymmetry is intentional.
func (g *Engine) trainingStats(s *snapshot, filter string) TrainingStats {
	empByID := make(map[int64]*models.Employee, len(s.employees))
	for i := range s.employees {
		empByID[s.employees[i].ID] = &s.employees[i]
	}

	stats := TrainingStats{TotalTrainings: len(s.trainings)}
	for _, en := range s.enrollments {
		e, ok := empByID[en.EmployeeID]
		if !ok || !s.matches(e, filter) {
			continue
		}
		switch en.Status {
		case models.EnrollmentCompleted:
			stats.CompletedTrainings++
		case models.EnrollmentEnrolled, models.EnrollmentInProgress:
			stats.PendingTrainings++
		}
	}
	if stats.TotalTrainings > 0 {
		stats.CompletionRate = round2(float64(stats.CompletedTrainings) / float64(stats.TotalTrainings) * 100)
		stats.InProgressRate = round2(float64(stats.PendingTrainings) / float64(stats.TotalTrainings) * 100)
	}

	return stats
}

// DepartmentCompliance exposes the department rollup on its own.
func (g *Engine) DepartmentCompliance(ctx context.Context, filter string) ([]DepartmentCompliance, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return g.departmentCompliance(s, filter, g.clk.Now()), nil
}

// CertificationStatus exposes the per-training certification breakdown.
func (g *Engine) CertificationStatus(ctx context.Context, filter string) ([]CertificationStatus, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return g.certificationStatus(s, filter, g.clk.Now()), nil
}

// UpcomingExpirations lists certifications expiring within days of now,
// soonest first. Days beyond the 30 day report window are still honored as
// a post-filter on the window contents.
func (g *Engine) UpcomingExpirations(ctx context.Context, filter string, days int) ([]UpcomingExpiration, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}

	all := g.upcomingExpirations(s, filter, g.clk.Now())
	if days <= 0 {
		days = expiringWindowDays
	}
	out := make([]UpcomingExpiration, 0, len(all))
	for _, exp := range all {
		if exp.DaysUntilExpiry <= days {
			out = append(out, exp)
		}
	}

	return out, nil
}

// MissingCertifications lists completed enrollments with no certification
// for the same employee and training.
func (g *Engine) MissingCertifications(ctx context.Context, filter string) ([]MissingCertification, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return g.missingCertifications(s, filter, g.clk.Now()), nil
}

// TrainingStatistics exposes the training tallies with completion rates.
func (g *Engine) TrainingStatistics(ctx context.Context, filter string) (*TrainingStats, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	stats := g.trainingStats(s, filter)
	return &stats, nil
}
