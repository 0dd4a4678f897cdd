package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository/mock"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func ms(t time.Time) int64 { return clock.Millis(t) }

func inDays(n int) *int64 {
	v := ms(testNow.AddDate(0, 0, n))
	return &v
}

func newEngine(store *mock.Store) *Engine {
	return NewEngine(store, store, store, store, store, clock.Fixed(testNow))
}

func seedDepartment(t *testing.T, store *mock.Store, name string) int64 {
	t.Helper()
	id, err := store.CreateDepartment(context.Background(), &models.Department{Name: name})
	if err != nil {
		t.Fatalf("seed department: %v", err)
	}
	return id
}

func seedEmployee(t *testing.T, store *mock.Store, code, first, last string, deptID *int64) int64 {
	t.Helper()
	id, err := store.CreateEmployee(context.Background(), &models.Employee{
		Code: code, FirstName: first, LastName: last,
		Email: code + "@example.com", DepartmentID: deptID, IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return id
}

func seedTraining(t *testing.T, store *mock.Store, name string) int64 {
	t.Helper()
	id, err := store.CreateTraining(context.Background(), &models.Training{Name: name, DurationHours: 8})
	if err != nil {
		t.Fatalf("seed training: %v", err)
	}
	return id
}

func seedEnrollment(t *testing.T, store *mock.Store, empID, trID int64, status string, completed *int64) int64 {
	t.Helper()
	id, err := store.CreateEnrollment(context.Background(), &models.Enrollment{
		EmployeeID: empID, TrainingID: trID, Status: status,
		EnrolledDate: ms(testNow.AddDate(0, 0, -60)), CompletedDate: completed,
	})
	if err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	return id
}

func seedCertification(t *testing.T, store *mock.Store, empID, trID, enrollID int64, status string, expires *int64) int64 {
	t.Helper()
	id, err := store.CreateCertification(context.Background(), &models.Certification{
		EmployeeID: empID, TrainingID: trID, EnrollmentID: enrollID,
		CertNumber: "", IssuedDate: ms(testNow.AddDate(0, 0, -90)),
		ExpiresAt: expires, Status: status,
	})
	if err != nil {
		t.Fatalf("seed certification: %v", err)
	}
	return id
}

func TestReportEmptyStore(t *testing.T) {
	eng := newEngine(mock.NewStore())

	r, err := eng.Report(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.TotalEmployees != 0 || r.CompliantEmployees != 0 || r.NonCompliantEmployees != 0 {
		t.Errorf("expected zero tallies, got %+v", r)
	}
	if r.OverallComplianceRate != 0 {
		t.Errorf("rate = %v, want 0", r.OverallComplianceRate)
	}
}

func TestEmployeeWithNoRecordsIsCompliant(t *testing.T) {
	store := mock.NewStore()
	seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)
	eng := newEngine(store)

	r, err := eng.Report(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.CompliantEmployees != 1 {
		t.Errorf("compliant = %d, want 1", r.CompliantEmployees)
	}
	if r.OverallComplianceRate != 100 {
		t.Errorf("rate = %v, want 100", r.OverallComplianceRate)
	}
}

func TestComplianceTallyArithmetic(t *testing.T) {
	store := mock.NewStore()
	deptID := seedDepartment(t, store, "Operations")
	trID := seedTraining(t, store, "Safety Basics")

	// compliant: everything completed and active
	e1 := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &deptID)
	en1 := seedEnrollment(t, store, e1, trID, models.EnrollmentCompleted, inDays(-40))
	seedCertification(t, store, e1, trID, en1, models.CertificationActive, inDays(200))

	// non-compliant: in-progress enrollment
	e2 := seedEmployee(t, store, "EMP002", "Grace", "Hopper", &deptID)
	seedEnrollment(t, store, e2, trID, models.EnrollmentInProgress, nil)

	// non-compliant: expired certification
	e3 := seedEmployee(t, store, "EMP003", "Alan", "Turing", &deptID)
	en3 := seedEnrollment(t, store, e3, trID, models.EnrollmentCompleted, inDays(-100))
	seedCertification(t, store, e3, trID, en3, models.CertificationActive, inDays(-5))

	eng := newEngine(store)
	r, err := eng.Report(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if r.TotalEmployees != 3 {
		t.Fatalf("total = %d, want 3", r.TotalEmployees)
	}
	if r.CompliantEmployees+r.NonCompliantEmployees != r.TotalEmployees {
		t.Errorf("compliant %d + non-compliant %d != total %d",
			r.CompliantEmployees, r.NonCompliantEmployees, r.TotalEmployees)
	}
	if r.CompliantEmployees != 1 {
		t.Errorf("compliant = %d, want 1", r.CompliantEmployees)
	}
	if r.ExpiredCertifications != 1 {
		t.Errorf("expired flag count = %d, want 1", r.ExpiredCertifications)
	}
	if r.OverallComplianceRate < 0 || r.OverallComplianceRate > 100 {
		t.Errorf("rate %v outside [0,100]", r.OverallComplianceRate)
	}
}

func TestExpiringFlagIndependentOfCompliance(t *testing.T) {
	store := mock.NewStore()
	trID := seedTraining(t, store, "First Aid")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)
	en := seedEnrollment(t, store, empID, trID, models.EnrollmentCompleted, inDays(-50))
	// Active, unexpired, but inside the 30 day window: compliant AND flagged.
	seedCertification(t, store, empID, trID, en, models.CertificationActive, inDays(10))

	eng := newEngine(store)
	r, err := eng.Report(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.CompliantEmployees != 1 {
		t.Errorf("compliant = %d, want 1", r.CompliantEmployees)
	}
	if r.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1", r.ExpiringSoon)
	}
}

func TestDepartmentRollupSkipsEmptyDepartments(t *testing.T) {
	store := mock.NewStore()
	staffed := seedDepartment(t, store, "Operations")
	seedDepartment(t, store, "Ghost Town")
	seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &staffed)

	eng := newEngine(store)
	depts, err := eng.DepartmentCompliance(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("department compliance: %v", err)
	}
	if len(depts) != 1 {
		t.Fatalf("got %d departments, want 1", len(depts))
	}
	if depts[0].Department != "Operations" {
		t.Errorf("department = %q, want Operations", depts[0].Department)
	}
}

func TestCertificationStatusInvariants(t *testing.T) {
	store := mock.NewStore()
	trID := seedTraining(t, store, "Forklift Operation")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)

	seedCertification(t, store, empID, trID, 101, models.CertificationActive, inDays(200))
	seedCertification(t, store, empID, trID, 102, models.CertificationActive, inDays(15))
	seedCertification(t, store, empID, trID, 103, models.CertificationExpired, inDays(-10))
	seedCertification(t, store, empID, trID, 104, models.CertificationRevoked, nil)

	eng := newEngine(store)
	rows, err := eng.CertificationStatus(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("certification status: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if row.Certification != "Forklift Operation" {
		t.Errorf("certification = %q", row.Certification)
	}
	if row.Total != 4 {
		t.Errorf("total = %d, want 4", row.Total)
	}
	if row.Valid != 2 {
		t.Errorf("valid = %d, want 2", row.Valid)
	}
	if row.Expired != 1 {
		t.Errorf("expired = %d, want 1", row.Expired)
	}
	if row.Valid+row.Expired > row.Total {
		t.Errorf("valid %d + expired %d > total %d", row.Valid, row.Expired, row.Total)
	}
	if row.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1", row.ExpiringSoon)
	}
}

func TestUnknownTrainingFallback(t *testing.T) {
	store := mock.NewStore()
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)
	// Certification pointing at a training id that was deleted.
	seedCertification(t, store, empID, 999, 101, models.CertificationActive, inDays(5))

	eng := newEngine(store)
	rows, err := eng.CertificationStatus(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("certification status: %v", err)
	}
	if len(rows) != 1 || rows[0].Certification != "Unknown Training" {
		t.Fatalf("rows = %+v, want single Unknown Training group", rows)
	}
}

func TestUpcomingExpirationsWindowAndOrder(t *testing.T) {
	store := mock.NewStore()
	trID := seedTraining(t, store, "CPR")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)

	seedCertification(t, store, empID, trID, 101, models.CertificationActive, inDays(30)) // included, boundary
	seedCertification(t, store, empID, trID, 102, models.CertificationActive, inDays(31)) // excluded
	seedCertification(t, store, empID, trID, 103, models.CertificationActive, inDays(3))
	seedCertification(t, store, empID, trID, 104, models.CertificationActive, inDays(12))
	seedCertification(t, store, empID, trID, 105, models.CertificationActive, nil) // no expiry

	eng := newEngine(store)
	rows, err := eng.UpcomingExpirations(context.Background(), FilterAll, 0)
	if err != nil {
		t.Fatalf("upcoming expirations: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].DaysUntilExpiry > rows[i].DaysUntilExpiry {
			t.Errorf("rows not sorted ascending: %d before %d",
				rows[i-1].DaysUntilExpiry, rows[i].DaysUntilExpiry)
		}
	}
	if rows[0].DaysUntilExpiry != 3 || rows[2].DaysUntilExpiry != 30 {
		t.Errorf("window edges wrong: first %d last %d", rows[0].DaysUntilExpiry, rows[2].DaysUntilExpiry)
	}
}

func TestUpcomingExpirationsDaysParameter(t *testing.T) {
	store := mock.NewStore()
	trID := seedTraining(t, store, "CPR")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)
	seedCertification(t, store, empID, trID, 101, models.CertificationActive, inDays(3))
	seedCertification(t, store, empID, trID, 102, models.CertificationActive, inDays(20))

	eng := newEngine(store)
	rows, err := eng.UpcomingExpirations(context.Background(), FilterAll, 7)
	if err != nil {
		t.Fatalf("upcoming expirations: %v", err)
	}
	if len(rows) != 1 || rows[0].DaysUntilExpiry != 3 {
		t.Fatalf("rows = %+v, want only the 3 day expiry", rows)
	}
}

func TestMissingCertifications(t *testing.T) {
	store := mock.NewStore()
	tr1 := seedTraining(t, store, "Safety Basics")
	tr2 := seedTraining(t, store, "First Aid")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)

	// Completed with a matching certification, even revoked: never missing.
	en1 := seedEnrollment(t, store, empID, tr1, models.EnrollmentCompleted, inDays(-100))
	seedCertification(t, store, empID, tr1, en1, models.CertificationRevoked, nil)

	// Completed 40 days ago, no certification: missing, 10 days overdue.
	seedEnrollment(t, store, empID, tr2, models.EnrollmentCompleted, inDays(-40))

	eng := newEngine(store)
	rows, err := eng.MissingCertifications(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("missing certifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].RequiredCertification != "First Aid" {
		t.Errorf("required = %q, want First Aid", rows[0].RequiredCertification)
	}
	if rows[0].DaysOverdue != 10 {
		t.Errorf("days overdue = %d, want 10", rows[0].DaysOverdue)
	}
	if rows[0].Department != "N/A" {
		t.Errorf("department = %q, want N/A", rows[0].Department)
	}
}

func TestMissingCertificationGracePeriod(t *testing.T) {
	store := mock.NewStore()
	trID := seedTraining(t, store, "Safety Basics")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", nil)
	// Completed 10 days ago: inside the 30 day grace, overdue stays 0.
	seedEnrollment(t, store, empID, trID, models.EnrollmentCompleted, inDays(-10))

	eng := newEngine(store)
	rows, err := eng.MissingCertifications(context.Background(), FilterAll)
	if err != nil {
		t.Fatalf("missing certifications: %v", err)
	}
	if len(rows) != 1 || rows[0].DaysOverdue != 0 {
		t.Fatalf("rows = %+v, want one row with 0 days overdue", rows)
	}
}

func TestTrainingTotalIsGlobalBreakdownIsFiltered(t *testing.T) {
	store := mock.NewStore()
	ops := seedDepartment(t, store, "Operations")
	sales := seedDepartment(t, store, "Sales")
	tr1 := seedTraining(t, store, "Safety Basics")
	tr2 := seedTraining(t, store, "Negotiation")

	opsEmp := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &ops)
	salesEmp := seedEmployee(t, store, "EMP002", "Grace", "Hopper", &sales)
	seedEnrollment(t, store, opsEmp, tr1, models.EnrollmentCompleted, inDays(-10))
	seedEnrollment(t, store, salesEmp, tr2, models.EnrollmentInProgress, nil)

	eng := newEngine(store)
	stats, err := eng.TrainingStatistics(context.Background(), "Operations")
	if err != nil {
		t.Fatalf("training statistics: %v", err)
	}
	if stats.TotalTrainings != 2 {
		t.Errorf("total trainings = %d, want global 2", stats.TotalTrainings)
	}
	if stats.CompletedTrainings != 1 || stats.PendingTrainings != 0 {
		t.Errorf("breakdown = %d completed / %d pending, want 1/0", stats.CompletedTrainings, stats.PendingTrainings)
	}
}

func TestUnknownDepartmentFilterYieldsEmptyReport(t *testing.T) {
	store := mock.NewStore()
	deptID := seedDepartment(t, store, "Operations")
	seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &deptID)

	eng := newEngine(store)
	r, err := eng.Report(context.Background(), "Nonexistent")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.TotalEmployees != 0 {
		t.Errorf("total = %d, want 0", r.TotalEmployees)
	}
	if len(r.DepartmentCompliance) != 0 {
		t.Errorf("departments = %+v, want empty", r.DepartmentCompliance)
	}
}

// Two employees in Engineering: A holds an active certification expiring in
// 10 days and a second completed enrollment with no certification; B holds
// an active certification expiring in 400 days and a completed enrollment
// with a matching certification. Both are compliant under the status-only
// rule; A is flagged in upcoming expirations and its uncertified completed
// enrollment shows up in the missing list.
func TestEngineeringFixture(t *testing.T) {
	store := mock.NewStore()
	eng := seedDepartment(t, store, "Engineering")
	tr1 := seedTraining(t, store, "Cloud Architecture")
	tr2 := seedTraining(t, store, "Incident Response")

	a := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &eng)
	enA1 := seedEnrollment(t, store, a, tr1, models.EnrollmentCompleted, inDays(-200))
	seedCertification(t, store, a, tr1, enA1, models.CertificationActive, inDays(10))
	seedEnrollment(t, store, a, tr2, models.EnrollmentCompleted, inDays(-50))

	b := seedEmployee(t, store, "EMP002", "Grace", "Hopper", &eng)
	enB := seedEnrollment(t, store, b, tr1, models.EnrollmentCompleted, inDays(-300))
	seedCertification(t, store, b, tr1, enB, models.CertificationActive, inDays(400))

	engine := newEngine(store)
	r, err := engine.Report(context.Background(), "Engineering")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if r.TotalEmployees != 2 {
		t.Fatalf("total = %d, want 2", r.TotalEmployees)
	}
	if r.CompliantEmployees != 2 {
		t.Errorf("compliant = %d, want 2 (status-only rule)", r.CompliantEmployees)
	}
	if r.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1 (employee A)", r.ExpiringSoon)
	}

	if len(r.UpcomingExpirations) != 1 {
		t.Fatalf("upcoming = %+v, want exactly A's certification", r.UpcomingExpirations)
	}
	if r.UpcomingExpirations[0].EmployeeName != "Ada Lovelace" {
		t.Errorf("upcoming employee = %q", r.UpcomingExpirations[0].EmployeeName)
	}
	if r.UpcomingExpirations[0].DaysUntilExpiry != 10 {
		t.Errorf("days until expiry = %d, want 10", r.UpcomingExpirations[0].DaysUntilExpiry)
	}

	if len(r.MissingCertifications) != 1 {
		t.Fatalf("missing = %+v, want exactly A's uncertified enrollment", r.MissingCertifications)
	}
	if r.MissingCertifications[0].RequiredCertification != "Incident Response" {
		t.Errorf("missing training = %q", r.MissingCertifications[0].RequiredCertification)
	}
	if r.MissingCertifications[0].EmployeeName != "Ada Lovelace" {
		t.Errorf("missing employee = %q", r.MissingCertifications[0].EmployeeName)
	}

	if len(r.DepartmentCompliance) != 1 {
		t.Fatalf("departments = %+v, want 1", r.DepartmentCompliance)
	}
	if r.DepartmentCompliance[0].ComplianceRate != 100 {
		t.Errorf("engineering rate = %v, want 100", r.DepartmentCompliance[0].ComplianceRate)
	}
}

func TestAlerts(t *testing.T) {
	store := mock.NewStore()
	deptID := seedDepartment(t, store, "Operations")
	trID := seedTraining(t, store, "Safety Basics")

	tr2 := seedTraining(t, store, "First Aid")
	empID := seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &deptID)
	seedCertification(t, store, empID, trID, 101, models.CertificationActive, inDays(3))
	// Uncertified completed enrollment plus the in-progress one keeps the
	// department below the 70% threshold.
	seedEnrollment(t, store, empID, trID, models.EnrollmentInProgress, nil)
	seedEnrollment(t, store, empID, tr2, models.EnrollmentCompleted, inDays(-45))

	eng := newEngine(store)
	res, err := eng.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}

	if len(res.Alerts) != 1 || res.Alerts[0].Type != "critical_expiration" {
		t.Errorf("alerts = %+v, want one critical_expiration", res.Alerts)
	}
	types := map[string]bool{}
	for _, w := range res.Warnings {
		types[w.Type] = true
	}
	if !types["low_compliance"] || !types["missing_certifications"] {
		t.Errorf("warnings = %+v, want low_compliance and missing_certifications", res.Warnings)
	}
	if res.TotalAlerts != len(res.Alerts)+len(res.Warnings) {
		t.Errorf("total_alerts = %d", res.TotalAlerts)
	}
	if res.GeneratedAt == "" {
		t.Error("generated_at empty")
	}
}

func TestComplianceSummaryRiskLevels(t *testing.T) {
	tests := []struct {
		name      string
		compliant int
		total     int
		wantRisk  string
	}{
		{"all compliant", 10, 10, "Low"},
		{"medium", 8, 10, "Medium"},
		{"high", 5, 10, "High"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewStore()
			deptID := seedDepartment(t, store, "Operations")
			trID := seedTraining(t, store, "Safety Basics")
			for i := 0; i < tc.total; i++ {
				empID := seedEmployee(t, store, "EMP"+string(rune('A'+i)), "First", "Last", &deptID)
				if i >= tc.compliant {
					seedEnrollment(t, store, empID, trID, models.EnrollmentInProgress, nil)
				}
			}

			eng := newEngine(store)
			sum, err := eng.ComplianceSummary(context.Background())
			if err != nil {
				t.Fatalf("summary: %v", err)
			}
			if sum.RiskLevel != tc.wantRisk {
				t.Errorf("risk = %q, want %q (rate %v)", sum.RiskLevel, tc.wantRisk, sum.OverallCompliance)
			}
			if sum.TotalEmployees != tc.total {
				t.Errorf("total = %d, want %d", sum.TotalEmployees, tc.total)
			}
		})
	}
}

func TestComplianceSummaryDepartmentExtremes(t *testing.T) {
	store := mock.NewStore()
	good := seedDepartment(t, store, "Good")
	bad := seedDepartment(t, store, "Bad")
	trID := seedTraining(t, store, "Safety Basics")

	seedEmployee(t, store, "EMP001", "Ada", "Lovelace", &good)
	badEmp := seedEmployee(t, store, "EMP002", "Grace", "Hopper", &bad)
	seedEnrollment(t, store, badEmp, trID, models.EnrollmentInProgress, nil)

	eng := newEngine(store)
	sum, err := eng.ComplianceSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TopPerformingDepartment != "Good" {
		t.Errorf("top = %q, want Good", sum.TopPerformingDepartment)
	}
	if sum.LowestPerformingDepartment != "Bad" {
		t.Errorf("lowest = %q, want Bad", sum.LowestPerformingDepartment)
	}
}
