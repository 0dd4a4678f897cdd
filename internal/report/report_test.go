package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/internal/compliance"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository/mock"
)

var testNow = time.Date(2026, 1, 15, 14, 30, 2, 0, time.UTC)

func newExporter(store *mock.Store) *Exporter {
	clk := clock.Fixed(testNow)
	return NewExporter(compliance.NewEngine(store, store, store, store, store, clk), clk)
}

func seedReportData(t *testing.T, store *mock.Store) {
	t.Helper()
	ctx := context.Background()

	deptID, err := store.CreateDepartment(ctx, &models.Department{Name: "Operations"})
	if err != nil {
		t.Fatalf("seed department: %v", err)
	}
	empID, err := store.CreateEmployee(ctx, &models.Employee{
		Code: "EMP001", FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", DepartmentID: &deptID, IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	trID, err := store.CreateTraining(ctx, &models.Training{Name: "Safety Basics", DurationHours: 8})
	if err != nil {
		t.Fatalf("seed training: %v", err)
	}

	completed := clock.Millis(testNow.AddDate(0, 0, -50))
	enrollID, err := store.CreateEnrollment(ctx, &models.Enrollment{
		EmployeeID: empID, TrainingID: trID,
		Status: models.EnrollmentCompleted, Progress: 100, CompletedDate: &completed,
	})
	if err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	expires := clock.Millis(testNow.AddDate(0, 0, 10))
	if _, err := store.CreateCertification(ctx, &models.Certification{
		EmployeeID: empID, TrainingID: trID, EnrollmentID: enrollID,
		CertNumber: "CERT-20251126-000001", IssuedDate: clock.Millis(testNow.AddDate(0, 0, -50)),
		ExpiresAt: &expires, Status: models.CertificationActive,
	}); err != nil {
		t.Fatalf("seed certification: %v", err)
	}
}

func TestExcelSignature(t *testing.T) {
	store := mock.NewStore()
	seedReportData(t, store)

	data, err := newExporter(store).Excel(context.Background(), compliance.FilterAll)
	if err != nil {
		t.Fatalf("excel export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("workbook missing ZIP signature, got % x", data[:4])
	}
}

func TestExcelEmptyReportStillValid(t *testing.T) {
	data, err := newExporter(mock.NewStore()).Excel(context.Background(), compliance.FilterAll)
	if err != nil {
		t.Fatalf("excel export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("empty report workbook missing ZIP signature")
	}
}

func TestExcelFallbackOnEngineError(t *testing.T) {
	store := mock.NewStore()
	store.Err = context.DeadlineExceeded

	data, err := newExporter(store).Excel(context.Background(), compliance.FilterAll)
	if err != nil {
		t.Fatalf("excel export must degrade, not fail: %v", err)
	}
	// The fallback is still a valid workbook.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("error workbook missing ZIP signature")
	}
}

func TestPDFSignature(t *testing.T) {
	store := mock.NewStore()
	seedReportData(t, store)

	data, err := newExporter(store).PDF(context.Background(), compliance.FilterAll)
	if err != nil {
		t.Fatalf("pdf export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("document missing PDF signature, got % x", data[:4])
	}
}

func TestPDFFallsBackToWorkbookOnEngineError(t *testing.T) {
	store := mock.NewStore()
	store.Err = context.DeadlineExceeded

	data, err := newExporter(store).PDF(context.Background(), compliance.FilterAll)
	if err != nil {
		t.Fatalf("pdf export must degrade, not fail: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("fallback stream is not a workbook")
	}
}

func TestFilename(t *testing.T) {
	got := Filename("xlsx", testNow)
	want := "compliance_report_20260115_143002.xlsx"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}
