// Package enrollment owns the enrollment lifecycle and the certificate
// issuance that completing a training triggers.
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/pkg/apperrors"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

const certValidity = 365 * 24 * time.Hour

var logger = slog.Default()

// SetLogger overrides the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Service drives enrollments through enrolled -> in_progress -> completed
// and issues a certification exactly once per completed enrollment.
type Service struct {
	employees   repository.EmployeeRepo
	trainings   repository.TrainingRepo
	enrollments repository.EnrollmentRepo
	certs       repository.CertificationRepo
	clk         clock.Clock
}

func NewService(
	employees repository.EmployeeRepo,
	trainings repository.TrainingRepo,
	enrollments repository.EnrollmentRepo,
	certs repository.CertificationRepo,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.System(nil)
	}

	return &Service{
		employees:   employees,
		trainings:   trainings,
		enrollments: enrollments,
		certs:       certs,
		clk:         clk,
	}
}

// Enroll registers an employee on a training. Both sides must exist and the
// pair must not already hold an active enrollment; a completed or cancelled
// enrollment for the same pair does not block re-enrollment.
func (s *Service) Enroll(ctx context.Context, employeeID, trainingID int64, startDate, endDate *int64) (*models.Enrollment, error) {
	emp, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup employee: %w", err)
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: employee %d", apperrors.ErrNotFound, employeeID)
	}

	tr, err := s.trainings.GetTrainingByID(ctx, trainingID)
	if err != nil {
		return nil, fmt.Errorf("lookup training: %w", err)
	}
	if tr == nil {
		return nil, fmt.Errorf("%w: training %d", apperrors.ErrNotFound, trainingID)
	}

	active, err := s.enrollments.GetActiveEnrollment(ctx, employeeID, trainingID)
	if err != nil {
		return nil, fmt.Errorf("check active enrollment: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: employee %d already enrolled in training %d", apperrors.ErrConflict, employeeID, trainingID)
	}

	e := &models.Enrollment{
		EmployeeID:   employeeID,
		TrainingID:   trainingID,
		Status:       models.EnrollmentEnrolled,
		Progress:     0,
		EnrolledDate: clock.Millis(s.clk.Now()),
		StartDate:    startDate,
		EndDate:      endDate,
	}

	id, err := s.enrollments.CreateEnrollment(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	e.ID = id

	logger.Info("enrollment created", "enrollment_id", id, "employee_id", employeeID, "training_id", trainingID)
	return e, nil
}

// UpdateProgress moves progress on an active enrollment. Crossing zero flips
// the status to in_progress and stamps the start date; reaching 100 completes
// the enrollment and issues the certificate.
func (s *Service) UpdateProgress(ctx context.Context, id int64, progress int) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: progress must be between 0 and 100, got %d", apperrors.ErrValidation, progress)
	}

	e, err := s.enrollments.GetEnrollmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: enrollment %d", apperrors.ErrNotFound, id)
	}

	switch e.Status {
	case models.EnrollmentCompleted:
		return nil, fmt.Errorf("%w: enrollment %d is already completed", apperrors.ErrConflict, id)
	case models.EnrollmentCancelled:
		return nil, fmt.Errorf("%w: enrollment %d is cancelled", apperrors.ErrConflict, id)
	}

	e.Progress = progress
	if progress > 0 && e.Status == models.EnrollmentEnrolled {
		e.Status = models.EnrollmentInProgress
		if e.StartDate == nil {
			ms := clock.Millis(s.clk.Now())
			e.StartDate = &ms
		}
	}

	if progress == 100 {
		return s.complete(ctx, e)
	}

	if err := s.enrollments.UpdateEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	return e, nil
}

// Complete finishes the enrollment regardless of recorded progress and
// issues the certificate. Completing twice is a conflict.
func (s *Service) Complete(ctx context.Context, id int64) (*models.Enrollment, error) {
	e, err := s.enrollments.GetEnrollmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: enrollment %d", apperrors.ErrNotFound, id)
	}

	switch e.Status {
	case models.EnrollmentCompleted:
		return nil, fmt.Errorf("%w: enrollment %d is already completed", apperrors.ErrConflict, id)
	case models.EnrollmentCancelled:
		return nil, fmt.Errorf("%w: enrollment %d is cancelled", apperrors.ErrConflict, id)
	}

	return s.complete(ctx, e)
}

// Cancel marks an active enrollment cancelled. No certificate is issued and
// the slot opens up for re-enrollment.
func (s *Service) Cancel(ctx context.Context, id int64) (*models.Enrollment, error) {
	e, err := s.enrollments.GetEnrollmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: enrollment %d", apperrors.ErrNotFound, id)
	}
	if e.Status == models.EnrollmentCompleted {
		return nil, fmt.Errorf("%w: enrollment %d is already completed", apperrors.ErrConflict, id)
	}

	e.Status = models.EnrollmentCancelled
	if err := s.enrollments.UpdateEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	return e, nil
}

func (s *Service) complete(ctx context.Context, e *models.Enrollment) (*models.Enrollment, error) {
	now := s.clk.Now()
	ms := clock.Millis(now)

	e.Status = models.EnrollmentCompleted
	e.Progress = 100
	e.CompletedDate = &ms
	if e.StartDate == nil {
		e.StartDate = &ms
	}

	if err := s.enrollments.UpdateEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	if err := s.ensureCertificate(ctx, e, now); err != nil {
		return nil, err
	}

	logger.Info("enrollment completed", "enrollment_id", e.ID, "employee_id", e.EmployeeID, "training_id", e.TrainingID)
	return e, nil
}

// ensureCertificate issues the certificate for a completed enrollment if one
// does not exist yet. The enrollment_id lookup makes issuance idempotent.
func (s *Service) ensureCertificate(ctx context.Context, e *models.Enrollment, now time.Time) error {
	existing, err := s.certs.GetCertificationByEnrollmentID(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("check certification: %w", err)
	}
	if existing != nil {
		return nil
	}

	expires := clock.Millis(now.Add(certValidity))
	c := &models.Certification{
		EmployeeID:   e.EmployeeID,
		TrainingID:   e.TrainingID,
		EnrollmentID: e.ID,
		CertNumber:   CertNumber(now, e.ID),
		IssuedDate:   clock.Millis(now),
		ExpiresAt:    &expires,
		Status:       models.CertificationActive,
	}

	id, err := s.certs.CreateCertification(ctx, c)
	if err != nil {
		return fmt.Errorf("issue certification: %w", err)
	}

	logger.Info("certification issued", "certification_id", id, "cert_number", c.CertNumber, "enrollment_id", e.ID)
	return nil
}

// CertNumber builds the deterministic certificate number for an enrollment
// completed at t, e.g. CERT-20260115-000042.
func CertNumber(t time.Time, enrollmentID int64) string {
	return fmt.Sprintf("CERT-%s-%06d", t.Format("20060102"), enrollmentID)
}
