package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/skillflow/skillflow/internal/enrollment"
	"github.com/skillflow/skillflow/internal/validate"
	"github.com/skillflow/skillflow/pkg/apperrors"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

type EnrollmentHandler struct {
	service     *enrollment.Service
	enrollments repository.EnrollmentRepo
}

func NewEnrollmentHandler(service *enrollment.Service, enrollments repository.EnrollmentRepo) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, enrollments: enrollments}
}

type enrollRequest struct {
	EmployeeID int64  `json:"employee_id"`
	TrainingID int64  `json:"training_id"`
	StartDate  *int64 `json:"start_date,omitempty"`
	EndDate    *int64 `json:"end_date,omitempty"`
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.Enrollment, body); err != nil {
		writeError(w, err)
		return
	}

	var req enrollRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	e, err := h.service.Enroll(r.Context(), req.EmployeeID, req.TrainingID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, e, http.StatusCreated)
}

func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	ctx := r.Context()

	items, err := h.enrollments.ListEnrollments(ctx, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Enrollment{}
	}

	total, err := h.enrollments.CountEnrollments(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, listResponse{Total: total, Limit: limit, Offset: offset, Items: items}, http.StatusOK)
}

func (h *EnrollmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := h.enrollments.GetEnrollmentByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, fmt.Errorf("%w: enrollment %d", apperrors.ErrNotFound, id))
		return
	}

	writeJSON(w, e, http.StatusOK)
}

// UpdateProgress sets the completion percentage. Reaching 100 completes the
// enrollment and issues the certificate.
func (h *EnrollmentHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.EnrollmentProgress, body); err != nil {
		writeError(w, err)
		return
	}

	var req progressRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	e, err := h.service.UpdateProgress(r.Context(), id, req.Progress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

func (h *EnrollmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := h.service.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

func (h *EnrollmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

func (h *EnrollmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	e, err := h.enrollments.GetEnrollmentByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, fmt.Errorf("%w: enrollment %d", apperrors.ErrNotFound, id))
		return
	}

	if err := h.enrollments.DeleteEnrollment(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
