package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/skillflow/skillflow/internal/validate"
	"github.com/skillflow/skillflow/pkg/apperrors"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

type EmployeeHandler struct {
	employees   repository.EmployeeRepo
	departments repository.DepartmentRepo
}

func NewEmployeeHandler(employees repository.EmployeeRepo, departments repository.DepartmentRepo) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, departments: departments}
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.Employee, body); err != nil {
		writeError(w, err)
		return
	}

	var e models.Employee
	if err := json.Unmarshal(body, &e); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	ctx := r.Context()

	if err := h.checkUnique(ctx, &e, 0); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkDepartment(ctx, e.DepartmentID); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.employees.CreateEmployee(ctx, &e)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.employees.GetEmployeeByID(ctx, id)
	if err != nil || created == nil {
		writeError(w, fmt.Errorf("reload employee %d: %v", id, err))
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	ctx := r.Context()

	items, err := h.employees.ListEmployees(ctx, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Employee{}
	}

	total, err := h.employees.CountEmployees(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, listResponse{Total: total, Limit: limit, Offset: offset, Items: items}, http.StatusOK)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := h.employees.GetEmployeeByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, fmt.Errorf("%w: employee %d", apperrors.ErrNotFound, id))
		return
	}

	writeJSON(w, e, http.StatusOK)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	if err := validate.Payload(r.Context(), validate.Employee, body); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	e, err := h.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, fmt.Errorf("%w: employee %d", apperrors.ErrNotFound, id))
		return
	}

	if err := json.Unmarshal(body, e); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	e.ID = id

	if err := h.checkUnique(ctx, e, id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkDepartment(ctx, e.DepartmentID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.employees.UpdateEmployee(ctx, e); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.employees.GetEmployeeByID(ctx, id)
	if err != nil || updated == nil {
		writeError(w, fmt.Errorf("reload employee %d: %v", id, err))
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	e, err := h.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if e == nil {
		writeError(w, fmt.Errorf("%w: employee %d", apperrors.ErrNotFound, id))
		return
	}

	if err := h.employees.DeleteEmployee(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkUnique enforces email and employee-code uniqueness; selfID exempts
// the record being updated.
func (h *EmployeeHandler) checkUnique(ctx context.Context, e *models.Employee, selfID int64) error {
	byEmail, err := h.employees.GetEmployeeByEmail(ctx, e.Email)
	if err != nil {
		return err
	}
	if byEmail != nil && byEmail.ID != selfID {
		return fmt.Errorf("%w: email %q already in use", apperrors.ErrConflict, e.Email)
	}

	byCode, err := h.employees.GetEmployeeByCode(ctx, e.Code)
	if err != nil {
		return err
	}
	if byCode != nil && byCode.ID != selfID {
		return fmt.Errorf("%w: employee code %q already in use", apperrors.ErrConflict, e.Code)
	}

	return nil
}

// checkDepartment verifies a referenced department exists. A nil id means the
// employee is unassigned, which is allowed.
func (h *EmployeeHandler) checkDepartment(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}

	d, err := h.departments.GetDepartmentByID(ctx, *id)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: department %d", apperrors.ErrNotFound, *id)
	}

	return nil
}
