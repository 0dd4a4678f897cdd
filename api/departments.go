package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/skillflow/skillflow/internal/validate"
	"github.com/skillflow/skillflow/pkg/apperrors"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

type DepartmentHandler struct {
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
}

func NewDepartmentHandler(departments repository.DepartmentRepo, employees repository.EmployeeRepo) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, employees: employees}
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.Department, body); err != nil {
		writeError(w, err)
		return
	}

	var d models.Department
	if err := json.Unmarshal(body, &d); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	ctx := r.Context()

	existing, err := h.departments.GetDepartmentByName(ctx, d.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		writeError(w, fmt.Errorf("%w: department %q already exists", apperrors.ErrConflict, d.Name))
		return
	}

	id, err := h.departments.CreateDepartment(ctx, &d)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.departments.GetDepartmentByID(ctx, id)
	if err != nil || created == nil {
		writeError(w, fmt.Errorf("reload department %d: %v", id, err))
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.departments.ListDepartments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Department{}
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := h.departments.GetDepartmentByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if d == nil {
		writeError(w, fmt.Errorf("%w: department %d", apperrors.ErrNotFound, id))
		return
	}

	writeJSON(w, d, http.StatusOK)
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	if err := validate.Payload(r.Context(), validate.Department, body); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	d, err := h.departments.GetDepartmentByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if d == nil {
		writeError(w, fmt.Errorf("%w: department %d", apperrors.ErrNotFound, id))
		return
	}

	if err := json.Unmarshal(body, d); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	d.ID = id

	if other, err := h.departments.GetDepartmentByName(ctx, d.Name); err != nil {
		writeError(w, err)
		return
	} else if other != nil && other.ID != id {
		writeError(w, fmt.Errorf("%w: department %q already exists", apperrors.ErrConflict, d.Name))
		return
	}

	if err := h.departments.UpdateDepartment(ctx, d); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.departments.GetDepartmentByID(ctx, id)
	if err != nil || updated == nil {
		writeError(w, fmt.Errorf("reload department %d: %v", id, err))
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	d, err := h.departments.GetDepartmentByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if d == nil {
		writeError(w, fmt.Errorf("%w: department %d", apperrors.ErrNotFound, id))
		return
	}

	if err := h.departments.DeleteDepartment(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Employees lists the employees assigned to a department.
func (h *DepartmentHandler) Employees(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	d, err := h.departments.GetDepartmentByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if d == nil {
		writeError(w, fmt.Errorf("%w: department %d", apperrors.ErrNotFound, id))
		return
	}

	items, err := h.employees.ListEmployeesByDepartment(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Employee{}
	}

	writeJSON(w, items, http.StatusOK)
}
