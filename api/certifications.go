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

type CertificationHandler struct {
	certs repository.CertificationRepo
}

func NewCertificationHandler(certs repository.CertificationRepo) *CertificationHandler {
	return &CertificationHandler{certs: certs}
}

// Create registers an externally issued certificate. Certificates for
// completed in-house trainings are issued automatically.
func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.Certification, body); err != nil {
		writeError(w, err)
		return
	}

	var c models.Certification
	if err := json.Unmarshal(body, &c); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	if c.Status == "" {
		c.Status = models.CertificationActive
	}

	ctx := r.Context()

	if existing, err := h.certs.GetCertificationByNumber(ctx, c.CertNumber); err != nil {
		writeError(w, err)
		return
	} else if existing != nil {
		writeError(w, fmt.Errorf("%w: certificate number %q already exists", apperrors.ErrConflict, c.CertNumber))
		return
	}

	if c.EnrollmentID != 0 {
		if existing, err := h.certs.GetCertificationByEnrollmentID(ctx, c.EnrollmentID); err != nil {
			writeError(w, err)
			return
		} else if existing != nil {
			writeError(w, fmt.Errorf("%w: enrollment %d already has a certificate", apperrors.ErrConflict, c.EnrollmentID))
			return
		}
	}

	id, err := h.certs.CreateCertification(ctx, &c)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.certs.GetCertificationByID(ctx, id)
	if err != nil || created == nil {
		writeError(w, fmt.Errorf("reload certification %d: %v", id, err))
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *CertificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	ctx := r.Context()

	items, err := h.certs.ListCertifications(ctx, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Certification{}
	}

	total, err := h.certs.CountCertifications(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, listResponse{Total: total, Limit: limit, Offset: offset, Items: items}, http.StatusOK)
}

func (h *CertificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := h.certs.GetCertificationByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, fmt.Errorf("%w: certification %d", apperrors.ErrNotFound, id))
		return
	}

	writeJSON(w, c, http.StatusOK)
}

func (h *CertificationHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	if err := validate.Payload(r.Context(), validate.Certification, body); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	c, err := h.certs.GetCertificationByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, fmt.Errorf("%w: certification %d", apperrors.ErrNotFound, id))
		return
	}

	if err := json.Unmarshal(body, c); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	c.ID = id

	if other, err := h.certs.GetCertificationByNumber(ctx, c.CertNumber); err != nil {
		writeError(w, err)
		return
	} else if other != nil && other.ID != id {
		writeError(w, fmt.Errorf("%w: certificate number %q already exists", apperrors.ErrConflict, c.CertNumber))
		return
	}

	if err := h.certs.UpdateCertification(ctx, c); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.certs.GetCertificationByID(ctx, id)
	if err != nil || updated == nil {
		writeError(w, fmt.Errorf("reload certification %d: %v", id, err))
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	c, err := h.certs.GetCertificationByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, fmt.Errorf("%w: certification %d", apperrors.ErrNotFound, id))
		return
	}

	if err := h.certs.DeleteCertification(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
