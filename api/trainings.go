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

type TrainingHandler struct {
	trainings repository.TrainingRepo
}

func NewTrainingHandler(trainings repository.TrainingRepo) *TrainingHandler {
	return &TrainingHandler{trainings: trainings}
}

func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable body", apperrors.ErrValidation))
		return
	}
	if err := validate.Payload(r.Context(), validate.Training, body); err != nil {
		writeError(w, err)
		return
	}

	var t models.Training
	if err := json.Unmarshal(body, &t); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	ctx := r.Context()

	id, err := h.trainings.CreateTraining(ctx, &t)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.trainings.GetTrainingByID(ctx, id)
	if err != nil || created == nil {
		writeError(w, fmt.Errorf("reload training %d: %v", id, err))
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	ctx := r.Context()

	items, err := h.trainings.ListTrainings(ctx, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Training{}
	}

	total, err := h.trainings.CountTrainings(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, listResponse{Total: total, Limit: limit, Offset: offset, Items: items}, http.StatusOK)
}

func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	t, err := h.trainings.GetTrainingByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if t == nil {
		writeError(w, fmt.Errorf("%w: training %d", apperrors.ErrNotFound, id))
		return
	}

	writeJSON(w, t, http.StatusOK)
}

func (h *TrainingHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	if err := validate.Payload(r.Context(), validate.Training, body); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	t, err := h.trainings.GetTrainingByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if t == nil {
		writeError(w, fmt.Errorf("%w: training %d", apperrors.ErrNotFound, id))
		return
	}

	if err := json.Unmarshal(body, t); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	t.ID = id

	if err := h.trainings.UpdateTraining(ctx, t); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.trainings.GetTrainingByID(ctx, id)
	if err != nil || updated == nil {
		writeError(w, fmt.Errorf("reload training %d: %v", id, err))
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	t, err := h.trainings.GetTrainingByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if t == nil {
		writeError(w, fmt.Errorf("%w: training %d", apperrors.ErrNotFound, id))
		return
	}

	if err := h.trainings.DeleteTraining(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
