package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/internal/compliance"
	"github.com/skillflow/skillflow/internal/report"
	"github.com/skillflow/skillflow/pkg/apperrors"
)

type ComplianceHandler struct {
	engine   *compliance.Engine
	exporter *report.Exporter
	clk      clock.Clock
}

func NewComplianceHandler(engine *compliance.Engine, exporter *report.Exporter, clk clock.Clock) *ComplianceHandler {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &ComplianceHandler{engine: engine, exporter: exporter, clk: clk}
}

// departmentFilter reads the department query param, defaulting to all.
func departmentFilter(r *http.Request) string {
	if d := r.URL.Query().Get("department"); d != "" {
		return d
	}
	return compliance.FilterAll
}

func (h *ComplianceHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.engine.Report(r.Context(), departmentFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, rep, http.StatusOK)
}

// Export streams the report as an xlsx workbook or a PDF document.
func (h *ComplianceHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	filter := departmentFilter(r)

	var (
		data      []byte
		err       error
		ext       string
		mediaType string
	)
	switch format {
	case "excel":
		data, err = h.exporter.Excel(r.Context(), filter)
		ext = "xlsx"
		mediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = h.exporter.PDF(r.Context(), filter)
		ext = "pdf"
		mediaType = "application/pdf"
	default:
		writeError(w, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	// A PDF render failure degrades to a workbook; label the stream correctly.
	if ext == "pdf" && len(data) >= 2 && data[0] == 'P' && data[1] == 'K' {
		ext = "xlsx"
		mediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	name := report.Filename(ext, h.clk.Now())
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("write export stream", "error", err)
	}
}

type emailResponse struct {
	Message             string `json:"message"`
	JobID               string `json:"job_id"`
	Status              string `json:"status"`
	EstimatedCompletion string `json:"estimated_completion"`
}

// Email queues a report delivery. Sending is simulated; the response mirrors
// a background job acknowledgement.
func (h *ComplianceHandler) Email(w http.ResponseWriter, r *http.Request) {
	now := h.clk.Now()
	resp := emailResponse{
		Message:             "Compliance report email has been queued",
		JobID:               fmt.Sprintf("email_job_%d", now.Unix()),
		Status:              "queued",
		EstimatedCompletion: now.Add(5 * time.Minute).UTC().Format(time.RFC3339),
	}

	logger.Info("compliance email queued", "job_id", resp.JobID)
	writeJSON(w, resp, http.StatusAccepted)
}

func (h *ComplianceHandler) DepartmentCompliance(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.DepartmentCompliance(r.Context(), departmentFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *ComplianceHandler) CertificationStatus(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.CertificationStatus(r.Context(), departmentFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *ComplianceHandler) UpcomingExpirations(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: days must be an integer", apperrors.ErrValidation))
			return
		}
		days = v
	}

	items, err := h.engine.UpcomingExpirations(r.Context(), departmentFilter(r), days)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *ComplianceHandler) MissingCertifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.MissingCertifications(r.Context(), departmentFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *ComplianceHandler) TrainingStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.TrainingStatistics(r.Context(), departmentFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

func (h *ComplianceHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Alerts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

func (h *ComplianceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.engine.ComplianceSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, sum, http.StatusOK)
}
