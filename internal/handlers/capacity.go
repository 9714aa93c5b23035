package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"capacity-bknd/internal/capacity"
	"capacity-bknd/internal/export"
	"capacity-bknd/internal/services"
	"capacity-bknd/internal/utils"
)

const (
	equipmentField  = "equipment"
	generationField = "generation"
)

type CapacityHandler struct {
	service   *services.CapacityService
	maxUpload int64
	logr      *zap.Logger
}

func NewCapacityHandler(svc *services.CapacityService, maxUpload int64, logr *zap.Logger) *CapacityHandler {
	return &CapacityHandler{service: svc, maxUpload: maxUpload, logr: logr}
}

// Reconcile handles POST /api/v1/capacity/reconcile
// Multipart form with "equipment" and "generation" files (.xlsx or .csv).
func (h *CapacityHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runUploads(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    run.Result,
		"total":   len(run.Result.Rows),
	})
}

// Export handles POST /api/v1/capacity/reconcile/export
// Same form as Reconcile, answers with the summary workbook.
func (h *CapacityHandler) Export(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runUploads(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummary(&buf, run.Result); err != nil {
		h.logr.Error("failed to build summary workbook", zap.String("run_id", run.Result.RunID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build summary workbook")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(run.FinishedAt)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", run.Result.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Detail handles POST /api/v1/capacity/detail?substation=A,B
// Lists generation records of capacity-bearing substations. Without the
// substation parameter every substation with available capacity is listed.
func (h *CapacityHandler) Detail(w http.ResponseWriter, r *http.Request) {
	requested := utils.ParseQueryList(r.URL.Query(), "substation")

	run, ok := h.runUploads(w, r)
	if !ok {
		return
	}

	details := h.service.Details(run, requested)
	missed := 0
	for _, d := range details {
		if !d.Matched {
			missed++
		}
	}
	if missed > 0 {
		h.logr.Info("substation lookup miss",
			zap.String("run_id", run.Result.RunID),
			zap.Int("missed", missed),
			zap.Strings("requested", requested))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"run_id":  run.Result.RunID,
		"data":    details,
		"total":   len(details),
	})
}

// ReconcileDatabase handles GET /api/v1/capacity/database
// Reconciles the tables read from Postgres.
func (h *CapacityHandler) ReconcileDatabase(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.ReconcileDatabase(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    run.Result,
		"total":   len(run.Result.Rows),
	})
}

// runUploads parses the multipart form and reconciles both files. On failure
// the response is already written.
func (h *CapacityHandler) runUploads(w http.ResponseWriter, r *http.Request) (*services.Run, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with equipment and generation files")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	var uploads [2]services.Upload
	for i, field := range []string{equipmentField, generationField} {
		f, hdr, err := r.FormFile(field)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %s file", field))
			return nil, false
		}
		defer f.Close()
		uploads[i] = services.Upload{Filename: hdr.Filename, Body: f}
	}

	run, err := h.service.ReconcileUploads(r.Context(), uploads[0], uploads[1])
	if err != nil {
		h.writeRunError(w, err)
		return nil, false
	}
	return run, true
}

func (h *CapacityHandler) writeRunError(w http.ResponseWriter, err error) {
	var colErr *capacity.ColumnError
	switch {
	case errors.As(err, &colErr):
		writeError(w, http.StatusUnprocessableEntity, colErr.Error())
	case errors.Is(err, services.ErrInvalidUpload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDatabaseUnavailable):
		writeError(w, http.StatusServiceUnavailable, "database source not configured")
	default:
		h.logr.Error("reconciliation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reconcile capacity")
	}
}
