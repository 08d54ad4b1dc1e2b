package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

// SubmissionHandler exposes stored submissions to administrators.
type SubmissionHandler struct {
	svc *service.SubmissionService
	log *zap.Logger
}

func NewSubmissionHandler(svc *service.SubmissionService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, log: log}
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	formID, err := idParam(r, "formId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}
	skip := intQuery(r, "skip", 0)
	limit := intQuery(r, "limit", 20)

	subs, total, err := h.svc.List(formID, skip, limit)
	if err != nil {
		h.log.Error("List submissions", zap.Int64("form_id", formID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       total,
		"skip":        skip,
		"limit":       limit,
	})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "subId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}
	sub, err := h.svc.Get(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "subId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}
	if err := h.svc.Delete(id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *SubmissionHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrSubmissionNotFound) {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}
	h.log.Error("Submission admin operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
