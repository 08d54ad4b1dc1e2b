package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

// submitFailures maps endpoint validation errors to responses.
var submitFailures = []struct {
	err    error
	status int
	code   string
	msg    string
}{
	{service.ErrMissingParameters, http.StatusBadRequest, "missing_parameters", "Missing formId or data"},
	{service.ErrInvalidFormID, http.StatusBadRequest, "invalid_form_id", "Invalid form ID"},
	{service.ErrFormNotFound, http.StatusNotFound, "form_not_found", "Form not found"},
	{service.ErrFormNotAvailable, http.StatusBadRequest, "form_not_available", "Form is not available for submissions"},
}

type SubmitHandler struct {
	svc *service.SubmissionService
	log *zap.Logger
}

func NewSubmitHandler(svc *service.SubmissionService, log *zap.Logger) *SubmitHandler {
	return &SubmitHandler{svc: svc, log: log}
}

// Submit handles POST /api/forms/submit.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var body struct {
		FormID any `json:"formId"`
		Data   any `json:"data"`
	}
	if err := readJSON(r, &body); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "missing_parameters", "Missing formId or data")
		return
	}

	res, err := h.svc.Submit(service.SubmitRequest{
		FormID:       body.FormID,
		Data:         body.Data,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RealIP:       r.Header.Get("X-Real-IP"),
		UserAgent:    r.Header.Get("User-Agent"),
	})
	if err != nil {
		for _, f := range submitFailures {
			if errors.Is(err, f.err) {
				writeErrorCode(w, f.status, f.code, f.msg)
				return
			}
		}
		h.log.Error("Form submission error", zap.Error(err))
		writeErrorCode(w, http.StatusInternalServerError, "internal_error", "Failed to submit form")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"submissionId": res.SubmissionID,
		"message":      res.Message,
	})
}

// Preflight handles OPTIONS /api/forms/submit.
func (h *SubmitHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}
