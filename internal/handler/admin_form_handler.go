package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

// AdminFormHandler manages form definitions.
type AdminFormHandler struct {
	svc *service.FormService
	log *zap.Logger
}

func NewAdminFormHandler(svc *service.FormService, log *zap.Logger) *AdminFormHandler {
	return &AdminFormHandler{svc: svc, log: log}
}

func (h *AdminFormHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		writeError(w, http.StatusNotFound, "Form not found")
	case errors.Is(err, service.ErrSlugTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidSchema),
		errors.Is(err, service.ErrInvalidPatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("Form admin operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *AdminFormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(models.FormStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *AdminFormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.FormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Create(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (h *AdminFormHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "formId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}
	form, err := h.svc.Get(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *AdminFormHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "formId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}
	var req service.FormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Update(id, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// PatchSchema applies an RFC 6902 document to the form schema.
func (h *AdminFormHandler) PatchSchema(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "formId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}
	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.PatchSchema(id, patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *AdminFormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "formId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}
	if err := h.svc.Delete(id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}
