package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/formio"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

// FormHandler serves published forms to renderers.
type FormHandler struct {
	svc *service.FormService
	log *zap.Logger
}

func NewFormHandler(svc *service.FormService, log *zap.Logger) *FormHandler {
	return &FormHandler{svc: svc, log: log}
}

type formSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// List handles GET /api/forms.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.ListPublished()
	if err != nil {
		h.log.Error("List published forms", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load forms")
		return
	}
	out := make([]formSummary, 0, len(forms))
	for _, f := range forms {
		out = append(out, formSummary{ID: f.ID, Title: f.Title, Slug: f.Slug, Description: f.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": out})
}

// Get handles GET /api/forms/{slug}: the form plus its wizard steps.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.GetPublishedBySlug(chi.URLParam(r, "slug"))
	if errors.Is(err, service.ErrFormNotFound) {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	if err != nil {
		h.log.Error("Load form", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load form")
		return
	}
	steps, err := formio.Steps(form)
	if err != nil {
		h.log.Warn("Form schema unreadable", zap.Int64("form_id", form.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Form schema is invalid")
		return
	}
	form.Settings.SuccessMessage = form.SuccessMessage()
	writeJSON(w, http.StatusOK, struct {
		Form  *models.Form  `json:"form"`
		Steps []wizard.Step `json:"steps"`
	}{form, steps})
}
