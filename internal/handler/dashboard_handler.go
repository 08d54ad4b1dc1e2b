package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

type DashboardHandler struct {
	formSvc *service.FormService
	subSvc  *service.SubmissionService
	log     *zap.Logger
}

func NewDashboardHandler(formSvc *service.FormService, subSvc *service.SubmissionService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{formSvc: formSvc, subSvc: subSvc, log: log}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List("")
	if err != nil {
		h.log.Error("Dashboard: list forms", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	totalSubs := 0
	published := 0
	formStats := make([]map[string]any, 0, len(forms))
	for _, f := range forms {
		count, err := h.subSvc.CountByForm(f.ID)
		if err != nil {
			h.log.Warn("Dashboard: count submissions", zap.Int64("form_id", f.ID), zap.Error(err))
		}
		totalSubs += count
		if f.IsPublished() {
			published++
		}
		formStats = append(formStats, map[string]any{
			"id":              f.ID,
			"title":           f.Title,
			"slug":            f.Slug,
			"status":          f.Status,
			"submissionCount": count,
			"createdAt":       f.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"formCount":          len(forms),
		"publishedFormCount": published,
		"submissionCount":    totalSubs,
		"forms":              formStats,
	})
}
