package router

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/handler"
	mw "github.com/parisxmas/OxiDB/OxiForms/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Forms       *handler.FormHandler
	Submit      *handler.SubmitHandler
	AdminForms  *handler.AdminFormHandler
	Submissions *handler.SubmissionHandler
	Dashboard   *handler.DashboardHandler
	Assets      *handler.AssetHandler
	Health      *handler.HealthHandler
}

func New(log *zap.Logger, allowedOrigins []string, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger(log))
	r.Use(mw.Recovery(log))

	r.Get("/healthz", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		// Renderer assets
		r.Get("/formio-css", h.Assets.FormioCSS)
		r.Get("/bootstrap-css", h.Assets.BootstrapCSS)
		r.Get("/formio-fonts/{font}", h.Assets.Font)

		// Public forms
		r.Get("/forms", h.Forms.List)
		r.Post("/forms/submit", h.Submit.Submit)
		r.Options("/forms/submit", h.Submit.Preflight)
		r.Get("/forms/{slug}", h.Forms.Get)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.CORS(mw.CORSOptions{
				AllowedOrigins: allowedOrigins,
				AllowedMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
				AllowedHeaders: "Content-Type, " + mw.RequestIDHeader,
			}))

			r.Get("/dashboard", h.Dashboard.Dashboard)

			r.Get("/forms", h.AdminForms.List)
			r.Post("/forms", h.AdminForms.Create)
			r.Get("/forms/{formId}", h.AdminForms.Get)
			r.Put("/forms/{formId}", h.AdminForms.Update)
			r.Patch("/forms/{formId}/schema", h.AdminForms.PatchSchema)
			r.Delete("/forms/{formId}", h.AdminForms.Delete)

			r.Get("/forms/{formId}/submissions", h.Submissions.List)
			r.Get("/submissions/{subId}", h.Submissions.Get)
			r.Delete("/submissions/{subId}", h.Submissions.Delete)
		})
	})

	return r
}
