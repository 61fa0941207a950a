package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ncusecase "nctrack/internal/usecase/nc"
)

// NewRouter wires the REST surface. Static report routes are registered
// before the {id} routes so chi resolves /ncs/stats as a report, not an id.
func NewRouter(svc *ncusecase.Service) http.Handler {
	ncs := NewNCHandler(svc)
	reports := NewReportHandler(svc)
	comments := NewCommentHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors)

	r.Route("/api/ncs", func(r chi.Router) {
		r.Get("/", ncs.List)
		r.Post("/", ncs.Create)
		r.Get("/stats", reports.Stats)
		r.Get("/analytics", reports.Analytics)
		r.Get("/effectiveness-checks", reports.EffectivenessChecks)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ncs.Get)
			r.Put("/", ncs.Update)
			r.Delete("/", ncs.Delete)
			r.Get("/comments", comments.List)
			r.Post("/comments", comments.Create)
			r.Get("/comments/count", comments.Count)
		})
	})

	return r
}
