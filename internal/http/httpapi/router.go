package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"campaignflow/internal/http/handlers"
	"campaignflow/internal/infra"
	"campaignflow/internal/middleware"
)

func NewRouter(app *handlers.App, logger infra.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(allowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	// Generation routes hit paid vendors; keep a per-IP ceiling on them.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(30, time.Minute))
		r.Post("/v1/pipeline/stream", app.PipelineStream)
		r.Post("/v1/campaign", app.Campaign)
		r.Post("/v1/campaign/stream", app.CampaignStream)
	})

	return r
}
