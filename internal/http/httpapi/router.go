package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.CORS,
		middleware.Logger(app.Logger),
		middleware.AccessKey(app.Config.APIAccessKey),
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/images/generate", app.ImagesGenerate)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", app.SessionsList)
		r.Post("/", app.SessionsSave)
		r.Delete("/{id}", app.SessionsDelete)
	})

	return r
}
