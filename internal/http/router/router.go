// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/crossgate-id/crossgate/internal/http/controllers/auth"
	dirctrl "github.com/crossgate-id/crossgate/internal/http/controllers/directory"
	fedctrl "github.com/crossgate-id/crossgate/internal/http/controllers/federation"
	healthctrl "github.com/crossgate-id/crossgate/internal/http/controllers/health"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	mw "github.com/crossgate-id/crossgate/internal/http/middlewares"
)

// Deps contiene todos los controllers del router.
type Deps struct {
	Auth       *authctrl.Controllers
	Federation *fedctrl.Controllers
	Directory  *dirctrl.SearchController
	Health     *healthctrl.Controller
}

// New arma el router con la cadena estándar de middlewares.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login.Login)
			r.Post("/refresh", deps.Auth.Refresh.Refresh)
			r.Post("/exchange", deps.Auth.Exchange.Exchange)
			r.Post("/logout", deps.Auth.Logout.Logout)
			r.Get("/authorize", deps.Auth.Authorize.Authorize)
		})

		r.Route("/federation", func(r chi.Router) {
			r.Get("/by-email", deps.Federation.ByEmail.ByEmail)
			r.Post("/redeem", deps.Federation.Redeem.Redeem)
			r.Get("/{name}/url", deps.Federation.URL.BuildURL)
			r.Post("/{name}/exchange", deps.Federation.Exchange.Exchange)
		})

		r.Get("/directory/search", deps.Directory.Search)
	})

	r.Get("/readyz", deps.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
