package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sbilibin2017/fluxio-api/docs"
	"github.com/sbilibin2017/fluxio-api/internal/config"
	"github.com/sbilibin2017/fluxio-api/internal/handlers"
	"github.com/sbilibin2017/fluxio-api/internal/middlewares"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Root       http.HandlerFunc
	TestDB     http.HandlerFunc
	Register   http.HandlerFunc
	Login      http.HandlerFunc
	CheckEmail http.HandlerFunc
}

// NewRouter builds the HTTP routing tree. Routes that reach the database run
// inside a request-scoped connection when db is non-nil.
func NewRouter(app config.App, corsCfg config.CORS, db *sqlx.DB, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsCfg.AllowedOrigins,
		AllowedMethods: corsCfg.AllowedMethods,
		AllowedHeaders: corsCfg.AllowedHeaders,
		ExposedHeaders: []string{middlewares.RequestIDHeader},
	}))

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.NotFoundHandler)

	r.Get("/", h.Root)

	r.Group(func(r chi.Router) {
		if db != nil {
			r.Use(middlewares.ConnMiddleware(db))
		}
		r.Get("/test-db", h.TestDB)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/check-email", h.CheckEmail)
	})

	if app.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	return r
}
