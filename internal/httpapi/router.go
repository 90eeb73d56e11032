// Package httpapi assembles the HTTP surface of the todo API.
package httpapi

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/todo-api/internal/auth"
	"github.com/ayush/todo-api/internal/middleware"
	"github.com/ayush/todo-api/internal/respond"
	"github.com/ayush/todo-api/internal/todo"
)

//go:embed openapi.json
var openAPIDoc []byte

// Deps are the handlers and collaborators the router wires together.
type Deps struct {
	Auth           *auth.Handler
	Todos          *todo.Handler
	Tokens         middleware.TokenVerifier
	AllowedOrigins []string
	// ExportEnabled mounts the snapshot export routes.
	ExportEnabled bool
}

// NewRouter returns the API handler. All todo routes share one
// RequireAuth stage.
func NewRouter(d Deps) http.Handler {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	requireAuth := middleware.RequireAuth(d.Tokens)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAPIDoc)
	})

	// Auth routes (public, except /me)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.With(requireAuth).Get("/me", d.Auth.Me)
	})

	// Todo routes (protected)
	r.Route("/api/todos", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", d.Todos.Create)
		r.Get("/", d.Todos.List)
		if d.ExportEnabled {
			r.Get("/export", d.Todos.Export)
			r.Get("/export/latest", d.Todos.LatestExport)
		}
		r.Get("/{id}", d.Todos.Get)
		r.Put("/{id}", d.Todos.Update)
		r.Delete("/{id}", d.Todos.Delete)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"msg": "todo api", "docs": "/api-docs"})
	})

	return r
}
