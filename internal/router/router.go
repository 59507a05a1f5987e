package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talentbridge/internal/handler"
	"talentbridge/internal/middleware"
	"talentbridge/internal/model"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Universities *handler.UniversityHandler
	Jobs         *handler.JobHandler
	Projects     *handler.ProjectHandler
	Tasks        *handler.TaskHandler
	Stats        *handler.StatsHandler
}

type Options struct {
	CORSOrigins      []string
	RequestTimeout   time.Duration
	LoginRateLimit   int
	LoginRateWindow  time.Duration
	SignupRateLimit  int
	SignupRateWindow time.Duration
	GeneralRPM       int
}

// New assembles the HTTP surface. Role requirements live here, on the route
// table, rather than scattered through handlers.
func New(h Handlers, auth *middleware.AuthMiddleware, authLimit *middleware.AuthRateLimit, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.NewRateLimitMiddleware(opts.GeneralRPM).Handler)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	adminOnly := auth.RequireRoles(model.RolePlatformAdmin)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit.Limit("login", opts.LoginRateLimit, opts.LoginRateWindow)).
				Post("/login", h.Auth.Login)
			r.With(authLimit.Limit("signup", opts.SignupRateLimit, opts.SignupRateWindow)).
				Post("/signup", h.Auth.Signup)
			r.With(authLimit.Limit("forgot", opts.LoginRateLimit, opts.LoginRateWindow)).
				Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Route("/universities", func(r chi.Router) {
			r.Get("/", h.Universities.List)
			r.Get("/{id}", h.Universities.Get)
			r.With(auth.RequireAuth, adminOnly).Post("/", h.Universities.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Route("/users", func(r chi.Router) {
				r.With(adminOnly).Get("/", h.Users.List)
				r.Get("/{id}", h.Users.Get)
				r.Put("/{id}", h.Users.Update)
				r.With(adminOnly).Delete("/{id}", h.Users.Delete)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.Jobs.List)
				r.Get("/{id}", h.Jobs.Get)
				r.With(auth.RequireRoles(model.RoleEmployer)).Post("/", h.Jobs.Create)
				r.With(auth.RequireRoles(model.RoleEmployer, model.RolePlatformAdmin)).
					Put("/{id}", h.Jobs.Update)
				r.With(auth.RequireRoles(model.RoleEmployer, model.RolePlatformAdmin)).
					Delete("/{id}", h.Jobs.Delete)
				r.With(auth.RequireRoles(model.RoleStudent)).Post("/{id}/apply", h.Jobs.Apply)
				r.With(auth.RequireRoles(model.RoleEmployer, model.RolePlatformAdmin)).
					Get("/{id}/applications", h.Jobs.ListApplications)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Projects.List)
				r.Post("/", h.Projects.Create)
				r.Get("/{id}", h.Projects.Get)
				r.Put("/{id}", h.Projects.Update)
				r.Delete("/{id}", h.Projects.Delete)
				r.Post("/{id}/members", h.Projects.AddMember)
				r.Get("/{id}/tasks", h.Tasks.ListByProject)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.Tasks.Create)
				r.Post("/move", h.Tasks.Move)
				r.Get("/{id}/history", h.Tasks.History)
				r.Delete("/{id}", h.Tasks.Delete)
			})

			r.Get("/dashboard", h.Stats.Dashboard)

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/stats", h.Stats.Admin)
				r.Put("/verification/{id}", h.Users.ReviewVerification)
			})
		})
	})

	return r
}
