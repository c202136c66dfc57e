package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the ECS-formatted JSON logger shared by the process.
func NewLogger(out io.Writer, env, version string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-leave"),
		slog.String("version", version),
		slog.String("env", env),
	)
}

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Idempotency guards leave submission; nil disables it.
	Idempotency func(http.Handler) http.Handler
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	translator *i18n.Translator,
	leaveHandler LeaveHandler,
	approvalHandler ApprovalHandler,
	permissionHandler PermissionHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Content-Language", middleware.IdempotencyReplayedHeader},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(middleware.Locale(translator))

	idempotent := cfg.Idempotency
	if idempotent == nil {
		idempotent = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/leave", func(r chi.Router) {
				r.Route("/categories", func(r chi.Router) {
					r.Get("/", leaveHandler.ListCategories)
					r.Post("/", leaveHandler.CreateCategory)
					r.Put("/{id}", leaveHandler.UpdateCategory)
					r.Patch("/{id}/toggle", leaveHandler.ToggleCategory)
				})

				r.Route("/entitlements", func(r chi.Router) {
					r.Get("/", leaveHandler.ListMyEntitlements)
					r.Put("/", leaveHandler.UpsertEntitlement)
					r.Post("/provision", leaveHandler.ProvisionEntitlements)
				})

				r.Route("/requests", func(r chi.Router) {
					r.Get("/", leaveHandler.ListMyRequests)
					r.With(idempotent).Post("/", leaveHandler.SubmitRequest)
					r.Post("/check", leaveHandler.CheckRequest)
					r.Get("/{id}", leaveHandler.GetRequest)
					r.Post("/{id}/decision", leaveHandler.DecideRequest)
				})

				r.Get("/approvals", approvalHandler.ListActionable)
			})

			r.Get("/employees/{employeeID}/entitlements", leaveHandler.ListEmployeeEntitlements)

			r.Route("/departments/{departmentID}/approvers", func(r chi.Router) {
				r.Get("/", approvalHandler.ListApprovers)
				r.Post("/", approvalHandler.Assign)
				r.Delete("/{approverID}", approvalHandler.Unassign)
			})

			r.Route("/organization/permissions", func(r chi.Router) {
				r.Get("/{role}", permissionHandler.GetRolePermissions)
				r.Put("/{role}", permissionHandler.SetRolePermissions)
			})
		})
	})
	return r
}
