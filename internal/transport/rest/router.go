package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/inventory-lending/internal/auth"
	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	"github.com/frahmantamala/inventory-lending/internal/item"
	"github.com/frahmantamala/inventory-lending/internal/transport/middleware"
	"github.com/frahmantamala/inventory-lending/internal/transport/swagger"
	"github.com/frahmantamala/inventory-lending/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	itemHandler *item.Handler,
	borrowingHandler *borrowing.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Catalog routes; mutations are admin-only
			pr.Route("/items", func(ir chi.Router) {
				ir.Get("/", itemHandler.ListItems)
				ir.Get("/search", itemHandler.SearchItems)
				ir.Get("/{id}", itemHandler.GetItem)

				ir.Group(func(mr chi.Router) {
					mr.Use(authHandler.RequireAdmin)
					mr.Post("/", itemHandler.CreateItem)
					mr.Patch("/{id}", itemHandler.UpdateItem)
					mr.Delete("/{id}", itemHandler.DeleteItem)
				})
			})

			// Account routes
			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", userHandler.ListUsers)
				ur.Get("/{id}", userHandler.GetUser)

				ur.Group(func(mr chi.Router) {
					mr.Use(authHandler.RequireAdmin)
					mr.Post("/", userHandler.CreateUser)
				})
			})

			// Borrowing lifecycle routes
			pr.Route("/borrowings", func(br chi.Router) {
				br.Post("/", borrowingHandler.BorrowItem)
				br.Post("/{id}/return", borrowingHandler.ReturnItem)
				br.Get("/overdue", borrowingHandler.ListOverdue)
				br.Get("/", borrowingHandler.ListHistory)
			})
		})
	})
}
