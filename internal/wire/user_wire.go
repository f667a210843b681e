package wire

import (
	"starter-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	mw *routeMiddleware,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(mw.authenticate)

		// ==================== PROTECTED USER ROUTES ====================
		r.Get("/me", userHandler.GetMe)
		r.Put("/me", userHandler.UpdateMe)
		r.Delete("/me/archive", userHandler.ArchiveMe)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(mw.adminOnly)

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}/archive", userHandler.Archive)
			r.Put("/{id}/unarchive", userHandler.Unarchive)
			r.Delete("/{id}", userHandler.Delete)
		})
	})
}
