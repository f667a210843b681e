package wire

import (
	"starter-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireItem: owners manage their items, admins manage all of them.
func wireItem(
	r chi.Router,
	itemHandler *adaptor.ItemHandler,
	mw *routeMiddleware,
) {
	r.Route("/items", func(r chi.Router) {
		r.Use(mw.authenticate)

		r.Get("/", itemHandler.List)
		r.Post("/", itemHandler.Create)
		r.With(mw.adminOnly).Post("/admin", itemHandler.CreateForUser)
		r.Get("/{id}", itemHandler.Get)
		r.Put("/{id}", itemHandler.Update)
		r.Delete("/{id}", itemHandler.Delete)
	})
}
