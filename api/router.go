package api

import (
	"net/http"

	"intent-chat/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Post("/chat/send_message", h.SendMessage)
			r.Get("/chat/history", h.History)
			r.Get("/chat/search", h.Search)
			r.Get("/user/details", h.UserDetails)
			r.Get("/user/balance", h.TokenBalance)
			r.Get("/monitoring", h.Monitoring)
		})
	})

	return r
}
