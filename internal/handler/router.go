package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calmguard/ecomcare/internal/handler/chat"
	"github.com/calmguard/ecomcare/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(processor chat.Processor, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(allowedOrigin)))

	chatHandler := chat.New(processor)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}

func corsOptions(allowedOrigin string) cors.Options {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		// 通配来源时浏览器不接受携带凭证。
		AllowCredentials: allowedOrigin != "*",
		MaxAge:           300,
	}
}
