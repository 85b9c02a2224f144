package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/board"
	"github.com/DoyleJ11/leaderboard-graph/internal/hub"
	"github.com/DoyleJ11/leaderboard-graph/internal/ws"
)

func SetupRoutes(b *board.Board, h *hub.Hub, originPatterns []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/graph", GetGraph(b))
	r.Get("/nearest", GetNearest(b))
	r.Post("/pause", Pause(b))
	r.Post("/resume", Resume(b))
	r.Get("/ws", ws.Handler(b, h, originPatterns, log))
	return r
}
