package api

import (
	"net/http"

	"github.com/emeraldservers/killfeed/internal/auth"
	"github.com/emeraldservers/killfeed/internal/stats"
	"github.com/emeraldservers/killfeed/internal/storage"
)

// Router holds the HTTP routes and dependencies.
type Router struct {
	mux        *http.ServeMux
	store      *storage.Store
	resolver   *stats.Resolver
	aggregator *stats.Aggregator
	wsHub      *WebSocketHub
	auth       *auth.Service
}

// NewRouter creates a new HTTP router.
func NewRouter(store *storage.Store, authService *auth.Service) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		store:      store,
		resolver:   stats.NewResolver(store),
		aggregator: stats.NewAggregator(store),
		wsHub:      NewWebSocketHub(),
		auth:       authService,
	}

	// Read-only stats routes
	r.mux.HandleFunc("GET /api/guilds/{id}", r.handleGetGuild)
	r.mux.HandleFunc("GET /api/guilds/{id}/stats", r.handleGetStats)
	r.mux.HandleFunc("GET /api/guilds/{id}/leaderboard", r.handleGetLeaderboard)

	// Admin routes
	r.mux.HandleFunc("PUT /api/guilds/{id}/servers/{server}", r.requireAdmin(r.handleUpsertServer))

	// WebSocket live feed
	r.mux.HandleFunc("GET /ws", r.handleWebSocket)

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Hub exposes the WebSocket hub so ingest can broadcast events.
func (r *Router) Hub() *WebSocketHub {
	return r.wsHub
}

// StartWebSocketHub starts the hub's broadcast loop.
func (r *Router) StartWebSocketHub() {
	go r.wsHub.Run()
}
