package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/emeraldservers/killfeed/internal/domain"
	"github.com/emeraldservers/killfeed/internal/stats"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth reports liveness.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetGuild returns a guild and its registered servers.
func (r *Router) handleGetGuild(w http.ResponseWriter, req *http.Request) {
	guild, err := r.store.GetGuild(req.Context(), req.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if guild == nil {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}
	writeJSON(w, http.StatusOK, guild)
}

// statsResponse is the payload for the stats endpoint.
type statsResponse struct {
	DisplayName string               `json:"display_name"`
	Characters  []string             `json:"characters"`
	Stats       domain.CombinedStats `json:"stats"`
}

// handleGetStats resolves ?name= against the guild and returns the
// player's combined statistics, optionally filtered by ?server=.
func (r *Router) handleGetStats(w http.ResponseWriter, req *http.Request) {
	guildID := req.PathValue("id")
	name := req.URL.Query().Get("name")
	serverID := req.URL.Query().Get("server")

	characters, displayName, err := r.resolver.ResolveName(req.Context(), guildID, name)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no player matches that name")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	combined := r.aggregator.Aggregate(req.Context(), guildID, characters, serverID)
	writeJSON(w, http.StatusOK, statsResponse{
		DisplayName: displayName,
		Characters:  characters,
		Stats:       combined,
	})
}

// handleGetLeaderboard returns the guild ranking. ?by=kills|kdr, ?limit=N.
func (r *Router) handleGetLeaderboard(w http.ResponseWriter, req *http.Request) {
	guildID := req.PathValue("id")
	category := req.URL.Query().Get("by")
	if category == "" {
		category = "kills"
	}
	if category != "kills" && category != "kdr" {
		writeError(w, http.StatusBadRequest, "unknown category: use kills or kdr")
		return
	}

	limit := 20
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = n
	}

	entries, err := r.store.Leaderboard(req.Context(), guildID, category, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"entries":  entries,
	})
}

// handleUpsertServer registers or updates a game server for a guild,
// including its killfeed channel routing.
func (r *Router) handleUpsertServer(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name      string `json:"name"`
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	srv := domain.GameServer{
		GuildID:   req.PathValue("id"),
		ServerID:  req.PathValue("server"),
		Name:      body.Name,
		ChannelID: body.ChannelID,
	}
	if err := r.store.UpsertServer(req.Context(), srv); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, srv)
}
