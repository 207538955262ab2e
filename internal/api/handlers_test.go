package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeraldservers/killfeed/internal/auth"
	"github.com/emeraldservers/killfeed/internal/domain"
	"github.com/emeraldservers/killfeed/internal/storage"
)

func newTestRouter(t *testing.T) (*Router, *storage.Store, *auth.Service) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	authService := auth.NewService("test-secret", time.Hour)
	return NewRouter(store, authService), store, authService
}

func doRequest(r *Router, method, path, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestGetGuild(t *testing.T) {
	router, store, _ := newTestRouter(t)
	ctx := context.Background()

	rec := doRequest(router, "GET", "/api/guilds/g1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, store.UpsertGuild(ctx, "g1", "Emerald EU"))
	require.NoError(t, store.UpsertServer(ctx, domain.GameServer{
		GuildID: "g1", ServerID: "srv-a", Name: "Alpha", ChannelID: "ch1",
	}))

	rec = doRequest(router, "GET", "/api/guilds/g1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var guild domain.Guild
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guild))
	assert.Equal(t, "Emerald EU", guild.Name)
	assert.Len(t, guild.Servers, 1)
}

func TestGetStats(t *testing.T) {
	router, store, _ := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummary(ctx, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 10, Deaths: 4,
	}))

	rec := doRequest(router, "GET", "/api/guilds/g1/stats?name=shadow", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DisplayName string               `json:"display_name"`
		Characters  []string             `json:"characters"`
		Stats       domain.CombinedStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Shadow", resp.DisplayName)
	assert.EqualValues(t, 10, resp.Stats.Kills)
	assert.InDelta(t, 2.5, resp.Stats.KDR, 0.001)
}

func TestGetStatsNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, "GET", "/api/guilds/g1/stats?name=Nobody", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, "GET", "/api/guilds/g1/stats", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "missing name never matches")
}

func TestGetLeaderboard(t *testing.T) {
	router, store, _ := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSummary(ctx, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 10, Deaths: 4,
	}))

	rec := doRequest(router, "GET", "/api/guilds/g1/leaderboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Shadow"`)

	rec = doRequest(router, "GET", "/api/guilds/g1/leaderboard?by=kdr&limit=5", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLeaderboardValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, "GET", "/api/guilds/g1/leaderboard?by=deaths", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, "GET", "/api/guilds/g1/leaderboard?limit=0", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, "GET", "/api/guilds/g1/leaderboard?limit=500", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertServerAuth(t *testing.T) {
	router, store, authService := newTestRouter(t)
	body := `{"name":"Alpha","channel_id":"ch1"}`

	rec := doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := authService.GenerateToken("viewer", false)
	require.NoError(t, err)
	rec = doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := authService.GenerateToken("admin", true)
	require.NoError(t, err)
	rec = doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", adminToken, body)
	require.Equal(t, http.StatusOK, rec.Code)

	guild, err := store.GetGuild(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, guild)
	srv := guild.FindServer("srv-a")
	require.NotNil(t, srv)
	assert.Equal(t, "ch1", srv.ChannelID)
}

func TestUpsertServerBadBody(t *testing.T) {
	router, _, authService := newTestRouter(t)

	adminToken, err := authService.GenerateToken("admin", true)
	require.NoError(t, err)

	rec := doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", adminToken, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", "garbage", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := auth.NewService("other-secret", time.Hour)
	token, err := other.GenerateToken("admin", true)
	require.NoError(t, err)
	rec = doRequest(router, "PUT", "/api/guilds/g1/servers/srv-a", token, `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "tokens from a different secret are rejected")
}
