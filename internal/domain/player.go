package domain

import "time"

// LinkedPlayer associates a Discord account with one or more in-game
// characters, scoped to a guild. Characters are deduplicated by the store.
type LinkedPlayer struct {
	GuildID    string    `json:"guild_id"`
	DiscordID  string    `json:"discord_id"`
	Characters []string  `json:"characters"`
	LinkedAt   time.Time `json:"linked_at"`
}

// PvpSummary holds cumulative PvP totals for one character on one game
// server. A character playing on several servers has one row per server.
type PvpSummary struct {
	GuildID       string  `json:"guild_id"`
	Character     string  `json:"character"`
	ServerID      string  `json:"server_id"`
	Kills         int64   `json:"kills"`
	Deaths        int64   `json:"deaths"`
	Suicides      int64   `json:"suicides"`
	BestStreak    int64   `json:"best_streak"`
	CurrentStreak int64   `json:"current_streak"`
	BestDistance  float64 `json:"best_distance"`
}

// CombinedStats is the aggregation result across all of a player's
// characters (and, unless filtered, all servers). Built fresh per request,
// never persisted.
type CombinedStats struct {
	Kills          int64          `json:"kills"`
	Deaths         int64          `json:"deaths"`
	Suicides       int64          `json:"suicides"`
	KDR            float64        `json:"kdr"`
	BestStreak     int64          `json:"best_streak"`
	BestDistance   float64        `json:"best_distance"`
	ServersPlayed  int            `json:"servers_played"`
	WeaponStats    map[string]int `json:"weapon_stats,omitempty"`
	FavoriteWeapon string         `json:"favorite_weapon,omitempty"`
	Rival          string         `json:"rival,omitempty"`
	RivalKills     int            `json:"rival_kills,omitempty"`
	Nemesis        string         `json:"nemesis,omitempty"`
	NemesisDeaths  int            `json:"nemesis_deaths,omitempty"`
}

// HasData reports whether any PvP activity was found for the player.
func (c CombinedStats) HasData() bool {
	return c.Kills != 0 || c.Deaths != 0
}

// LeaderboardEntry is one row of the per-guild ranking.
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Character string  `json:"character"`
	Kills     int64   `json:"kills"`
	Deaths    int64   `json:"deaths"`
	KDR       float64 `json:"kdr"`
}
