package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emeraldservers/killfeed/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrCharacterTaken is returned when a character is already linked to a
// different Discord account in the same guild.
var ErrCharacterTaken = errors.New("character already linked to another account")

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string.
// The Z suffix ensures the Go sqlite driver parses it back as UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Store provides database access.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Guild methods ---

// UpsertGuild creates or updates a guild record.
func (s *Store) UpsertGuild(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guilds (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, id, name)
	return err
}

// GetGuild returns a guild with its registered game servers, or nil if the
// guild is unknown.
func (s *Store) GetGuild(ctx context.Context, id string) (*domain.Guild, error) {
	var g domain.Guild
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM guilds WHERE id = ?", id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, server_id, name, channel_id FROM guild_servers WHERE guild_id = ? ORDER BY server_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var srv domain.GameServer
		if err := rows.Scan(&srv.GuildID, &srv.ServerID, &srv.Name, &srv.ChannelID); err != nil {
			return nil, err
		}
		g.Servers = append(g.Servers, srv)
	}
	return &g, rows.Err()
}

// UpsertServer registers or updates a game server for a guild. The guild
// record is created on demand so ingest can run ahead of any slash command.
func (s *Store) UpsertServer(ctx context.Context, srv domain.GameServer) error {
	// Placeholder row only; a guild registered by name must keep that name.
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO guilds (id, name) VALUES (?, '')
		ON CONFLICT(id) DO NOTHING
	`, srv.GuildID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_servers (guild_id, server_id, name, channel_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, server_id) DO UPDATE SET
			name = excluded.name,
			channel_id = excluded.channel_id
	`, srv.GuildID, srv.ServerID, srv.Name, srv.ChannelID)
	return err
}

// --- Linked player methods ---

// GetLinkedPlayer returns the link record for a Discord account, or nil if
// the account has never linked a character in the guild.
func (s *Store) GetLinkedPlayer(ctx context.Context, guildID, discordID string) (*domain.LinkedPlayer, error) {
	var p domain.LinkedPlayer
	var linkedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT guild_id, discord_id, linked_at FROM linked_players
		WHERE guild_id = ? AND discord_id = ?
	`, guildID, discordID).Scan(&p.GuildID, &p.DiscordID, &linkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", linkedAt); err == nil {
		p.LinkedAt = t
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT character FROM linked_characters
		WHERE guild_id = ? AND discord_id = ?
		ORDER BY linked_at, character
	`, guildID, discordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		p.Characters = append(p.Characters, c)
	}
	return &p, rows.Err()
}

// LinkCharacter binds a character to a Discord account. Linking the same
// character twice is a no-op; a character held by another account returns
// ErrCharacterTaken.
func (s *Store) LinkCharacter(ctx context.Context, guildID, discordID, character string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO linked_players (guild_id, discord_id) VALUES (?, ?)
		ON CONFLICT(guild_id, discord_id) DO NOTHING
	`, guildID, discordID); err != nil {
		return err
	}

	var owner string
	err = tx.QueryRowContext(ctx, `
		SELECT discord_id FROM linked_characters WHERE guild_id = ? AND character = ?
	`, guildID, character).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Not linked yet
	case err != nil:
		return err
	case owner == discordID:
		return tx.Commit()
	default:
		return ErrCharacterTaken
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO linked_characters (guild_id, discord_id, character) VALUES (?, ?, ?)
	`, guildID, discordID, character); err != nil {
		return err
	}
	return tx.Commit()
}

// UnlinkCharacter removes one character from an account's link record.
// It reports whether a link was actually removed.
func (s *Store) UnlinkCharacter(ctx context.Context, guildID, discordID, character string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM linked_characters WHERE guild_id = ? AND discord_id = ? AND character = ?
	`, guildID, discordID, character)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UnlinkAll removes every character linked to an account and reports how
// many were removed.
func (s *Store) UnlinkAll(ctx context.Context, guildID, discordID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM linked_characters WHERE guild_id = ? AND discord_id = ?
	`, guildID, discordID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- PvP summary methods ---

// FindSummaryByName performs a case-insensitive exact-name search over the
// guild's summaries. When several stored spellings differ only in case, the
// lexically smallest wins, which keeps resolution deterministic.
func (s *Store) FindSummaryByName(ctx context.Context, guildID, name string) (*domain.PvpSummary, error) {
	var sum domain.PvpSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT guild_id, character, server_id, kills, deaths, suicides, best_streak, current_streak, best_distance
		FROM pvp_summaries
		WHERE guild_id = ? AND lower(character) = lower(?)
		ORDER BY character
		LIMIT 1
	`, guildID, name).Scan(&sum.GuildID, &sum.Character, &sum.ServerID,
		&sum.Kills, &sum.Deaths, &sum.Suicides, &sum.BestStreak, &sum.CurrentStreak, &sum.BestDistance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// GetSummaries returns all summary rows for a character, optionally
// restricted to one server.
func (s *Store) GetSummaries(ctx context.Context, guildID, character, serverID string) ([]domain.PvpSummary, error) {
	query := `
		SELECT guild_id, character, server_id, kills, deaths, suicides, best_streak, current_streak, best_distance
		FROM pvp_summaries
		WHERE guild_id = ? AND character = ?`
	args := []interface{}{guildID, character}
	if serverID != "" {
		query += " AND server_id = ?"
		args = append(args, serverID)
	}
	query += " ORDER BY server_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []domain.PvpSummary
	for rows.Next() {
		var sum domain.PvpSummary
		if err := rows.Scan(&sum.GuildID, &sum.Character, &sum.ServerID,
			&sum.Kills, &sum.Deaths, &sum.Suicides, &sum.BestStreak, &sum.CurrentStreak, &sum.BestDistance); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// UpsertSummary writes a summary row verbatim. Used by tests and backfills;
// the ingest path goes through RecordKillEvent.
func (s *Store) UpsertSummary(ctx context.Context, sum domain.PvpSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pvp_summaries (guild_id, character, server_id, kills, deaths, suicides, best_streak, current_streak, best_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, character, server_id) DO UPDATE SET
			kills = excluded.kills,
			deaths = excluded.deaths,
			suicides = excluded.suicides,
			best_streak = excluded.best_streak,
			current_streak = excluded.current_streak,
			best_distance = excluded.best_distance
	`, sum.GuildID, sum.Character, sum.ServerID,
		sum.Kills, sum.Deaths, sum.Suicides, sum.BestStreak, sum.CurrentStreak, sum.BestDistance)
	return err
}

// --- Kill event methods ---

// killEventColumns is the column list shared by kill event queries.
const killEventColumns = "id, guild_id, server_id, killer, victim, weapon, distance, is_suicide, created_at"

func scanKillEvents(rows *sql.Rows) ([]domain.KillEvent, error) {
	var events []domain.KillEvent
	for rows.Next() {
		var ev domain.KillEvent
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.GuildID, &ev.ServerID, &ev.Killer, &ev.Victim,
			&ev.Weapon, &ev.Distance, &ev.Suicide, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse("2006-01-02T15:04:05Z", createdAt); err == nil {
			ev.CreatedAt = t
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// KillEventsByKiller returns kill events where character is the killer.
// Suicides are excluded unless includeSuicides is set; serverID filters to
// one server when non-empty.
func (s *Store) KillEventsByKiller(ctx context.Context, guildID, character, serverID string, includeSuicides bool) ([]domain.KillEvent, error) {
	return s.killEventsBy(ctx, "killer", guildID, character, serverID, includeSuicides)
}

// KillEventsByVictim returns kill events where character is the victim,
// with the same filtering as KillEventsByKiller.
func (s *Store) KillEventsByVictim(ctx context.Context, guildID, character, serverID string, includeSuicides bool) ([]domain.KillEvent, error) {
	return s.killEventsBy(ctx, "victim", guildID, character, serverID, includeSuicides)
}

func (s *Store) killEventsBy(ctx context.Context, role, guildID, character, serverID string, includeSuicides bool) ([]domain.KillEvent, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM kill_events WHERE guild_id = ? AND %s = ?", killEventColumns, role)
	args := []interface{}{guildID, character}
	if !includeSuicides {
		b.WriteString(" AND is_suicide = 0")
	}
	if serverID != "" {
		b.WriteString(" AND server_id = ?")
		args = append(args, serverID)
	}
	b.WriteString(" ORDER BY created_at, id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKillEvents(rows)
}

// RecordKillEvent appends a kill event and folds it into the per-server
// summaries in one transaction: the killer gains a kill and extends their
// streak, the victim's deaths increase and their streak resets. A suicide
// only counts against the victim.
func (s *Store) RecordKillEvent(ctx context.Context, ev *domain.KillEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kill_events (`+killEventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.GuildID, ev.ServerID, ev.Killer, ev.Victim,
		ev.Weapon, ev.Distance, ev.Suicide, formatTimestamp(ev.CreatedAt)); err != nil {
		return fmt.Errorf("inserting kill event: %w", err)
	}

	if ev.Suicide {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pvp_summaries (guild_id, character, server_id, suicides)
			VALUES (?, ?, ?, 1)
			ON CONFLICT(guild_id, character, server_id) DO UPDATE SET
				suicides = suicides + 1,
				current_streak = 0
		`, ev.GuildID, ev.Victim, ev.ServerID); err != nil {
			return fmt.Errorf("updating suicide summary: %w", err)
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pvp_summaries (guild_id, character, server_id, kills, best_streak, current_streak, best_distance)
		VALUES (?, ?, ?, 1, 1, 1, ?)
		ON CONFLICT(guild_id, character, server_id) DO UPDATE SET
			kills = kills + 1,
			current_streak = current_streak + 1,
			best_streak = max(best_streak, current_streak + 1),
			best_distance = max(best_distance, excluded.best_distance)
	`, ev.GuildID, ev.Killer, ev.ServerID, ev.Distance); err != nil {
		return fmt.Errorf("updating killer summary: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pvp_summaries (guild_id, character, server_id, deaths)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(guild_id, character, server_id) DO UPDATE SET
			deaths = deaths + 1,
			current_streak = 0
	`, ev.GuildID, ev.Victim, ev.ServerID); err != nil {
		return fmt.Errorf("updating victim summary: %w", err)
	}

	return tx.Commit()
}

// Leaderboard ranks the guild's characters by total kills or KDR across all
// servers. Supported categories: "kills" (default) and "kdr".
func (s *Store) Leaderboard(ctx context.Context, guildID, category string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	order := "total_kills DESC, character"
	if category == "kdr" {
		order = "kdr DESC, character"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT character,
		       SUM(kills) AS total_kills,
		       SUM(deaths) AS total_deaths,
		       CASE WHEN SUM(deaths) > 0
		            THEN CAST(SUM(kills) AS REAL) / SUM(deaths)
		            ELSE CAST(SUM(kills) AS REAL)
		       END AS kdr
		FROM pvp_summaries
		WHERE guild_id = ?
		GROUP BY character
		ORDER BY `+order+`
		LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Character, &e.Kills, &e.Deaths, &e.KDR); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
