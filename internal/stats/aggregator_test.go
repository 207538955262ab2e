package stats

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeraldservers/killfeed/internal/domain"
	"github.com/emeraldservers/killfeed/internal/storage"
)

func seedSummary(t *testing.T, store *storage.Store, sum domain.PvpSummary) {
	t.Helper()
	require.NoError(t, store.UpsertSummary(context.Background(), sum))
}

func seedKill(t *testing.T, store *storage.Store, id, killer, victim, weapon string, suicide bool) {
	t.Helper()
	require.NoError(t, store.RecordKillEvent(context.Background(), &domain.KillEvent{
		ID: id, GuildID: "g1", ServerID: "srv-a",
		Killer: killer, Victim: victim, Weapon: weapon, Suicide: suicide,
	}))
}

func TestAggregateEmptyCharacterList(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)

	combined := agg.Aggregate(context.Background(), "g1", nil, "")
	assert.Equal(t, domain.CombinedStats{}, combined)
}

func TestAggregateSumsAcrossCharactersAndServers(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a",
		Kills: 10, Deaths: 4, Suicides: 1, BestStreak: 5, BestDistance: 300,
	})
	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-b",
		Kills: 2, Deaths: 1, BestStreak: 2, BestDistance: 450,
	})
	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "ShadowAlt", ServerID: "srv-a",
		Kills: 3, Deaths: 5, BestStreak: 8, BestDistance: 120,
	})

	combined := agg.Aggregate(ctx, "g1", []string{"Shadow", "ShadowAlt"}, "")
	assert.EqualValues(t, 15, combined.Kills)
	assert.EqualValues(t, 10, combined.Deaths)
	assert.EqualValues(t, 1, combined.Suicides)
	assert.InDelta(t, 1.5, combined.KDR, 0.001)
	assert.EqualValues(t, 8, combined.BestStreak, "best streak is a maximum, not a sum")
	assert.EqualValues(t, 450, combined.BestDistance)
	assert.Equal(t, 3, combined.ServersPlayed, "each summary row counts")
}

func TestAggregateServerFilter(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 10, Deaths: 4,
	})
	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-b", Kills: 2, Deaths: 1,
	})

	combined := agg.Aggregate(ctx, "g1", []string{"Shadow"}, "srv-b")
	assert.EqualValues(t, 2, combined.Kills)
	assert.EqualValues(t, 1, combined.Deaths)
	assert.Equal(t, 1, combined.ServersPlayed)
}

func TestAggregateKDRWithoutDeaths(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)

	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 7, Deaths: 0,
	})

	combined := agg.Aggregate(context.Background(), "g1", []string{"Shadow"}, "")
	assert.InDelta(t, 7.0, combined.KDR, 0.001, "zero deaths means KDR equals kills")
}

func TestWeaponStats(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	seedKill(t, store, "e1", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e2", "Shadow", "Reaper", "M4A1", false)
	seedKill(t, store, "e3", "Shadow", "Ghost", "AK47", false)
	seedKill(t, store, "e4", "Shadow", "Ghost", "", false)
	// A mislabeled suicide that arrived unflagged must still not count
	seedKill(t, store, "e5", "Shadow", "Shadow", "Menu Suicide", false)
	seedKill(t, store, "e6", "Shadow", "Shadow", "Falling", true)

	combined := agg.Aggregate(ctx, "g1", []string{"Shadow"}, "")
	assert.Equal(t, map[string]int{"M4A1": 2, "AK47": 1, "Unknown": 1}, combined.WeaponStats)
	assert.Equal(t, "M4A1", combined.FavoriteWeapon)
}

func TestWeaponStatsFavoriteTieBreak(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)

	seedKill(t, store, "e1", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e2", "Shadow", "Ghost", "AK47", false)

	for i := 0; i < 10; i++ {
		combined := agg.Aggregate(context.Background(), "g1", []string{"Shadow"}, "")
		assert.Equal(t, "AK47", combined.FavoriteWeapon, "ties break on the lexically smaller weapon")
	}
}

func TestRivalAndNemesis(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	// Shadow kills Ghost three times, Reaper once
	seedKill(t, store, "e1", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e2", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e3", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e4", "Shadow", "Reaper", "M4A1", false)
	// Reaper kills Shadow twice
	seedKill(t, store, "e5", "Reaper", "Shadow", "AK47", false)
	seedKill(t, store, "e6", "Reaper", "Shadow", "AK47", false)

	combined := agg.Aggregate(ctx, "g1", []string{"Shadow"}, "")
	assert.Equal(t, "Ghost", combined.Rival)
	assert.Equal(t, 3, combined.RivalKills)
	assert.Equal(t, "Reaper", combined.Nemesis)
	assert.Equal(t, 2, combined.NemesisDeaths)
}

func TestRivalExcludesOwnCharacters(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	// Shadow farms their own alt, plus one legitimate kill
	seedKill(t, store, "e1", "Shadow", "ShadowAlt", "M4A1", false)
	seedKill(t, store, "e2", "Shadow", "ShadowAlt", "M4A1", false)
	seedKill(t, store, "e3", "Shadow", "Ghost", "M4A1", false)
	seedKill(t, store, "e4", "ShadowAlt", "Shadow", "AK47", false)

	combined := agg.Aggregate(ctx, "g1", []string{"Shadow", "ShadowAlt"}, "")
	assert.Equal(t, "Ghost", combined.Rival, "alts never count as rivals")
	assert.Equal(t, 1, combined.RivalKills)
	assert.Empty(t, combined.Nemesis, "deaths to your own alt do not make a nemesis")
}

func TestAggregateNoKillEvents(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)

	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 4, Deaths: 2,
	})

	// Summaries exist but no kill events were retained. The headline
	// numbers must still come out, with the event-derived fields empty.
	combined := agg.Aggregate(context.Background(), "g1", []string{"Shadow"}, "")
	assert.EqualValues(t, 4, combined.Kills)
	assert.Empty(t, combined.FavoriteWeapon)
	assert.Empty(t, combined.Rival)
	assert.Empty(t, combined.Nemesis)
	assert.Nil(t, combined.WeaponStats)
}

func TestCompareIgnoresServerFilter(t *testing.T) {
	store := newTestStore(t)
	agg := NewAggregator(store)
	ctx := context.Background()

	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-a", Kills: 5, Deaths: 1,
	})
	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Shadow", ServerID: "srv-b", Kills: 5, Deaths: 1,
	})
	seedSummary(t, store, domain.PvpSummary{
		GuildID: "g1", Character: "Ghost", ServerID: "srv-a", Kills: 3, Deaths: 3,
	})

	first, second := agg.Compare(ctx, "g1", []string{"Shadow"}, []string{"Ghost"})
	assert.EqualValues(t, 10, first.Kills, "comparison always spans all servers")
	assert.EqualValues(t, 3, second.Kills)
}

func TestTopEntry(t *testing.T) {
	tests := []struct {
		counts    map[string]int
		wantKey   string
		wantCount int
	}{
		{map[string]int{"a": 3, "b": 1}, "a", 3},
		{map[string]int{"b": 2, "a": 2}, "a", 2},
		{map[string]int{"only": 1}, "only", 1},
		{map[string]int{}, "", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.counts), func(t *testing.T) {
			key, count := topEntry(tt.counts)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}
