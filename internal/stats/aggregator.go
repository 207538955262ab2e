package stats

import (
	"context"
	"log"

	"github.com/emeraldservers/killfeed/internal/domain"
	"github.com/emeraldservers/killfeed/internal/storage"
)

// Aggregator computes combined PvP statistics over a player's characters.
type Aggregator struct {
	store *storage.Store
}

// NewAggregator creates an Aggregator backed by the given store.
func NewAggregator(store *storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate combines the summaries of all the player's characters into one
// CombinedStats, optionally restricted to serverID. It never returns an
// error: a failure of the summary scan yields zeroed stats, and failures of
// the weapon or rival/nemesis sub-computations leave those fields empty
// while the rest of the result stands. Either way the problem is logged.
func (a *Aggregator) Aggregate(ctx context.Context, guildID string, characters []string, serverID string) domain.CombinedStats {
	var combined domain.CombinedStats

	if len(characters) == 0 {
		return combined
	}

	if err := a.sumSummaries(ctx, guildID, characters, serverID, &combined); err != nil {
		log.Printf("stats: summary aggregation failed for guild %s: %v", guildID, err)
		return domain.CombinedStats{}
	}

	if combined.Deaths > 0 {
		combined.KDR = float64(combined.Kills) / float64(combined.Deaths)
	} else {
		combined.KDR = float64(combined.Kills)
	}

	if err := a.weaponStats(ctx, guildID, characters, serverID, &combined); err != nil {
		log.Printf("stats: weapon stats failed for guild %s: %v", guildID, err)
	}
	if err := a.rivalNemesis(ctx, guildID, characters, serverID, &combined); err != nil {
		log.Printf("stats: rival/nemesis failed for guild %s: %v", guildID, err)
	}

	return combined
}

// Compare aggregates two already-resolved character lists independently.
// The comparison path never filters by server.
func (a *Aggregator) Compare(ctx context.Context, guildID string, first, second []string) (domain.CombinedStats, domain.CombinedStats) {
	return a.Aggregate(ctx, guildID, first, ""), a.Aggregate(ctx, guildID, second, "")
}

// sumSummaries folds every summary row of every character into combined.
// ServersPlayed counts rows found, not distinct servers.
func (a *Aggregator) sumSummaries(ctx context.Context, guildID string, characters []string, serverID string, combined *domain.CombinedStats) error {
	for _, character := range characters {
		summaries, err := a.store.GetSummaries(ctx, guildID, character, serverID)
		if err != nil {
			return err
		}
		for _, sum := range summaries {
			combined.Kills += sum.Kills
			combined.Deaths += sum.Deaths
			combined.Suicides += sum.Suicides
			combined.ServersPlayed++
			if sum.BestStreak > combined.BestStreak {
				combined.BestStreak = sum.BestStreak
			}
			if sum.BestDistance > combined.BestDistance {
				combined.BestDistance = sum.BestDistance
			}
		}
	}
	return nil
}

// weaponStats tallies weapons over the characters' non-suicide kills.
// Reserved suicide/fall weapon identifiers are skipped even when an event
// was mislabeled as a regular kill upstream.
func (a *Aggregator) weaponStats(ctx context.Context, guildID string, characters []string, serverID string, combined *domain.CombinedStats) error {
	counts := make(map[string]int)

	for _, character := range characters {
		events, err := a.store.KillEventsByKiller(ctx, guildID, character, serverID, false)
		if err != nil {
			return err
		}
		for _, ev := range events {
			weapon := ev.Weapon
			if weapon == "" {
				weapon = "Unknown"
			}
			if domain.IsSuicideWeapon(weapon) {
				continue
			}
			counts[weapon]++
		}
	}

	if len(counts) > 0 {
		combined.WeaponStats = counts
		combined.FavoriteWeapon, _ = topEntry(counts)
	}
	return nil
}

// rivalNemesis finds the most-killed opposing character and the character
// that killed this player most. The player's own characters are excluded on
// both sides so alternate characters never count.
func (a *Aggregator) rivalNemesis(ctx context.Context, guildID string, characters []string, serverID string, combined *domain.CombinedStats) error {
	own := make(map[string]bool, len(characters))
	for _, c := range characters {
		own[c] = true
	}

	killsAgainst := make(map[string]int)
	deathsTo := make(map[string]int)

	for _, character := range characters {
		kills, err := a.store.KillEventsByKiller(ctx, guildID, character, serverID, false)
		if err != nil {
			return err
		}
		for _, ev := range kills {
			if ev.Victim != "" && !own[ev.Victim] {
				killsAgainst[ev.Victim]++
			}
		}

		deaths, err := a.store.KillEventsByVictim(ctx, guildID, character, serverID, false)
		if err != nil {
			return err
		}
		for _, ev := range deaths {
			if ev.Killer != "" && !own[ev.Killer] {
				deathsTo[ev.Killer]++
			}
		}
	}

	if len(killsAgainst) > 0 {
		combined.Rival, combined.RivalKills = topEntry(killsAgainst)
	}
	if len(deathsTo) > 0 {
		combined.Nemesis, combined.NemesisDeaths = topEntry(deathsTo)
	}
	return nil
}

// topEntry returns the key with the highest count. Ties break on the
// lexically smaller key so results do not depend on map iteration order.
func topEntry(counts map[string]int) (string, int) {
	var bestKey string
	bestCount := -1
	for key, count := range counts {
		if count > bestCount || (count == bestCount && key < bestKey) {
			bestKey, bestCount = key, count
		}
	}
	if bestCount < 0 {
		return "", 0
	}
	return bestKey, bestCount
}
