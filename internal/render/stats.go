package render

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/emeraldservers/killfeed/internal/domain"
)

// StatsData is the payload for a combat-profile embed.
type StatsData struct {
	DisplayName string
	ServerName  string
	Stats       domain.CombinedStats
}

// CompareData is the payload for a side-by-side comparison embed.
type CompareData struct {
	FirstName   string
	SecondName  string
	Requester   string
	FirstStats  domain.CombinedStats
	SecondStats domain.CombinedStats
}

// Stats renders a full combat profile. When no PvP data exists the no-data
// variant is returned instead.
func (f *Factory) Stats(data StatsData) (*discordgo.MessageEmbed, *discordgo.File) {
	if !data.Stats.HasData() {
		return f.NoData(data.DisplayName, data.ServerName)
	}

	s := data.Stats
	embed := f.baseEmbed(
		"Combat Profile: "+data.DisplayName,
		"Operational statistics from "+data.ServerName,
		colorKill,
	)

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Kills", Value: fmt.Sprintf("%d", s.Kills), Inline: true},
		{Name: "Deaths", Value: fmt.Sprintf("%d", s.Deaths), Inline: true},
		{Name: "KDR", Value: fmt.Sprintf("%.2f", s.KDR), Inline: true},
		{Name: "Suicides", Value: fmt.Sprintf("%d", s.Suicides), Inline: true},
		{Name: "Best Streak", Value: fmt.Sprintf("%d", s.BestStreak), Inline: true},
		{Name: "Best Distance", Value: fmt.Sprintf("%.0fm", s.BestDistance), Inline: true},
		{Name: "Favorite Weapon", Value: orUnknown(s.FavoriteWeapon, "None"), Inline: true},
		{Name: "Rival", Value: rivalValue(s.Rival, s.RivalKills), Inline: true},
		{Name: "Nemesis", Value: rivalValue(s.Nemesis, s.NemesisDeaths), Inline: true},
	}
	if s.ServersPlayed > 1 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Servers Played", Value: fmt.Sprintf("%d", s.ServersPlayed), Inline: true,
		})
	}

	return embed, f.attach(embed, "main")
}

// NoData renders the empty combat profile shown before a player has any
// recorded PvP activity.
func (f *Factory) NoData(displayName, serverName string) (*discordgo.MessageEmbed, *discordgo.File) {
	embed := f.baseEmbed(
		"Combat Profile: "+displayName,
		fmt.Sprintf("No PvP data found for %s on %s.\nStart playing to see your statistics!", displayName, serverName),
		colors["nodata"],
	)
	return embed, f.attach(embed, "main")
}

// Comparison renders two profiles side by side. No merged values are
// computed, each column is an independent aggregation.
func (f *Factory) Comparison(data CompareData) (*discordgo.MessageEmbed, *discordgo.File) {
	embed := f.baseEmbed(
		fmt.Sprintf("Combat Comparison: %s vs %s", data.FirstName, data.SecondName),
		"Requested by "+data.Requester,
		colors["leaderboard"],
	)

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: data.FirstName, Value: comparisonColumn(data.FirstStats), Inline: true},
		{Name: data.SecondName, Value: comparisonColumn(data.SecondStats), Inline: true},
	}

	return embed, f.attach(embed, "main")
}

// Leaderboard renders the guild ranking.
func (f *Factory) Leaderboard(guildName, category string, entries []domain.LeaderboardEntry) (*discordgo.MessageEmbed, *discordgo.File) {
	embed := f.baseEmbed("Leaderboard", "Top operatives of "+guildName, colors["leaderboard"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Ranking By", Value: titleCase(category), Inline: true},
	}

	var lines string
	for _, e := range entries {
		lines += fmt.Sprintf("%d. **%s** | %d kills, %d deaths, %.2f KDR\n", e.Rank, e.Character, e.Kills, e.Deaths, e.KDR)
	}
	if lines == "" {
		lines = "No PvP data recorded yet."
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Standings", Value: lines})

	return embed, f.attach(embed, "leaderboard")
}

func rivalValue(name string, count int) string {
	if name == "" {
		return "None"
	}
	return fmt.Sprintf("%s (%d)", name, count)
}

func comparisonColumn(s domain.CombinedStats) string {
	return fmt.Sprintf(
		"Kills: %d\nDeaths: %d\nKDR: %.2f\nBest Streak: %d\nFavorite Weapon: %s",
		s.Kills, s.Deaths, s.KDR, s.BestStreak, orUnknown(s.FavoriteWeapon, "None"),
	)
}
