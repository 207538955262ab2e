// Package render builds the themed Discord embeds used everywhere the bot
// speaks: killfeed posts, event notices, stats profiles, comparisons.
// Builders never fail; anything that goes wrong degrades to a plain
// fallback embed with no attachment.
package render

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/emeraldservers/killfeed/internal/domain"
)

const footerText = "Powered by Discord.gg/EmeraldServers"

// Theme colors per embed family.
var colors = map[string]int{
	"connection":  0x00d38a,
	"killfeed":    0xff6b6b,
	"mission":     0x4ecdc4,
	"airdrop":     0xffd93d,
	"helicrash":   0xff8c42,
	"trader":      0x6c5ce7,
	"vehicle":     0x74b9ff,
	"leaderboard": 0x0984e3,
	"error":       0xe74c3c,
	"info":        0x3498db,
	"nodata":      0x808080,
}

// Killfeed embeds color by death kind rather than family.
const (
	colorKill    = 0xffd700
	colorSuicide = 0xff0000
	colorFall    = 0xa855f7
)

// Factory renders embeds and resolves thumbnail assets from a directory.
type Factory struct {
	assetsDir string
	now       func() time.Time
	pick      func(n int) int
}

// NewFactory creates a Factory serving thumbnails from assetsDir. An empty
// assetsDir disables thumbnails entirely.
func NewFactory(assetsDir string) *Factory {
	return &Factory{
		assetsDir: assetsDir,
		now:       time.Now,
		pick:      rand.Intn,
	}
}

func (f *Factory) baseEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   f.now().UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

// Fallback returns the generic degraded embed. It carries no attachment.
func (f *Factory) Fallback(title, description string) (*discordgo.MessageEmbed, *discordgo.File) {
	return f.baseEmbed(title, description, colors["info"]), nil
}

// Connection renders a player join/leave notice.
func (f *Factory) Connection(ev domain.ConnectionEvent, serverName string) (*discordgo.MessageEmbed, *discordgo.File) {
	pool := connectionLeaveMessages
	if ev.Joined {
		pool = connectionJoinMessages
	}
	msg := f.choose(pool)

	embed := f.baseEmbed(msg.title, msg.description, colors["connection"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Player", Value: orUnknown(ev.Player, "Unknown Player"), Inline: true},
		{Name: "Platform", Value: orUnknown(ev.Platform, "Unknown"), Inline: true},
		{Name: "Server", Value: orUnknown(serverName, "Unknown Server"), Inline: true},
	}
	return embed, f.attach(embed, "connection")
}

// Killfeed renders a kill, suicide, or fall death.
func (f *Factory) Killfeed(ev domain.KillEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	kind := killKind(ev)

	var title string
	var atmosphere string
	var color int
	assetKey := "killfeed"

	switch kind {
	case killKindFall:
		title = f.choose(killfeedFallMessages).title
		atmosphere = f.chooseLine(atmosphericFall)
		color = colorFall
		assetKey = "falling"
	case killKindSuicide:
		title = f.choose(killfeedSuicideMessages).title
		atmosphere = f.chooseLine(atmosphericSuicide)
		color = colorSuicide
		assetKey = "suicide"
	default:
		title = f.choose(killfeedKillMessages).title
		atmosphere = f.chooseLine(atmosphericKill)
		color = colorKill
	}

	embed := f.baseEmbed(title, atmosphere, color)

	if kind == killKindKill {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Killer", Value: orUnknown(ev.Killer, "Unknown"), Inline: true},
			{Name: "Victim", Value: orUnknown(ev.Victim, "Unknown"), Inline: true},
			{Name: "Weapon", Value: orUnknown(ev.Weapon, "Unknown"), Inline: true},
		}
		if ev.Distance > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Distance", Value: fmt.Sprintf("%.0fm", ev.Distance), Inline: true,
			})
		}
	} else {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Player", Value: orUnknown(ev.Victim, "Unknown"), Inline: true},
			{Name: "Cause", Value: orUnknown(ev.Weapon, "Suicide"), Inline: true},
		}
	}

	return embed, f.attach(embed, assetKey)
}

// Mission renders a mission state change, colored by difficulty.
func (f *Factory) Mission(ev domain.MissionEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	msg := f.choose(missionReadyMessages)

	level := MissionLevel(ev.MissionID)
	color := colors["mission"]
	switch {
	case level >= 5:
		color = 0xff0000
	case level >= 4:
		color = 0xff8c00
	case level >= 3:
		color = 0xffd700
	}

	state := ev.State
	if state == "" {
		state = "READY"
	}

	embed := f.baseEmbed(msg.title, msg.description, color)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Mission", Value: MissionName(ev.MissionID), Inline: false},
		{Name: "Difficulty Level", Value: fmt.Sprintf("Level %d", level), Inline: true},
		{Name: "Status", Value: titleCase(state), Inline: true},
	}
	return embed, f.attach(embed, "mission")
}

// Airdrop renders an incoming supply drop.
func (f *Factory) Airdrop(ev domain.AreaEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	msg := f.choose(airdropMessages)
	state := ev.State
	if state == "" {
		state = "incoming"
	}
	embed := f.baseEmbed(msg.title, msg.description, colors["airdrop"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Location", Value: orUnknown(ev.Location, "Unknown Location"), Inline: true},
		{Name: "Status", Value: titleCase(state), Inline: true},
	}
	return embed, f.attach(embed, "airdrop")
}

// Helicrash renders a helicopter crash site notice.
func (f *Factory) Helicrash(ev domain.AreaEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	msg := f.choose(helicrashMessages)
	embed := f.baseEmbed(msg.title, msg.description, colors["helicrash"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Crash Site", Value: orUnknown(ev.Location, "Unknown Location"), Inline: true},
		{Name: "Status", Value: "Crashed", Inline: true},
	}
	return embed, f.attach(embed, "helicrash")
}

// Trader renders a trader arrival notice.
func (f *Factory) Trader(ev domain.AreaEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	msg := f.choose(traderMessages)
	embed := f.baseEmbed(msg.title, msg.description, colors["trader"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Location", Value: orUnknown(ev.Location, "Unknown Location"), Inline: true},
		{Name: "Status", Value: "Available", Inline: true},
	}
	return embed, f.attach(embed, "trader")
}

// Vehicle renders a vehicle spawn or removal.
func (f *Factory) Vehicle(ev domain.VehicleEvent) (*discordgo.MessageEmbed, *discordgo.File) {
	pool := vehicleSpawnMessages
	if ev.Action == "deleted" || ev.Action == "destroyed" {
		pool = vehicleDeleteMessages
	}
	msg := f.choose(pool)
	action := ev.Action
	if action == "" {
		action = "spawned"
	}
	embed := f.baseEmbed(msg.title, msg.description, colors["vehicle"])
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Vehicle", Value: orUnknown(ev.VehicleType, "Unknown Vehicle"), Inline: true},
		{Name: "Action", Value: titleCase(action), Inline: true},
	}
	return embed, f.attach(embed, "vehicle")
}

type killKindT int

const (
	killKindKill killKindT = iota
	killKindSuicide
	killKindFall
)

func killKind(ev domain.KillEvent) killKindT {
	if !ev.Suicide {
		return killKindKill
	}
	if containsFold(ev.Weapon, "fall") {
		return killKindFall
	}
	return killKindSuicide
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
