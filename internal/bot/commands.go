package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/emeraldservers/killfeed/internal/render"
	"github.com/emeraldservers/killfeed/internal/stats"
	"github.com/emeraldservers/killfeed/internal/storage"
)

const commandTimeout = 10 * time.Second

// commandDefinitions returns the slash commands the bot registers at
// startup.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "stats",
			Description: "Show a player's combat statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "player",
					Description: "A Discord mention or an in-game character name (defaults to you)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "server",
					Description: "Restrict stats to a single game server",
					Required:    false,
				},
			},
		},
		{
			Name:        "compare",
			Description: "Compare your combat statistics against another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "opponent",
					Description: "The player to compare against",
					Required:    true,
				},
			},
		},
		{
			Name:        "link",
			Description: "Link an in-game character to your Discord account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "character",
					Description: "The exact in-game character name",
					Required:    true,
				},
			},
		},
		{
			Name:        "unlink",
			Description: "Unlink a character, or all characters, from your account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "character",
					Description: "The character to unlink (omit to unlink all)",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the guild kill leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "by",
					Description: "Ranking category",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Kills", Value: "kills"},
						{Name: "KDR", Value: "kdr"},
					},
				},
			},
		},
	}
}

// handleStats serves the /stats command. With no target the invoking user
// is resolved through their linked characters. A mention target works the
// same way for the mentioned user, and anything else is treated as a raw
// character name.
func (b *Bot) handleStats(i *discordgo.InteractionCreate) {
	b.deferResponse(i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	serverID := stringOption(opts, "server")
	if serverID != "" {
		guild, err := b.store.GetGuild(ctx, i.GuildID)
		if err == nil && (guild == nil || guild.FindServer(serverID) == nil) {
			b.followupError(i, fmt.Sprintf("Unknown server **%s** for this guild.", serverID))
			return
		}
	}

	var (
		characters  []string
		displayName string
		err         error
	)

	if target := stringOption(opts, "player"); target == "" {
		characters, displayName, err = b.resolver.ResolveDiscordUser(ctx, i.GuildID, i.Member.User.ID, memberDisplayName(i.Member))
		if errors.Is(err, stats.ErrNotFound) {
			b.followupError(i, "You have no linked characters. Use /link to link one, or pass a character name.")
			return
		}
	} else if id, ok := parseMention(target); ok {
		characters, displayName, err = b.resolver.ResolveDiscordUser(ctx, i.GuildID, id, b.displayNameFor(i.GuildID, id))
		if errors.Is(err, stats.ErrNotFound) {
			b.followupError(i, "That user has no linked characters.")
			return
		}
	} else {
		characters, displayName, err = b.resolver.ResolveName(ctx, i.GuildID, target)
		if errors.Is(err, stats.ErrNotFound) {
			b.followupError(i, fmt.Sprintf("No player named **%s** found.", target))
			return
		}
	}
	if err != nil {
		log.Printf("Stats resolution failed in guild %s: %v", i.GuildID, err)
		b.followupError(i, "Could not look up that player. Please try again.")
		return
	}

	combined := b.aggregator.Aggregate(ctx, i.GuildID, characters, serverID)
	embed, file := b.factory.Stats(render.StatsData{
		DisplayName: displayName,
		ServerName:  b.serverLabel(ctx, i.GuildID, serverID),
		Stats:       combined,
	})
	b.followupEmbed(i, embed, file)
}

// handleCompare serves the /compare command. The invoking user resolves
// first. If they have no linked characters the opponent is never queried.
func (b *Bot) handleCompare(i *discordgo.InteractionCreate) {
	b.deferResponse(i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	opponent := userOption(opts, "opponent", b.session)
	if opponent == nil {
		b.followupError(i, "Pick a user to compare against.")
		return
	}
	if opponent.ID == i.Member.User.ID {
		b.followupError(i, "You cannot compare against yourself.")
		return
	}

	own, ownName, err := b.resolver.ResolveDiscordUser(ctx, i.GuildID, i.Member.User.ID, memberDisplayName(i.Member))
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			b.followupError(i, "You have no linked characters. Use /link first.")
		} else {
			log.Printf("Compare resolution failed in guild %s: %v", i.GuildID, err)
			b.followupError(i, "Could not look up your characters. Please try again.")
		}
		return
	}

	theirs, theirName, err := b.resolver.ResolveDiscordUser(ctx, i.GuildID, opponent.ID, opponent.Username)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			b.followupError(i, fmt.Sprintf("**%s** has no linked characters.", opponent.Username))
		} else {
			log.Printf("Compare resolution failed in guild %s: %v", i.GuildID, err)
			b.followupError(i, "Could not look up the opponent. Please try again.")
		}
		return
	}

	first, second := b.aggregator.Compare(ctx, i.GuildID, own, theirs)
	embed, file := b.factory.Comparison(render.CompareData{
		FirstName:   ownName,
		SecondName:  theirName,
		Requester:   memberDisplayName(i.Member),
		FirstStats:  first,
		SecondStats: second,
	})
	b.followupEmbed(i, embed, file)
}

// handleLink serves the /link command.
func (b *Bot) handleLink(i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	character := strings.TrimSpace(stringOption(opts, "character"))
	if character == "" {
		b.respondEphemeral(i, "Character name cannot be empty.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	err := b.store.LinkCharacter(ctx, i.GuildID, i.Member.User.ID, character)
	if errors.Is(err, storage.ErrCharacterTaken) {
		b.respondEphemeral(i, fmt.Sprintf("**%s** is already linked to another account.", character))
		return
	}
	if err != nil {
		log.Printf("Link failed in guild %s: %v", i.GuildID, err)
		b.respondEphemeral(i, "Could not link that character. Please try again.")
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("Linked **%s** to your account.", character))
}

// handleUnlink serves the /unlink command. Without an argument all linked
// characters are removed.
func (b *Bot) handleUnlink(i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	character := strings.TrimSpace(stringOption(opts, "character"))

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if character == "" {
		n, err := b.store.UnlinkAll(ctx, i.GuildID, i.Member.User.ID)
		if err != nil {
			log.Printf("Unlink failed in guild %s: %v", i.GuildID, err)
			b.respondEphemeral(i, "Could not unlink your characters. Please try again.")
			return
		}
		if n == 0 {
			b.respondEphemeral(i, "You have no linked characters.")
			return
		}
		b.respondEphemeral(i, fmt.Sprintf("Unlinked %d character(s).", n))
		return
	}

	removed, err := b.store.UnlinkCharacter(ctx, i.GuildID, i.Member.User.ID, character)
	if err != nil {
		log.Printf("Unlink failed in guild %s: %v", i.GuildID, err)
		b.respondEphemeral(i, "Could not unlink that character. Please try again.")
		return
	}
	if !removed {
		b.respondEphemeral(i, fmt.Sprintf("**%s** is not linked to your account.", character))
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("Unlinked **%s**.", character))
}

// handleLeaderboard serves the /leaderboard command.
func (b *Bot) handleLeaderboard(i *discordgo.InteractionCreate) {
	b.deferResponse(i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	category := stringOption(opts, "by")
	if category == "" {
		category = "kills"
	}

	entries, err := b.store.Leaderboard(ctx, i.GuildID, category, 0)
	if err != nil {
		log.Printf("Leaderboard failed in guild %s: %v", i.GuildID, err)
		b.followupError(i, "Could not build the leaderboard. Please try again.")
		return
	}

	embed, file := b.factory.Leaderboard(b.guildLabel(ctx, i.GuildID), category, entries)
	b.followupEmbed(i, embed, file)
}

// serverLabel names a stats scope for embed text.
func (b *Bot) serverLabel(ctx context.Context, guildID, serverID string) string {
	if serverID == "" {
		return "All Servers"
	}
	guild, err := b.store.GetGuild(ctx, guildID)
	if err == nil && guild != nil {
		if srv := guild.FindServer(serverID); srv != nil && srv.Name != "" {
			return srv.Name
		}
	}
	return serverID
}

// guildLabel resolves a guild's display name, preferring the stored name
// and falling back to the Discord state cache.
func (b *Bot) guildLabel(ctx context.Context, guildID string) string {
	guild, err := b.store.GetGuild(ctx, guildID)
	if err == nil && guild != nil && guild.Name != "" {
		return guild.Name
	}
	if g, err := b.session.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	return "this guild"
}

// displayNameFor looks up a member's server nickname, falling back to the
// username and finally the bare ID.
func (b *Bot) displayNameFor(guildID, userID string) string {
	member, err := b.session.GuildMember(guildID, userID)
	if err != nil {
		return userID
	}
	return memberDisplayName(member)
}
