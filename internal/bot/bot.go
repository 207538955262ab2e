// Package bot runs the Discord side of the killfeed: the gateway session,
// slash command registration, and interaction handling.
package bot

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"

	"github.com/emeraldservers/killfeed/internal/config"
	"github.com/emeraldservers/killfeed/internal/render"
	"github.com/emeraldservers/killfeed/internal/stats"
	"github.com/emeraldservers/killfeed/internal/storage"
)

// Bot wraps the Discord session together with the services the slash
// commands need.
type Bot struct {
	session    *discordgo.Session
	store      *storage.Store
	resolver   *stats.Resolver
	aggregator *stats.Aggregator
	factory    *render.Factory

	appID   string
	guildID string

	registered []*discordgo.ApplicationCommand
}

// New creates a Bot. The session is not opened until Start.
func New(cfg config.DiscordConfig, store *storage.Store, factory *render.Factory) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		session:    session,
		store:      store,
		resolver:   stats.NewResolver(store),
		aggregator: stats.NewAggregator(store),
		factory:    factory,
		appID:      cfg.AppID,
		guildID:    cfg.GuildID,
	}, nil
}

// Start opens the gateway connection and registers the slash commands.
// When a guild ID is configured the commands are registered per-guild,
// which Discord propagates instantly. Global registration can take up to
// an hour to appear.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}

	appID := b.appID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(appID, b.guildID, cmd)
		if err != nil {
			b.session.Close()
			return fmt.Errorf("registering command %q: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}

	scope := "globally"
	if b.guildID != "" {
		scope = "for guild " + b.guildID
	}
	log.Printf("Registered %d slash commands %s", len(b.registered), scope)
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

// PostEmbed sends an embed (with an optional attachment) to a channel.
// It satisfies the event consumer's delivery interface.
func (b *Bot) PostEmbed(channelID string, embed *discordgo.MessageEmbed, file *discordgo.File) error {
	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if file != nil {
		msg.Files = []*discordgo.File{file}
	}
	_, err := b.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return fmt.Errorf("posting to channel %s: %w", channelID, err)
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Discord connected as %s#%s", r.User.Username, r.User.Discriminator)
}

// onInteraction dispatches slash command interactions. A panicking handler
// must never take the gateway loop down with it.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in command handler %q: %v\n%s", i.ApplicationCommandData().Name, r, debug.Stack())
			b.respondError(i, "Something went wrong while handling that command.")
		}
	}()

	if i.GuildID == "" {
		b.respondError(i, "This command only works inside a server.")
		return
	}

	switch i.ApplicationCommandData().Name {
	case "stats":
		b.handleStats(i)
	case "compare":
		b.handleCompare(i)
	case "link":
		b.handleLink(i)
	case "unlink":
		b.handleUnlink(i)
	case "leaderboard":
		b.handleLeaderboard(i)
	default:
		log.Printf("Unknown command %q", i.ApplicationCommandData().Name)
	}
}
