// Package ingest consumes game-server events from the NATS bus, persists
// kill events, folds them into PvP summaries, and fans the rendered embeds
// out to Discord and WebSocket subscribers.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/emeraldservers/killfeed/internal/domain"
	"github.com/emeraldservers/killfeed/internal/render"
	"github.com/emeraldservers/killfeed/internal/storage"
)

// subjectPrefix is the NATS subject namespace game servers publish to:
// killfeed.<guild_id>.<server_id>
const subjectPrefix = "killfeed"

// Poster delivers a rendered embed to a Discord channel.
type Poster interface {
	PostEmbed(channelID string, embed *discordgo.MessageEmbed, file *discordgo.File) error
}

// Broadcaster pushes an event to live WebSocket subscribers.
type Broadcaster interface {
	Broadcast(ev domain.Event)
}

// envelope is the wire format published by the ingestion pipeline. Exactly
// one payload field is set, matching Type.
type envelope struct {
	Type       string                  `json:"type"`
	Kill       *killPayload            `json:"kill,omitempty"`
	Connection *domain.ConnectionEvent `json:"connection,omitempty"`
	Mission    *domain.MissionEvent    `json:"mission,omitempty"`
	Area       *domain.AreaEvent       `json:"area,omitempty"`
	Vehicle    *domain.VehicleEvent    `json:"vehicle,omitempty"`
}

type killPayload struct {
	Killer   string  `json:"killer"`
	Victim   string  `json:"victim"`
	Weapon   string  `json:"weapon"`
	Distance float64 `json:"distance"`
	Suicide  bool    `json:"suicide"`
}

// Consumer subscribes to the event bus and processes published events.
type Consumer struct {
	store   *storage.Store
	factory *render.Factory
	poster  Poster
	hub     Broadcaster

	nc  *nats.Conn
	sub *nats.Subscription
}

// NewConsumer creates a Consumer. poster and hub may be nil (events are
// still stored and folded, just not fanned out).
func NewConsumer(store *storage.Store, factory *render.Factory, poster Poster, hub Broadcaster) *Consumer {
	return &Consumer{
		store:   store,
		factory: factory,
		poster:  poster,
		hub:     hub,
	}
}

// Start connects to NATS and subscribes to the killfeed subject space.
func (c *Consumer) Start(url string) error {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("ingest: NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("ingest: NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	sub, err := nc.Subscribe(subjectPrefix+".>", c.handleMessage)
	if err != nil {
		nc.Close()
		return fmt.Errorf("subscribing to %s.>: %w", subjectPrefix, err)
	}

	c.nc = nc
	c.sub = sub
	log.Printf("ingest: subscribed to %s.> on %s", subjectPrefix, nc.ConnectedUrl())
	return nil
}

// Stop drains the subscription and closes the connection.
func (c *Consumer) Stop() {
	if c.sub != nil {
		c.sub.Drain()
	}
	if c.nc != nil {
		c.nc.Drain()
		c.nc.Close()
	}
}

func (c *Consumer) handleMessage(msg *nats.Msg) {
	guildID, serverID, err := parseSubject(msg.Subject)
	if err != nil {
		log.Printf("ingest: dropping message: %v", err)
		return
	}

	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Printf("ingest: dropping malformed payload on %s: %v", msg.Subject, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.process(ctx, guildID, serverID, &env); err != nil {
		log.Printf("ingest: processing %s event on %s: %v", env.Type, msg.Subject, err)
	}
}

// parseSubject extracts guild and server IDs from a subject of the form
// killfeed.<guild_id>.<server_id>.
func parseSubject(subject string) (guildID, serverID string, err error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != subjectPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("unexpected subject %q", subject)
	}
	return parts[1], parts[2], nil
}

func (c *Consumer) process(ctx context.Context, guildID, serverID string, env *envelope) error {
	var embed *discordgo.MessageEmbed
	var file *discordgo.File
	var data interface{}

	switch env.Type {
	case domain.EventKill:
		if env.Kill == nil {
			return fmt.Errorf("kill event without payload")
		}
		ev := &domain.KillEvent{
			ID:       uuid.NewString(),
			GuildID:  guildID,
			ServerID: serverID,
			Killer:   env.Kill.Killer,
			Victim:   env.Kill.Victim,
			Weapon:   env.Kill.Weapon,
			Distance: env.Kill.Distance,
			Suicide:  env.Kill.Suicide,
		}
		if err := c.store.RecordKillEvent(ctx, ev); err != nil {
			return fmt.Errorf("recording kill event: %w", err)
		}
		embed, file = c.factory.Killfeed(*ev)
		data = ev

	case domain.EventConnection:
		if env.Connection == nil {
			return fmt.Errorf("connection event without payload")
		}
		embed, file = c.factory.Connection(*env.Connection, c.serverName(ctx, guildID, serverID))
		data = env.Connection

	case domain.EventMission:
		if env.Mission == nil {
			return fmt.Errorf("mission event without payload")
		}
		embed, file = c.factory.Mission(*env.Mission)
		data = env.Mission

	case domain.EventAirdrop:
		if env.Area == nil {
			return fmt.Errorf("airdrop event without payload")
		}
		embed, file = c.factory.Airdrop(*env.Area)
		data = env.Area

	case domain.EventHelicrash:
		if env.Area == nil {
			return fmt.Errorf("helicrash event without payload")
		}
		embed, file = c.factory.Helicrash(*env.Area)
		data = env.Area

	case domain.EventTrader:
		if env.Area == nil {
			return fmt.Errorf("trader event without payload")
		}
		embed, file = c.factory.Trader(*env.Area)
		data = env.Area

	case domain.EventVehicle:
		if env.Vehicle == nil {
			return fmt.Errorf("vehicle event without payload")
		}
		embed, file = c.factory.Vehicle(*env.Vehicle)
		data = env.Vehicle

	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}

	if c.hub != nil {
		c.hub.Broadcast(domain.Event{
			Type:      env.Type,
			GuildID:   guildID,
			ServerID:  serverID,
			Timestamp: time.Now().UTC(),
			Data:      data,
		})
	}

	if c.poster != nil {
		if channelID := c.channelFor(ctx, guildID, serverID); channelID != "" {
			if err := c.poster.PostEmbed(channelID, embed, file); err != nil {
				return fmt.Errorf("posting to channel %s: %w", channelID, err)
			}
		}
	}

	return nil
}

// channelFor returns the killfeed channel configured for a server, or ""
// when none is set.
func (c *Consumer) channelFor(ctx context.Context, guildID, serverID string) string {
	guild, err := c.store.GetGuild(ctx, guildID)
	if err != nil {
		log.Printf("ingest: looking up guild %s: %v", guildID, err)
		return ""
	}
	if guild == nil {
		return ""
	}
	if srv := guild.FindServer(serverID); srv != nil {
		return srv.ChannelID
	}
	return ""
}

func (c *Consumer) serverName(ctx context.Context, guildID, serverID string) string {
	guild, err := c.store.GetGuild(ctx, guildID)
	if err != nil || guild == nil {
		return serverID
	}
	if srv := guild.FindServer(serverID); srv != nil && srv.Name != "" {
		return srv.Name
	}
	return serverID
}
