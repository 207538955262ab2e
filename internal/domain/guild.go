package domain

// Guild is a Discord community the bot serves.
type Guild struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Servers []GameServer `json:"servers,omitempty"`
}

// GameServer is one game-server instance registered to a guild. Killfeed
// embeds for the server are posted to ChannelID when it is set.
type GameServer struct {
	GuildID   string `json:"guild_id"`
	ServerID  string `json:"server_id"`
	Name      string `json:"name"`
	ChannelID string `json:"channel_id,omitempty"`
}

// FindServer returns the server matching id, or nil.
func (g *Guild) FindServer(id string) *GameServer {
	for i := range g.Servers {
		if g.Servers[i].ServerID == id {
			return &g.Servers[i]
		}
	}
	return nil
}
