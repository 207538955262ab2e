package domain

import "time"

// Event types accepted from the ingest pipeline and rebroadcast over
// WebSocket.
const (
	EventKill       = "kill"
	EventConnection = "connection"
	EventMission    = "mission"
	EventAirdrop    = "airdrop"
	EventHelicrash  = "helicrash"
	EventTrader     = "trader"
	EventVehicle    = "vehicle"
)

// Weapon identifiers that denote a self-inflicted death. Kill events
// carrying one of these never count toward weapon stats, regardless of the
// suicide flag set upstream.
var suicideWeapons = map[string]bool{
	"Menu Suicide": true,
	"Suicide":      true,
	"Falling":      true,
}

// IsSuicideWeapon reports whether weapon denotes a suicide or fall cause.
func IsSuicideWeapon(weapon string) bool {
	return suicideWeapons[weapon]
}

// KillEvent is an immutable record of a single death. Appended by the
// ingest pipeline; read-only everywhere else.
type KillEvent struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	ServerID  string    `json:"server_id"`
	Killer    string    `json:"killer"`
	Victim    string    `json:"victim"`
	Weapon    string    `json:"weapon"`
	Distance  float64   `json:"distance"`
	Suicide   bool      `json:"suicide"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionEvent is a player join or leave notice from a game server.
type ConnectionEvent struct {
	Player   string `json:"player"`
	Platform string `json:"platform"`
	Joined   bool   `json:"joined"`
}

// MissionEvent signals a mission state change on a game server.
type MissionEvent struct {
	MissionID string `json:"mission_id"`
	State     string `json:"state"`
}

// AreaEvent covers map events that only carry a location (airdrops,
// helicrashes, traders).
type AreaEvent struct {
	Location string `json:"location"`
	State    string `json:"state,omitempty"`
}

// VehicleEvent signals a vehicle spawn or removal.
type VehicleEvent struct {
	VehicleType string `json:"vehicle_type"`
	Action      string `json:"action"`
}

// Event is the envelope broadcast to WebSocket clients.
type Event struct {
	Type      string      `json:"event"`
	GuildID   string      `json:"guild_id"`
	ServerID  string      `json:"server_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}
