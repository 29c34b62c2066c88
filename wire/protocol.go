// Package wire defines the JSON message envelope and payload shapes
// exchanged between a room and its connected clients.
package wire

import "encoding/json"

// Client -> server message types.
const (
	MsgMove  = "move"
	MsgDash  = "dash"
	MsgShoot = "shoot"
)

// Server -> client message types.
const (
	MsgTeamAssigned = "team-assigned"
	MsgPlayerKilled = "player-killed"
	MsgMatchEnded   = "match-ended"
	MsgError        = "error"
)

// Envelope wraps all outgoing direct messages with a type discriminator.
type Envelope struct {
	T string      `json:"t"`
	D interface{} `json:"d,omitempty"`
}

// InEnvelope decodes an incoming message's type before its payload is
// unmarshaled, avoiding a double pass over the body.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// MoveMsg updates a live player's pose. Velocity and flipX are trusted
// from the client; only bullet velocity is server-computed.
type MoveMsg struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	FlipX     bool    `json:"flipX"`
}

// DashMsg mirrors the transient dash flag for VFX.
type DashMsg struct {
	IsDashing bool `json:"isDashing"`
}

// ShootMsg requests a bullet at (x, y); the server computes velocity.
type ShootMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TeamAssignedMsg is sent once to a joining client.
type TeamAssignedMsg struct {
	Team       string `json:"team"`
	PlayerID   string `json:"playerId"`
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// PlayerKilledMsg is broadcast to the whole room on a kill.
type PlayerKilledMsg struct {
	KillerID   string `json:"killerId"`
	VictimID   string `json:"victimId"`
	KillerName string `json:"killerName"`
	VictimName string `json:"victimName"`
}

// Scores carries both teams' scores.
type Scores struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// MatchEndedMsg is broadcast exactly once when a team reaches the win score.
type MatchEndedMsg struct {
	WinningTeam string `json:"winningTeam"`
	Scores      Scores `json:"scores"`
}

// ErrorMsg reports a rejected request to the client that sent it.
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RoomMetadata is the lobby-searchable summary of a room, refreshed on
// every join/leave and on gameState transitions.
type RoomMetadata struct {
	ID        string `json:"id"`
	RedCount  int    `json:"redCount"`
	BlueCount int    `json:"blueCount"`
	GameState string `json:"gameState"`
}
