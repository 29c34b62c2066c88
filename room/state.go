package room

import "strconv"

// GameState is the lifecycle phase of a match.
type GameState int

const (
	StateWaiting GameState = iota
	StatePlaying
	StateEnded
)

// Player is authoritative on the server and mirrored read-only on clients.
type Player struct {
	ID   string
	Name string
	Team Team

	X, Y   float64
	VX, VY float64
	FlipX  bool

	Health       int
	IsDead       bool
	RespawnTimer float64 // ms remaining

	IsDashing bool

	Kills, Deaths int

	// AuthPlayerID is the persisted account id for this session, or 0 for
	// a guest. Set by the caller after AddPlayer; the room never looks it
	// up itself.
	AuthPlayerID int64
}

// NewPlayer spawns a player at its team's spawn point with full health.
func NewPlayer(id, name string, team Team) *Player {
	x, y := SpawnFor(team)
	return &Player{
		ID:     id,
		Name:   name,
		Team:   team,
		X:      x,
		Y:      y,
		Health: 100,
	}
}

// Respawn resets a dead player to full health at their team spawn.
// Called only once RespawnTimer has crossed zero (Tick in sim.go).
func (p *Player) Respawn() {
	p.X, p.Y = SpawnFor(p.Team)
	p.VX, p.VY = 0, 0
	p.Health = 100
	p.IsDead = false
	p.RespawnTimer = 0
}

// TakeDamage applies damage and returns true if the player died from it.
func (p *Player) TakeDamage(dmg int) bool {
	if p.IsDead {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.IsDead = true
		p.RespawnTimer = RespawnMs
		return true
	}
	return false
}

// Bullet is authoritative on the server; owner team is frozen at creation.
type Bullet struct {
	ID        string
	X, Y      float64
	VX        float64 // vertical velocity is always zero in this game
	OwnerID   string
	OwnerTeam Team
	AgeMs     float64
}

// RoomState holds the full authoritative simulation state for one match.
type RoomState struct {
	Players map[string]*Player
	Bullets []*Bullet

	ScoreRed, ScoreBlue int
	State               GameState
	GameTimeMs          float64
	WinningTeam         Team
	HasWinner           bool

	nextBulletSeq map[string]uint64 // ownerId -> monotonic counter, avoids same-tick id collisions
}

// NewRoomState creates an empty, waiting room.
func NewRoomState() *RoomState {
	return &RoomState{
		Players:       make(map[string]*Player),
		nextBulletSeq: make(map[string]uint64),
	}
}

// Score returns the current score for a team.
func (s *RoomState) Score(team Team) int {
	if team == TeamBlue {
		return s.ScoreBlue
	}
	return s.ScoreRed
}

// AddScore increments the given team's score.
func (s *RoomState) AddScore(team Team) {
	if team == TeamBlue {
		s.ScoreBlue++
	} else {
		s.ScoreRed++
	}
}

// nextBulletID mints a collision-free bullet ID by pairing the owner with
// a monotonically increasing per-owner counter, so two bullets fired by
// the same player in the same millisecond never collide.
func (s *RoomState) nextBulletID(ownerID string) string {
	seq := s.nextBulletSeq[ownerID]
	s.nextBulletSeq[ownerID] = seq + 1
	return ownerID + "-" + strconv.FormatUint(seq, 36)
}
