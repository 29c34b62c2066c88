// Package roommgr owns the registry of live rooms and the single-worker
// wrapper around each one's simulation.
package roommgr

import (
	"log"
	"sync"
	"time"

	"teamshooter/persist"
	"teamshooter/room"
	"teamshooter/wire"
)

// Broadcaster is how a RoomHandle talks back to one connected client.
// transport's Client implements this; it owns the per-connection delta
// state needed to turn a full Snapshot into a binary DeltaSnapshot.
type Broadcaster interface {
	SendDirect(env wire.Envelope)
	SendSnapshot(snap wire.Snapshot)
}

const snapshotEvery = room.TickHz / 30 // 30 snapshots/sec at a 60Hz tick

// RoomHandle is a single-threaded cooperative entity: every exported
// method takes the same mutex the tick loop holds, so no two handlers for
// this room ever run concurrently, matching either a mutex-guarded loop or
// a per-room command-channel worker.
type RoomHandle struct {
	ID string

	mu      sync.Mutex
	state   *room.RoomState
	clients map[string]Broadcaster

	db *persist.DB

	tickCount uint64
	running   bool
	stop      chan struct{}
}

// NewRoomHandle creates an empty, waiting room. db may be nil, in which
// case match results are simply not persisted (the common guest-only
// case).
func NewRoomHandle(id string, db *persist.DB) *RoomHandle {
	return &RoomHandle{
		ID:      id,
		state:   room.NewRoomState(),
		clients: make(map[string]Broadcaster),
		db:      db,
		stop:    make(chan struct{}),
	}
}

// Run drives the fixed-rate tick loop until Stop is called.
func (h *RoomHandle) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	ticker := time.NewTicker(room.TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.tick(float64(room.TickDuration / time.Millisecond))
		case <-h.stop:
			return
		}
	}
}

// Stop terminates the tick loop. Safe to call more than once.
func (h *RoomHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
}

func (h *RoomHandle) tick(dtMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := h.state.Tick(dtMs)
	h.tickCount++

	for _, e := range events {
		h.broadcastEvent(e)
	}

	if h.tickCount%snapshotEvery == 0 {
		h.broadcastSnapshot()
	}
}

func (h *RoomHandle) broadcastEvent(e room.Event) {
	switch ev := e.(type) {
	case room.PlayerKilledEvent:
		h.broadcast(wire.Envelope{T: wire.MsgPlayerKilled, D: wire.PlayerKilledMsg{
			KillerID:   ev.KillerID,
			VictimID:   ev.VictimID,
			KillerName: ev.KillerName,
			VictimName: ev.VictimName,
		}})
	case room.MatchEndedEvent:
		h.broadcast(wire.Envelope{T: wire.MsgMatchEnded, D: wire.MatchEndedMsg{
			WinningTeam: ev.WinningTeam.String(),
			Scores:      wire.Scores{Red: ev.ScoreRed, Blue: ev.ScoreBlue},
		}})
		h.recordMatch(ev)
	}
}

// recordMatch persists a finished match and every authenticated
// participant's tally. Guests (AuthPlayerID == 0) have no account row to
// attach stats to, so they're skipped. A nil db is a silent no-op;
// otherwise the match row itself is always written, even when no
// participant is authenticated.
func (h *RoomHandle) recordMatch(ev room.MatchEndedEvent) {
	if h.db == nil {
		return
	}

	matchID, err := h.db.RecordMatch(h.ID, ev.DurationMs/1000.0, int(ev.WinningTeam))
	if err != nil {
		log.Printf("record match: %v", err)
		return
	}

	for _, p := range ev.Players {
		if p.AuthPlayerID == 0 {
			continue
		}
		won := p.Team == ev.WinningTeam
		score := p.Kills*100 - p.Deaths*10
		if score < 0 {
			score = 0
		}
		xpEarned := p.Kills*10 + p.Deaths*2
		if won {
			xpEarned += 50
		}
		if err := h.db.RecordMatchPlayer(matchID, p.AuthPlayerID, int(p.Team), p.Kills, p.Deaths, score, xpEarned, won); err != nil {
			log.Printf("record match player %d: %v", p.AuthPlayerID, err)
		}
	}
}

func (h *RoomHandle) broadcast(env wire.Envelope) {
	for _, c := range h.clients {
		c.SendDirect(env)
	}
}

func (h *RoomHandle) broadcastSnapshot() {
	snap := h.snapshot()
	for _, c := range h.clients {
		c.SendSnapshot(snap)
	}
}

func (h *RoomHandle) snapshot() wire.Snapshot {
	s := wire.Snapshot{
		Players: make([]wire.PlayerSnapshot, 0, len(h.state.Players)),
		Bullets: make([]wire.BulletSnapshot, 0, len(h.state.Bullets)),
		Tick:    h.tickCount,
	}
	for _, p := range h.state.Players {
		s.Players = append(s.Players, wire.PlayerSnapshot{
			ID:           p.ID,
			Name:         p.Name,
			Team:         int(p.Team),
			X:            p.X,
			Y:            p.Y,
			VX:           p.VX,
			VY:           p.VY,
			FlipX:        p.FlipX,
			Health:       p.Health,
			IsDead:       p.IsDead,
			RespawnTimer: p.RespawnTimer,
			IsDashing:    p.IsDashing,
		})
	}
	for _, b := range h.state.Bullets {
		s.Bullets = append(s.Bullets, wire.BulletSnapshot{
			ID:        b.ID,
			X:         b.X,
			Y:         b.Y,
			VX:        b.VX,
			OwnerID:   b.OwnerID,
			OwnerTeam: int(b.OwnerTeam),
		})
	}
	return s
}

// Metadata returns the lobby-searchable summary of this room.
func (h *RoomHandle) Metadata() wire.RoomMetadata {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.metadataLocked()
}

func (h *RoomHandle) metadataLocked() wire.RoomMetadata {
	meta := wire.RoomMetadata{ID: h.ID}
	for _, p := range h.state.Players {
		if p.Team == room.TeamBlue {
			meta.BlueCount++
		} else {
			meta.RedCount++
		}
	}
	switch h.state.State {
	case room.StatePlaying:
		meta.GameState = "playing"
	case room.StateEnded:
		meta.GameState = "ended"
	default:
		meta.GameState = "waiting"
	}
	return meta
}

// PlayerCount reports how many players currently occupy the room.
func (h *RoomHandle) PlayerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.state.Players)
}

// Join creates a player, wires up its broadcaster, and sends it the
// team-assigned confirmation. authPlayerID is the persisted account id
// for this session, or 0 for a guest. Returns false if the room is full.
func (h *RoomHandle) Join(playerID, name string, authPlayerID int64, b Broadcaster) (room.Team, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.state.AddPlayer(playerID, name)
	if p == nil {
		return 0, false
	}
	p.AuthPlayerID = authPlayerID
	h.clients[playerID] = b

	b.SendDirect(wire.Envelope{T: wire.MsgTeamAssigned, D: wire.TeamAssignedMsg{
		Team:       p.Team.String(),
		PlayerID:   playerID,
		RoomID:     h.ID,
		PlayerName: name,
	}})
	return p.Team, true
}

// Leave removes a player and its broadcaster from the room.
func (h *RoomHandle) Leave(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.RemovePlayer(playerID)
	delete(h.clients, playerID)
}

// Move applies an inbound move message.
func (h *RoomHandle) Move(playerID string, x, y, vx, vy float64, flipX bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.ApplyMove(playerID, x, y, vx, vy, flipX)
}

// Dash applies an inbound dash message.
func (h *RoomHandle) Dash(playerID string, isDashing bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.ApplyDash(playerID, isDashing)
}

// Shoot applies an inbound shoot message.
func (h *RoomHandle) Shoot(playerID string, x, y float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.state.Shoot(playerID, x, y)
	return ok
}
