// Package client is the reusable client-side core: network session
// bookkeeping, remote-entity interpolation, local prediction and
// reconciliation, and bullet visual tracking. It depends only on wire
// for message shapes and on room for the shared gameplay constants, so
// any Go frontend (or test harness) can drive it without a real network
// connection.
package client

import "teamshooter/wire"

// Event is the typed surface the session emits as replicated state
// changes arrive. Concrete event types below are what a frontend
// switches on to drive its visuals.
type Event interface{}

// TeamAssignedEvent fires once, when the server confirms this
// connection's team and player id.
type TeamAssignedEvent struct {
	Team       string
	PlayerID   string
	RoomID     string
	PlayerName string
}

// PlayerAddedEvent fires the first time a player becomes visible,
// whether that is the local player or a remote one.
type PlayerAddedEvent struct {
	Player  wire.PlayerSnapshot
	IsLocal bool
}

// PlayerRemovedEvent fires when a player leaves the room.
type PlayerRemovedEvent struct {
	PlayerID string
	IsLocal  bool
}

// PlayerUpdatedEvent fires for a remote player whenever any replicated
// field changes. Local player changes are reported separately as
// LocalPlayerServerUpdateEvent so the reconciler can treat them
// specially.
type PlayerUpdatedEvent struct {
	Player wire.PlayerSnapshot
}

// LocalPlayerServerUpdateEvent is the authoritative correction the
// reconciler consumes.
type LocalPlayerServerUpdateEvent struct {
	X, Y         float64
	Health       int
	IsDead       bool
	RespawnTimer float64
}

// BulletAddedEvent/BulletRemovedEvent mirror server bullet lifetime.
type BulletAddedEvent struct {
	Bullet wire.BulletSnapshot
}

type BulletRemovedEvent struct {
	Bullet wire.BulletSnapshot
}

// StateChangedEvent fires once per replication update that was
// processed, regardless of whether anything inside it changed, so a
// frontend can drive a single "state refreshed" hook (tick counters,
// metadata redraw) without inspecting individual diffs.
type StateChangedEvent struct {
	Tick uint64
}

// PlayerKilledEvent and MatchEndedEvent are passthroughs of the
// server's discrete broadcasts; the session does not interpret them.
type PlayerKilledEvent struct {
	KillerID, VictimID     string
	KillerName, VictimName string
}

type MatchEndedEvent struct {
	WinningTeam string
	ScoreRed    int
	ScoreBlue   int
}

// Session tracks what a connected client currently believes about the
// room: which players and bullets exist, and whether the local player
// id has been disambiguated yet.
type Session struct {
	localPlayerID string
	haveLocalID   bool

	known   map[string]wire.PlayerSnapshot
	visual  map[string]bool
	pending []string

	bullets map[string]wire.BulletSnapshot

	current wire.Snapshot

	Remotes map[string]*RemotePlayer
}

// NewSession creates an empty session with no known players or bullets.
func NewSession() *Session {
	return &Session{
		known:   make(map[string]wire.PlayerSnapshot),
		visual:  make(map[string]bool),
		bullets: make(map[string]wire.BulletSnapshot),
		Remotes: make(map[string]*RemotePlayer),
	}
}

// LocalPlayerID reports the disambiguated local player id, if known.
func (s *Session) LocalPlayerID() (string, bool) {
	return s.localPlayerID, s.haveLocalID
}

// HandleTeamAssigned processes the one-time team-assigned message,
// unblocking any player-added notifications that arrived before the
// local id was known.
func (s *Session) HandleTeamAssigned(msg wire.TeamAssignedMsg) []Event {
	s.localPlayerID = msg.PlayerID
	s.haveLocalID = true

	events := []Event{TeamAssignedEvent{
		Team:       msg.Team,
		PlayerID:   msg.PlayerID,
		RoomID:     msg.RoomID,
		PlayerName: msg.PlayerName,
	}}

	pending := s.pending
	s.pending = nil
	for _, id := range pending {
		p, ok := s.known[id]
		if !ok {
			continue
		}
		events = append(events, s.applyPlayerAdded(p))
	}
	return events
}

func (s *Session) applyPlayerAdded(p wire.PlayerSnapshot) Event {
	s.visual[p.ID] = true
	isLocal := s.haveLocalID && p.ID == s.localPlayerID
	if !isLocal {
		s.Remotes[p.ID] = NewRemotePlayer(p)
	}
	return PlayerAddedEvent{Player: p, IsLocal: isLocal}
}

// HandleSnapshot processes a full authoritative snapshot, typically the
// first one a newly connected client receives.
func (s *Session) HandleSnapshot(snap wire.Snapshot) []Event {
	events := s.diff(snap)
	s.current = snap
	return events
}

// HandleDelta processes a delta snapshot against the last full state
// this session reconstructed.
func (s *Session) HandleDelta(d wire.DeltaSnapshot) []Event {
	next := wire.ApplyDelta(s.current, d)
	events := s.diff(next)
	s.current = next
	return events
}

func (s *Session) diff(next wire.Snapshot) []Event {
	var events []Event

	seen := make(map[string]bool, len(next.Players))
	for _, p := range next.Players {
		seen[p.ID] = true
		old, existed := s.known[p.ID]
		s.known[p.ID] = p
		switch {
		case !existed:
			if !s.haveLocalID {
				s.pending = append(s.pending, p.ID)
				continue
			}
			events = append(events, s.applyPlayerAdded(p))
		case old != p && s.visual[p.ID]:
			if s.haveLocalID && p.ID == s.localPlayerID {
				events = append(events, LocalPlayerServerUpdateEvent{
					X: p.X, Y: p.Y, Health: p.Health, IsDead: p.IsDead, RespawnTimer: p.RespawnTimer,
				})
			} else {
				if r, ok := s.Remotes[p.ID]; ok {
					r.SetTarget(p)
				}
				events = append(events, PlayerUpdatedEvent{Player: p})
			}
		}
	}
	for id := range s.known {
		if seen[id] {
			continue
		}
		isLocal := s.haveLocalID && id == s.localPlayerID
		if s.visual[id] {
			events = append(events, PlayerRemovedEvent{PlayerID: id, IsLocal: isLocal})
			delete(s.Remotes, id)
			delete(s.visual, id)
		}
		delete(s.known, id)
	}

	bulletSeen := make(map[string]bool, len(next.Bullets))
	for _, b := range next.Bullets {
		bulletSeen[b.ID] = true
		if _, ok := s.bullets[b.ID]; !ok {
			s.bullets[b.ID] = b
			events = append(events, BulletAddedEvent{Bullet: b})
		}
	}
	for id, b := range s.bullets {
		if !bulletSeen[id] {
			events = append(events, BulletRemovedEvent{Bullet: b})
			delete(s.bullets, id)
		}
	}

	events = append(events, StateChangedEvent{Tick: next.Tick})
	return events
}

// HandlePlayerKilled passes through the room's player-killed broadcast.
func (s *Session) HandlePlayerKilled(msg wire.PlayerKilledMsg) Event {
	return PlayerKilledEvent{
		KillerID: msg.KillerID, VictimID: msg.VictimID,
		KillerName: msg.KillerName, VictimName: msg.VictimName,
	}
}

// HandleMatchEnded passes through the room's match-ended broadcast.
func (s *Session) HandleMatchEnded(msg wire.MatchEndedMsg) Event {
	return MatchEndedEvent{
		WinningTeam: msg.WinningTeam,
		ScoreRed:    msg.Scores.Red,
		ScoreBlue:   msg.Scores.Blue,
	}
}

// Disconnect clears all session state, as when leaving multiplayer and
// returning to a lobby scene.
func (s *Session) Disconnect() {
	s.localPlayerID = ""
	s.haveLocalID = false
	s.known = make(map[string]wire.PlayerSnapshot)
	s.visual = make(map[string]bool)
	s.pending = nil
	s.bullets = make(map[string]wire.BulletSnapshot)
	s.current = wire.Snapshot{}
	s.Remotes = make(map[string]*RemotePlayer)
}
