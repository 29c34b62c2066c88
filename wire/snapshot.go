package wire

import "github.com/vmihailenco/msgpack/v5"

// PlayerSnapshot is the full replicated state of one player, encoded over
// the best-effort binary channel.
type PlayerSnapshot struct {
	ID           string  `msgpack:"id"`
	Name         string  `msgpack:"name"`
	Team         int     `msgpack:"team"`
	X            float64 `msgpack:"x"`
	Y            float64 `msgpack:"y"`
	VX           float64 `msgpack:"vx"`
	VY           float64 `msgpack:"vy"`
	FlipX        bool    `msgpack:"flipX"`
	Health       int     `msgpack:"health"`
	IsDead       bool    `msgpack:"isDead"`
	RespawnTimer float64 `msgpack:"respawnTimer"`
	IsDashing    bool    `msgpack:"isDashing"`
}

// BulletSnapshot is the full replicated state of one bullet.
type BulletSnapshot struct {
	ID        string  `msgpack:"id"`
	X         float64 `msgpack:"x"`
	Y         float64 `msgpack:"y"`
	VX        float64 `msgpack:"vx"`
	OwnerID   string  `msgpack:"ownerId"`
	OwnerTeam int     `msgpack:"ownerTeam"`
}

// Snapshot is the full authoritative room state at one instant.
type Snapshot struct {
	Players []PlayerSnapshot `msgpack:"players"`
	Bullets []BulletSnapshot `msgpack:"bullets"`
	Tick    uint64           `msgpack:"tick"`
}

// PlayerDelta carries only the fields that changed since the previous
// snapshot sent to a client. Pointer fields are nil when unchanged, matching
// the per-client delta encoding goblons uses for its own player state.
type PlayerDelta struct {
	ID           string   `msgpack:"id"`
	Name         *string  `msgpack:"name,omitempty"`
	Team         *int     `msgpack:"team,omitempty"`
	X            *float64 `msgpack:"x,omitempty"`
	Y            *float64 `msgpack:"y,omitempty"`
	VX           *float64 `msgpack:"vx,omitempty"`
	VY           *float64 `msgpack:"vy,omitempty"`
	FlipX        *bool    `msgpack:"flipX,omitempty"`
	Health       *int     `msgpack:"health,omitempty"`
	IsDead       *bool    `msgpack:"isDead,omitempty"`
	RespawnTimer *float64 `msgpack:"respawnTimer,omitempty"`
	IsDashing    *bool    `msgpack:"isDashing,omitempty"`
}

// DeltaSnapshot is what actually goes over the wire once a client has
// received at least one full snapshot.
type DeltaSnapshot struct {
	Tick           uint64           `msgpack:"tick"`
	PlayersChanged []PlayerDelta    `msgpack:"playersChanged,omitempty"`
	PlayersRemoved []string         `msgpack:"playersRemoved,omitempty"`
	BulletsAdded   []BulletSnapshot `msgpack:"bulletsAdded,omitempty"`
	BulletsRemoved []string         `msgpack:"bulletsRemoved,omitempty"`
}

// EncodeSnapshot msgpack-encodes a full snapshot, sent on a client's first
// state update after connecting.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

// DecodeSnapshot decodes a full snapshot.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(b, &s)
	return s, err
}

// EncodeDelta msgpack-encodes a delta snapshot.
func EncodeDelta(d DeltaSnapshot) ([]byte, error) {
	return msgpack.Marshal(d)
}

// DecodeDelta decodes a delta snapshot.
func DecodeDelta(b []byte) (DeltaSnapshot, error) {
	var d DeltaSnapshot
	err := msgpack.Unmarshal(b, &d)
	return d, err
}

// ComputeDelta compares cur against prev, the previous snapshot sent to a
// client, and returns only what changed. Bullets are short-lived enough that a
// pure added/removed diff (no in-flight field deltas) is sufficient.
func ComputeDelta(prev, cur Snapshot) DeltaSnapshot {
	d := DeltaSnapshot{Tick: cur.Tick}

	prevPlayers := make(map[string]PlayerSnapshot, len(prev.Players))
	for _, p := range prev.Players {
		prevPlayers[p.ID] = p
	}
	curPlayerIDs := make(map[string]bool, len(cur.Players))
	for _, p := range cur.Players {
		curPlayerIDs[p.ID] = true
		if old, ok := prevPlayers[p.ID]; ok {
			if delta := diffPlayer(old, p); hasPlayerChanges(delta) {
				d.PlayersChanged = append(d.PlayersChanged, delta)
			}
		} else {
			d.PlayersChanged = append(d.PlayersChanged, fullPlayerDelta(p))
		}
	}
	for id := range prevPlayers {
		if !curPlayerIDs[id] {
			d.PlayersRemoved = append(d.PlayersRemoved, id)
		}
	}

	prevBullets := make(map[string]bool, len(prev.Bullets))
	for _, b := range prev.Bullets {
		prevBullets[b.ID] = true
	}
	curBulletIDs := make(map[string]bool, len(cur.Bullets))
	for _, b := range cur.Bullets {
		curBulletIDs[b.ID] = true
		if !prevBullets[b.ID] {
			d.BulletsAdded = append(d.BulletsAdded, b)
		}
	}
	for _, b := range prev.Bullets {
		if !curBulletIDs[b.ID] {
			d.BulletsRemoved = append(d.BulletsRemoved, b.ID)
		}
	}

	return d
}

func fullPlayerDelta(p PlayerSnapshot) PlayerDelta {
	return PlayerDelta{
		ID:           p.ID,
		Name:         &p.Name,
		Team:         &p.Team,
		X:            &p.X,
		Y:            &p.Y,
		VX:           &p.VX,
		VY:           &p.VY,
		FlipX:        &p.FlipX,
		Health:       &p.Health,
		IsDead:       &p.IsDead,
		RespawnTimer: &p.RespawnTimer,
		IsDashing:    &p.IsDashing,
	}
}

func diffPlayer(old, cur PlayerSnapshot) PlayerDelta {
	d := PlayerDelta{ID: cur.ID}
	if old.Name != cur.Name {
		d.Name = &cur.Name
	}
	if old.Team != cur.Team {
		d.Team = &cur.Team
	}
	if old.X != cur.X {
		d.X = &cur.X
	}
	if old.Y != cur.Y {
		d.Y = &cur.Y
	}
	if old.VX != cur.VX {
		d.VX = &cur.VX
	}
	if old.VY != cur.VY {
		d.VY = &cur.VY
	}
	if old.FlipX != cur.FlipX {
		d.FlipX = &cur.FlipX
	}
	if old.Health != cur.Health {
		d.Health = &cur.Health
	}
	if old.IsDead != cur.IsDead {
		d.IsDead = &cur.IsDead
	}
	if old.RespawnTimer != cur.RespawnTimer {
		d.RespawnTimer = &cur.RespawnTimer
	}
	if old.IsDashing != cur.IsDashing {
		d.IsDashing = &cur.IsDashing
	}
	return d
}

func hasPlayerChanges(d PlayerDelta) bool {
	return d.Name != nil || d.Team != nil || d.X != nil || d.Y != nil ||
		d.VX != nil || d.VY != nil || d.FlipX != nil || d.Health != nil ||
		d.IsDead != nil || d.RespawnTimer != nil || d.IsDashing != nil
}

// ApplyDelta folds a delta snapshot onto a client's locally held base
// snapshot, producing the new full state.
func ApplyDelta(base Snapshot, d DeltaSnapshot) Snapshot {
	players := make(map[string]PlayerSnapshot, len(base.Players))
	for _, p := range base.Players {
		players[p.ID] = p
	}
	for _, pd := range d.PlayersChanged {
		p, ok := players[pd.ID]
		if !ok {
			p = PlayerSnapshot{ID: pd.ID}
		}
		applyPlayerDelta(&p, pd)
		players[pd.ID] = p
	}
	for _, id := range d.PlayersRemoved {
		delete(players, id)
	}

	bullets := make(map[string]BulletSnapshot, len(base.Bullets))
	for _, b := range base.Bullets {
		bullets[b.ID] = b
	}
	for _, b := range d.BulletsAdded {
		bullets[b.ID] = b
	}
	for _, id := range d.BulletsRemoved {
		delete(bullets, id)
	}

	out := Snapshot{Tick: d.Tick}
	for _, p := range players {
		out.Players = append(out.Players, p)
	}
	for _, b := range bullets {
		out.Bullets = append(out.Bullets, b)
	}
	return out
}

func applyPlayerDelta(p *PlayerSnapshot, d PlayerDelta) {
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Team != nil {
		p.Team = *d.Team
	}
	if d.X != nil {
		p.X = *d.X
	}
	if d.Y != nil {
		p.Y = *d.Y
	}
	if d.VX != nil {
		p.VX = *d.VX
	}
	if d.VY != nil {
		p.VY = *d.VY
	}
	if d.FlipX != nil {
		p.FlipX = *d.FlipX
	}
	if d.Health != nil {
		p.Health = *d.Health
	}
	if d.IsDead != nil {
		p.IsDead = *d.IsDead
	}
	if d.RespawnTimer != nil {
		p.RespawnTimer = *d.RespawnTimer
	}
	if d.IsDashing != nil {
		p.IsDashing = *d.IsDashing
	}
}
