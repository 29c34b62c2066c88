package room

import "math"

// Event is a discrete, broadcast-worthy occurrence produced by a tick or by
// Shoot. The room package stays pure with no I/O; transport turns these
// into wire messages.
type Event interface{}

// PlayerKilledEvent mirrors the wire player-killed message.
type PlayerKilledEvent struct {
	KillerID, VictimID     string
	KillerName, VictimName string
}

// MatchEndedEvent mirrors the wire match-ended message and carries the
// final per-player tallies so a caller can persist match history without
// reaching back into RoomState after it has moved on.
type MatchEndedEvent struct {
	WinningTeam         Team
	ScoreRed, ScoreBlue int
	DurationMs          float64
	Players             []PlayerResult
}

// PlayerResult is one player's final tally at match end.
type PlayerResult struct {
	PlayerID     string
	AuthPlayerID int64
	Team         Team
	Kills        int
	Deaths       int
}

// AddPlayer creates a Player balanced onto the team with fewer live
// players (ties favor red), spawns it, and returns it. Returns nil if the
// room is at MaxClients.
func (s *RoomState) AddPlayer(id, name string) *Player {
	if len(s.Players) >= MaxClients {
		return nil
	}
	team := s.balanceTeam()
	p := NewPlayer(id, name, team)
	s.Players[id] = p
	if s.State == StateWaiting && len(s.Players) > 0 {
		s.State = StatePlaying
	}
	return p
}

// RemovePlayer deletes a player. In-flight bullets they own remain valid
// until their natural end; owner departure doesn't invalidate in-flight
// shots.
func (s *RoomState) RemovePlayer(id string) {
	delete(s.Players, id)
}

func (s *RoomState) balanceTeam() Team {
	redCount, blueCount := 0, 0
	for _, p := range s.Players {
		if p.Team == TeamBlue {
			blueCount++
		} else {
			redCount++
		}
	}
	if blueCount < redCount {
		return TeamBlue
	}
	return TeamRed
}

// Shoot validates and creates a bullet for a live player while playing.
// Velocity is always server-computed; any client-supplied velocity is
// ignored.
func (s *RoomState) Shoot(ownerID string, x, y float64) (*Bullet, bool) {
	if s.State != StatePlaying {
		return nil, false
	}
	owner, ok := s.Players[ownerID]
	if !ok || owner.IsDead {
		return nil, false
	}
	if !finite(x) || !finite(y) {
		return nil, false
	}

	vx := BulletSpeed
	if owner.FlipX {
		vx = -BulletSpeed
	}

	if !finite(x) || !finite(y) || !finite(vx) {
		return nil, false
	}

	b := &Bullet{
		ID:        s.nextBulletID(ownerID),
		X:         x,
		Y:         y,
		VX:        vx,
		OwnerID:   ownerID,
		OwnerTeam: owner.Team,
	}
	s.Bullets = append(s.Bullets, b)
	return b, true
}

// ApplyMove updates a live player's pose from an inbound move message.
// Ignored if the player is dead or missing.
func (s *RoomState) ApplyMove(id string, x, y, vx, vy float64, flipX bool) {
	p, ok := s.Players[id]
	if !ok || p.IsDead {
		return
	}
	if !finite(x) || !finite(y) || !finite(vx) || !finite(vy) {
		return
	}
	p.X, p.Y, p.VX, p.VY, p.FlipX = x, y, vx, vy, flipX
}

// ApplyDash sets the transient dash flag mirrored for VFX.
func (s *RoomState) ApplyDash(id string, isDashing bool) {
	p, ok := s.Players[id]
	if !ok || p.IsDead {
		return
	}
	p.IsDashing = isDashing
}

// Tick advances the simulation by dtMs milliseconds and returns any
// discrete events produced. If dtMs is absent or non-finite the tick is
// skipped entirely; the simulation never advances on garbage input.
func (s *RoomState) Tick(dtMs float64) []Event {
	if !finite(dtMs) {
		return nil
	}
	if s.State != StatePlaying {
		return nil
	}

	s.GameTimeMs += dtMs

	s.tickRespawns(dtMs)

	var events []Event
	removeIdx := s.tickBullets(dtMs, &events)

	if len(removeIdx) > 0 {
		removeSorted := dedupSortDesc(removeIdx)
		for _, idx := range removeSorted {
			s.Bullets = append(s.Bullets[:idx], s.Bullets[idx+1:]...)
		}
	}

	return events
}

func (s *RoomState) tickRespawns(dtMs float64) {
	for _, p := range s.Players {
		if p.IsDead && p.RespawnTimer > 0 {
			p.RespawnTimer -= dtMs
			if p.RespawnTimer <= 0 {
				p.Respawn()
			}
		}
	}
}

// tickBullets runs CCD for every bullet, resolves hits/platform/off-world/
// lifetime removal, and returns the indices (into s.Bullets) to remove.
// Bullet removal triggers (hit, platform, off-world, lifetime) are
// mutually exclusive within one tick per bullet: each bullet contributes
// at most one removal index, so every bullet is removed exactly once. The
// lifetime check is a safety net alongside the natural off-world/platform
// bounds, catching any bullet that would otherwise linger past its cap.
func (s *RoomState) tickBullets(dtMs float64, events *[]Event) []int {
	var removeIdx []int
	dtSec := dtMs / 1000.0

	for i, b := range s.Bullets {
		if !finite(b.X) || !finite(b.Y) || !finite(b.VX) {
			removeIdx = append(removeIdx, i)
			continue
		}

		b.AgeMs += dtMs
		if b.AgeMs >= BulletLifetimeMs {
			removeIdx = append(removeIdx, i)
			continue
		}

		movement := b.VX * dtSec
		prevX := b.X
		nextX := prevX + movement

		sweptMinX := math.Min(prevX, nextX) - BulletWidth/2
		sweptMaxX := math.Max(prevX, nextX) + BulletWidth/2

		hit := false
		for _, p := range s.Players {
			if p.Team == b.OwnerTeam || p.ID == b.OwnerID || p.IsDead {
				continue
			}
			if !sweptOverlapsPlayer(sweptMinX, sweptMaxX, b.Y, p) {
				continue
			}
			hit = true
			s.resolveHit(b, p, events)
			removeIdx = append(removeIdx, i)
			break
		}
		if hit {
			// If this hit ended the match, remaining bullets still finish
			// their own removal bookkeeping this tick; no further tick runs.
			continue
		}

		b.X = nextX
		if hitsPlatform(b.X, b.Y) {
			removeIdx = append(removeIdx, i)
			continue
		}
		if b.X < WorldMinX || b.X > WorldMaxX {
			removeIdx = append(removeIdx, i)
			continue
		}
	}

	return removeIdx
}

// sweptOverlapsPlayer checks the swept bullet AABB (horizontal only —
// vertical extent is the static bullet box) against the player hitbox.
func sweptOverlapsPlayer(sweptMinX, sweptMaxX, bulletY float64, p *Player) bool {
	pMinX := p.X - PlayerHalfWidth
	pMaxX := p.X + PlayerHalfWidth
	if sweptMaxX < pMinX || sweptMinX > pMaxX {
		return false
	}
	playerCenterY := p.Y - PlayerHalfHeight
	bMinY := bulletY - BulletHeight/2
	bMaxY := bulletY + BulletHeight/2
	pMinY := playerCenterY - PlayerHalfHeight
	pMaxY := playerCenterY + PlayerHalfHeight
	return bMaxY >= pMinY && bMinY <= pMaxY
}

func hitsPlatform(x, y float64) bool {
	for _, pl := range Platforms {
		minX, maxX := pl.X-pl.W/2, pl.X+pl.W/2
		minY, maxY := pl.Y-pl.H/2, pl.Y+pl.H/2
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			return true
		}
	}
	return false
}

// resolveHit applies damage, handles kill/score/match-end bookkeeping, and
// appends the resulting events.
func (s *RoomState) resolveHit(b *Bullet, victim *Player, events *[]Event) {
	died := victim.TakeDamage(BulletDamage)
	if !died {
		return
	}

	victim.Deaths++

	killer, hasKiller := s.Players[b.OwnerID]
	killerName := b.OwnerID
	if hasKiller {
		killerName = killer.Name
		killer.Kills++
	}

	*events = append(*events, PlayerKilledEvent{
		KillerID:   b.OwnerID,
		VictimID:   victim.ID,
		KillerName: killerName,
		VictimName: victim.Name,
	})

	s.AddScore(b.OwnerTeam)

	if s.State == StatePlaying && s.Score(b.OwnerTeam) >= WinScore {
		s.State = StateEnded
		s.WinningTeam = b.OwnerTeam
		s.HasWinner = true
		*events = append(*events, MatchEndedEvent{
			WinningTeam: b.OwnerTeam,
			DurationMs:  s.GameTimeMs,
			Players:     s.playerResults(),
			ScoreRed:    s.ScoreRed,
			ScoreBlue:   s.ScoreBlue,
		})
	}
}

// playerResults snapshots every player's final tally for match persistence.
func (s *RoomState) playerResults() []PlayerResult {
	out := make([]PlayerResult, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, PlayerResult{
			PlayerID:     p.ID,
			AuthPlayerID: p.AuthPlayerID,
			Team:         p.Team,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
		})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// dedupSortDesc removes duplicate indices and sorts descending so repeated
// splicing never shifts an unprocessed index.
func dedupSortDesc(idx []int) []int {
	seen := make(map[int]bool, len(idx))
	out := idx[:0:0]
	for _, v := range idx {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] < out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
