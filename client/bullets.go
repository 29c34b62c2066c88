package client

import (
	"math"

	"teamshooter/room"
	"teamshooter/wire"
)

// ownBulletMatchRadiusPx is how close a reported removal's x has to land
// to a locally fired bullet for the tracker to treat them as the same
// shot.
const ownBulletMatchRadiusPx = 50.0

// TrackedBullet is a visual prediction of one in-flight bullet, either
// another player's (mirrored from the server) or the local player's own
// (predicted the instant it was fired).
type TrackedBullet struct {
	ID      string
	OwnerID string
	Team    int

	X, Y float64
	VX   float64

	Active bool
}

// BulletTracker mirrors server bullets the local player doesn't own and
// matches server removals back to the local player's own predicted
// bullets.
type BulletTracker struct {
	localPlayerID string
	tracked       map[string]*TrackedBullet
	ownPool       []*TrackedBullet
}

// NewBulletTracker creates an empty tracker for the given local player.
func NewBulletTracker(localPlayerID string) *BulletTracker {
	return &BulletTracker{
		localPlayerID: localPlayerID,
		tracked:       make(map[string]*TrackedBullet),
	}
}

// RegisterOwnBullet records a bullet the local player just fired, ahead
// of any server confirmation, so a later bullet-removed for it can be
// matched by position.
func (bt *BulletTracker) RegisterOwnBullet(x, y, vx float64, team int) *TrackedBullet {
	tb := &TrackedBullet{OwnerID: bt.localPlayerID, Team: team, X: x, Y: y, VX: vx, Active: true}
	bt.ownPool = append(bt.ownPool, tb)
	return tb
}

// OnBulletAdded starts tracking a bullet fired by any other player,
// teammate or enemy. Bullets owned by the
// local player are not tracked here; they are already predicted
// visually from the moment Shoot was called.
func (bt *BulletTracker) OnBulletAdded(b wire.BulletSnapshot) *TrackedBullet {
	if b.OwnerID == bt.localPlayerID {
		return nil
	}
	tb := &TrackedBullet{ID: b.ID, OwnerID: b.OwnerID, Team: b.OwnerTeam, X: b.X, Y: b.Y, VX: b.VX, Active: true}
	bt.tracked[b.ID] = tb
	return tb
}

// OnBulletRemoved stops tracking a bullet (if it was another player's) or
// matches and deactivates one of the local player's own predicted
// bullets by proximity, reporting where an impact effect belongs.
func (bt *BulletTracker) OnBulletRemoved(b wire.BulletSnapshot) (x, y float64, ok bool) {
	if tb, found := bt.tracked[b.ID]; found {
		delete(bt.tracked, b.ID)
		return tb.X, tb.Y, true
	}
	if b.OwnerID != bt.localPlayerID {
		return 0, 0, false
	}
	for _, ob := range bt.ownPool {
		if !ob.Active {
			continue
		}
		if math.Abs(ob.X-b.X) <= ownBulletMatchRadiusPx {
			ob.Active = false
			return ob.X, ob.Y, true
		}
	}
	return 0, 0, false
}

// Update advances every active tracked bullet's predicted position.
func (bt *BulletTracker) Update(dtSec float64) {
	for _, tb := range bt.tracked {
		tb.X += tb.VX * dtSec
	}
	for _, ob := range bt.ownPool {
		if ob.Active {
			ob.X += ob.VX * dtSec
		}
	}
	bt.prune()
}

// prune drops own-pool entries already matched and deactivated so the
// pool doesn't grow unbounded.
func (bt *BulletTracker) prune() {
	kept := bt.ownPool[:0]
	for _, ob := range bt.ownPool {
		if ob.Active {
			kept = append(kept, ob)
		}
	}
	bt.ownPool = kept
}

// PredictedTravelMs is how long a freshly added bullet is expected to
// remain visible, matching the server's bullet lifetime exactly.
const PredictedTravelMs = room.BulletLifetimeMs
