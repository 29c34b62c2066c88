package client

import (
	"math"

	"teamshooter/room"
)

// dashGraceMs is how long the wider dashing snap threshold stays active
// after a dash ends, to tolerate the extra desync a high-speed move
// leaves behind.
const dashGraceMs = 250.0

// HealthEvent is emitted by Reconciler.ApplyServerUpdate when the
// server's authoritative health or death state changes in a way a
// frontend should react to cosmetically.
type HealthEvent int

const (
	HitEffect HealthEvent = iota
	DeathEffect
	RespawnEffect
)

// Reconciler holds the local player's visible position and the
// prediction error owed against the last authoritative update. It
// never touches input or movement; callers advance X/Y however their
// local simulation does, and feed server truth in through
// ApplyServerUpdate.
type Reconciler struct {
	X, Y       float64
	errX, errY float64

	dashGrace float64
	isDashing bool

	health int
	isDead bool
}

// NewReconciler starts a reconciler at the player's spawn position.
func NewReconciler(x, y float64, health int) *Reconciler {
	return &Reconciler{X: x, Y: y, health: health}
}

// SetDashing tells the reconciler whether the local player is currently
// dashing, widening the snap threshold for the duration plus a short
// grace window after it ends.
func (r *Reconciler) SetDashing(dashing bool) {
	r.isDashing = dashing
	if dashing {
		r.dashGrace = dashGraceMs
	}
}

func (r *Reconciler) snapThreshold() float64 {
	if r.isDashing || r.dashGrace > 0 {
		return room.SnapThresholdDashingPx
	}
	return room.SnapThresholdPx
}

// Update bleeds off any stored prediction error and drains the post-dash
// grace window. Call once per local frame.
func (r *Reconciler) Update(dtSec float64) {
	if r.dashGrace > 0 && !r.isDashing {
		r.dashGrace -= dtSec * 1000
		if r.dashGrace < 0 {
			r.dashGrace = 0
		}
	}
	if r.errX == 0 && r.errY == 0 {
		return
	}
	decay := room.ReconcileRatePerSec * dtSec
	r.X += r.errX * decay
	r.Y += r.errY * decay
	r.errX *= 1 - decay
	r.errY *= 1 - decay
	if math.Abs(r.errX) < 0.1 {
		r.errX = 0
	}
	if math.Abs(r.errY) < 0.1 {
		r.errY = 0
	}
}

// ReconcilePosition applies one authoritative position sample: within
// the dead band it is ignored, within the snap threshold it is bled off
// over subsequent Update calls, and beyond it the visible position
// teleports.
func (r *Reconciler) ReconcilePosition(serverX, serverY float64) {
	ex := serverX - r.X
	ey := serverY - r.Y
	mag := math.Hypot(ex, ey)

	switch {
	case mag <= room.ReconcileDeadBandPx:
		r.errX, r.errY = 0, 0
	case mag > r.snapThreshold():
		r.X, r.Y = serverX, serverY
		r.errX, r.errY = 0, 0
	default:
		r.errX, r.errY = ex, ey
	}
}

// ApplyServerUpdate reconciles position and reports any cosmetic health
// transitions the server's update implies.
func (r *Reconciler) ApplyServerUpdate(u LocalPlayerServerUpdateEvent) []HealthEvent {
	r.ReconcilePosition(u.X, u.Y)

	var events []HealthEvent
	wasDead := r.isDead
	if u.Health < r.health && u.Health > 0 {
		events = append(events, HitEffect)
	}
	if !wasDead && u.IsDead {
		events = append(events, DeathEffect)
	} else if wasDead && !u.IsDead {
		events = append(events, RespawnEffect)
	}
	r.health = u.Health
	r.isDead = u.IsDead
	return events
}

// RespawnSecondsRemaining converts a millisecond respawn timer into the
// whole-second ceiling a frontend displays as a countdown.
func RespawnSecondsRemaining(respawnTimerMs float64) int {
	if respawnTimerMs <= 0 {
		return 0
	}
	return int(math.Ceil(respawnTimerMs / 1000))
}
