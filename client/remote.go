package client

import (
	"math"

	"teamshooter/room"
	"teamshooter/wire"
)

// InterpolationRate is the per-tick exponential smoothing factor a
// remote player's visual position moves toward its target.
const InterpolationRate = 0.2

// Network-quality color bands, keyed off actual prediction distance
// rather than a placeholder.
const (
	NetworkQualityGreenPx  = 50.0
	NetworkQualityYellowPx = 100.0
)

// NetworkQuality buckets how far a remote player's visual position
// currently lags its last known server target.
type NetworkQuality int

const (
	QualityGreen NetworkQuality = iota
	QualityYellow
	QualityRed
)

// RemotePlayer is the client-side mirror of one other player: a target
// position sampled from the server and a visual position that eases
// toward it. Non-positional fields mirror the server immediately.
type RemotePlayer struct {
	ID   string
	Team int

	CurrentX, CurrentY float64
	TargetX, TargetY   float64

	Health       int
	FlipX        bool
	IsDashing    bool
	IsDead       bool
	RespawnTimer float64
}

// NewRemotePlayer creates a RemotePlayer already at its spawn snapshot,
// so it never visibly slides in from the origin on first sight.
func NewRemotePlayer(p wire.PlayerSnapshot) *RemotePlayer {
	r := &RemotePlayer{ID: p.ID}
	r.CurrentX, r.CurrentY = p.X, p.Y
	r.SetTarget(p)
	return r
}

// SetTarget records a fresh server sample. Position eases in over
// subsequent Update calls; everything else mirrors immediately.
func (r *RemotePlayer) SetTarget(p wire.PlayerSnapshot) {
	r.Team = p.Team
	r.TargetX, r.TargetY = p.X, p.Y
	r.Health = p.Health
	r.FlipX = p.FlipX
	r.IsDashing = p.IsDashing
	r.IsDead = p.IsDead
	r.RespawnTimer = p.RespawnTimer
}

// Update eases the visual position toward the target. The smoothing
// factor compounds across elapsed ticks so the same visual result comes
// out whether Update is called once per tick or with an irregular
// frame delta.
func (r *RemotePlayer) Update(dtSec float64) {
	ticks := dtSec * room.TickHz
	factor := 1 - math.Pow(1-InterpolationRate, ticks)
	r.CurrentX += (r.TargetX - r.CurrentX) * factor
	r.CurrentY += (r.TargetY - r.CurrentY) * factor
}

// PredictionDistance is how far the visual position currently lags the
// last known server target.
func (r *RemotePlayer) PredictionDistance() float64 {
	return math.Hypot(r.TargetX-r.CurrentX, r.TargetY-r.CurrentY)
}

// NetworkQuality classifies PredictionDistance into the indicator's
// color bands.
func (r *RemotePlayer) NetworkQuality() NetworkQuality {
	d := r.PredictionDistance()
	switch {
	case d <= NetworkQualityGreenPx:
		return QualityGreen
	case d <= NetworkQualityYellowPx:
		return QualityYellow
	default:
		return QualityRed
	}
}
