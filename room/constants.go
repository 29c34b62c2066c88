package room

import "time"

// Tick cadence is fixed; rooms never run at a variable rate.
const (
	TickHz       = 60
	TickDuration = time.Second / TickHz
)

// Team identifies which side a player or bullet belongs to.
type Team int

const (
	TeamRed  Team = 0
	TeamBlue Team = 1
)

func (t Team) String() string {
	if t == TeamBlue {
		return "blue"
	}
	return "red"
}

// World/combat constants shared bit-exact with the wire protocol.
const (
	BulletSpeed      = 900.0 // px/s
	BulletLifetimeMs = 2000
	BulletDamage     = 20
	BulletWidth      = 10.0
	BulletHeight     = 4.0

	PlayerHalfWidth  = 18.0
	PlayerHalfHeight = 26.0

	RespawnMs  = 3000
	WinScore   = 30
	MaxClients = 8

	RedSpawnX, RedSpawnY   = 200.0, 500.0
	BlueSpawnX, BlueSpawnY = 2800.0, 500.0

	WorldMinX = -100.0
	WorldMaxX = 3100.0

	ReconcileDeadBandPx    = 5.0
	SnapThresholdPx        = 100.0
	SnapThresholdDashingPx = 300.0
	ReconcileRatePerSec    = 0.3
)

// Platform is a static, axis-aligned rectangle bullets collide with.
// Geometry is part of the shared map contract, identical on every room.
type Platform struct {
	X, Y, W, H float64
}

// Platforms is the fixed set of static collision geometry for the arena.
var Platforms = []Platform{
	{X: 900, Y: 560, W: 400, H: 40},
	{X: 1700, Y: 460, W: 600, H: 40},
	{X: 2500, Y: 560, W: 400, H: 40},
}

// SpawnFor returns the fixed team spawn point.
func SpawnFor(team Team) (x, y float64) {
	if team == TeamBlue {
		return BlueSpawnX, BlueSpawnY
	}
	return RedSpawnX, RedSpawnY
}
