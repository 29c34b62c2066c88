package room

import (
	"math"
	"testing"
)

func TestAddPlayerJoinAndSpawn(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice")
	if a == nil {
		t.Fatal("expected player, got nil")
	}
	if a.Team != TeamRed {
		t.Fatalf("first player should join red (tie favors red), got %v", a.Team)
	}
	if a.X != RedSpawnX || a.Y != RedSpawnY {
		t.Fatalf("spawn position = (%v, %v), want (%v, %v)", a.X, a.Y, RedSpawnX, RedSpawnY)
	}
	if s.State != StatePlaying {
		t.Fatalf("room should transition to playing once non-empty, got %v", s.State)
	}
}

func TestAddPlayerTeamBalance(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	b := s.AddPlayer("b", "Bob")
	if b.Team != TeamBlue {
		t.Fatalf("second player should balance onto blue, got %v", b.Team)
	}
	if b.X != BlueSpawnX || b.Y != BlueSpawnY {
		t.Fatalf("blue spawn mismatch: (%v, %v)", b.X, b.Y)
	}
}

func TestAddPlayerRejectsBeyondCapacity(t *testing.T) {
	s := NewRoomState()
	for i := 0; i < MaxClients; i++ {
		if s.AddPlayer(string(rune('a'+i)), "x") == nil {
			t.Fatalf("expected player %d to be accepted", i)
		}
	}
	if s.AddPlayer("overflow", "x") != nil {
		t.Fatalf("room at capacity must reject further joins")
	}
}

func TestRemovePlayerLeavesInFlightBulletsAlone(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	b, ok := s.Shoot("a", 100, 500)
	if !ok {
		t.Fatal("expected shoot to succeed")
	}
	s.RemovePlayer("a")
	if len(s.Bullets) != 1 || s.Bullets[0].ID != b.ID {
		t.Fatalf("bullet from a departed owner must remain until its natural end")
	}
}

func TestShootVelocityRoundTrip(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")

	b, ok := s.Shoot("a", 500, 500)
	if !ok {
		t.Fatal("expected shoot to succeed")
	}
	if b.VX != BulletSpeed {
		t.Fatalf("flipX=false should yield VX=+BulletSpeed, got %v", b.VX)
	}

	s.Players["a"].FlipX = true
	b2, ok := s.Shoot("a", 500, 500)
	if !ok {
		t.Fatal("expected second shoot to succeed")
	}
	if b2.VX != -BulletSpeed {
		t.Fatalf("flipX=true should yield VX=-BulletSpeed, got %v", b2.VX)
	}
}

func TestShootRejectsDeadOrMissingOwner(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	if _, ok := s.Shoot("ghost", 0, 0); ok {
		t.Fatal("shoot from unknown owner must be rejected")
	}
	s.Players["a"].IsDead = true
	if _, ok := s.Shoot("a", 0, 0); ok {
		t.Fatal("shoot from a dead player must be rejected")
	}
}

func TestShootRejectsNonFiniteCoordinates(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	if _, ok := s.Shoot("a", math.NaN(), 0); ok {
		t.Fatal("non-finite x must be rejected")
	}
	if _, ok := s.Shoot("a", 0, math.Inf(1)); ok {
		t.Fatal("non-finite y must be rejected")
	}
}

func TestTickSkipsOnNonFiniteDelta(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	before := s.GameTimeMs
	events := s.Tick(math.NaN())
	if events != nil {
		t.Fatalf("a skipped tick must produce no events, got %v", events)
	}
	if s.GameTimeMs != before {
		t.Fatalf("gameTime must not advance on an invalid delta")
	}
}

func TestTickNoopWhenNotPlaying(t *testing.T) {
	s := NewRoomState() // State defaults to StateWaiting, no players added
	events := s.Tick(16.6)
	if events != nil {
		t.Fatalf("tick while waiting must be a no-op, got %v", events)
	}
}

func TestTickAdvancesGameTime(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	s.Tick(16.6)
	if s.GameTimeMs != 16.6 {
		t.Fatalf("gameTime = %v, want 16.6", s.GameTimeMs)
	}
}

// CCD boundary case from the testable-properties table: a bullet travelling
// more than its own width in a single tick must still register the hit.
func TestBulletCCDHitsFastMovingBullet(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice") // red
	a.X, a.Y = 400, 500

	b := s.AddPlayer("b", "Bob") // blue
	b.X, b.Y = 500, 500

	bullet, ok := s.Shoot("a", 400, 500)
	if !ok {
		t.Fatal("shoot failed")
	}
	_ = bullet

	// One large tick so the bullet sweeps straight through b's hitbox
	// without landing inside it on any discrete sample.
	events := s.Tick(1000.0 / 6.0) // ~150px of travel at BulletSpeed
	if b.Health != 100-BulletDamage {
		t.Fatalf("health = %d, want %d after a swept hit", b.Health, 100-BulletDamage)
	}
	if len(s.Bullets) != 0 {
		t.Fatalf("bullet must be removed after hitting, got %d remaining", len(s.Bullets))
	}
	foundKill := false
	for _, e := range events {
		if k, ok := e.(PlayerKilledEvent); ok {
			_ = k
			foundKill = true
		}
	}
	if foundKill {
		t.Fatalf("single hit for %d damage should not kill a full-health player", BulletDamage)
	}
}

func TestBulletNeverDamagesSameTeamOrOwner(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice") // red
	a.X, a.Y = 500, 500
	s.AddPlayer("b", "Bob")          // blue, so the next join ties and lands on red
	ally := s.AddPlayer("c", "Carl") // red
	ally.X, ally.Y = 520, 500

	s.Shoot("a", 500, 500)
	for i := 0; i < 10; i++ {
		s.Tick(16.6)
	}
	if ally.Health != 100 {
		t.Fatalf("same-team player took damage: health=%d", ally.Health)
	}
	if a.Health != 100 {
		t.Fatalf("owner damaged itself: health=%d", a.Health)
	}
}

func TestKillAwardsScoreAndBroadcastsOnce(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice") // red
	a.X, a.Y = 1500, 500
	b := s.AddPlayer("b", "Bob") // blue
	b.X, b.Y = 1700, 500

	var killed *PlayerKilledEvent
	killCount := 0
	for i := 0; i < 600 && !b.IsDead; i++ {
		if len(s.Bullets) == 0 {
			s.Shoot("a", a.X, a.Y)
		}
		for _, e := range s.Tick(16.6) {
			if k, ok := e.(PlayerKilledEvent); ok {
				killed = &k
				killCount++
			}
		}
	}

	if !b.IsDead {
		t.Fatal("b should have died to repeated hits")
	}
	if killed == nil {
		t.Fatal("expected a PlayerKilledEvent")
	}
	if killCount != 1 {
		t.Fatalf("player-killed broadcast %d times, want 1", killCount)
	}
	if killed.KillerID != "a" || killed.VictimID != "b" {
		t.Fatalf("unexpected killed event: %+v", killed)
	}
	if s.Score(TeamRed) != 1 {
		t.Fatalf("red score = %d, want 1", s.Score(TeamRed))
	}
	if b.RespawnTimer != RespawnMs {
		t.Fatalf("respawnTimer = %v, want %v", b.RespawnTimer, RespawnMs)
	}
}

func TestRespawnExactlyOnce(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice")
	a.IsDead = true
	a.RespawnTimer = RespawnMs
	a.X, a.Y = 9999, 9999

	respawns := 0
	elapsed := 0.0
	for elapsed < RespawnMs+100 {
		wasDead := a.IsDead
		s.Tick(16.6)
		elapsed += 16.6
		if wasDead && !a.IsDead {
			respawns++
		}
	}
	if respawns != 1 {
		t.Fatalf("player respawned %d times, want exactly 1", respawns)
	}
	if a.X != RedSpawnX || a.Y != RedSpawnY {
		t.Fatalf("respawn did not reset position: (%v, %v)", a.X, a.Y)
	}
}

func TestMatchEndsAtWinScoreAndStopsSimulating(t *testing.T) {
	s := NewRoomState()
	a := s.AddPlayer("a", "Alice") // red
	a.X, a.Y = 1500, 500
	b := s.AddPlayer("b", "Bob") // blue
	b.X, b.Y = 1700, 500

	s.ScoreRed = WinScore - 1

	var ended *MatchEndedEvent
	for i := 0; i < 600 && s.State == StatePlaying; i++ {
		if len(s.Bullets) == 0 {
			s.Shoot("a", a.X, a.Y)
		}
		for _, e := range s.Tick(16.6) {
			if m, ok := e.(MatchEndedEvent); ok {
				ended = &m
			}
		}
		if b.IsDead {
			b.Respawn()
		}
	}

	if s.State != StateEnded {
		t.Fatalf("gameState = %v, want ended", s.State)
	}
	if !s.HasWinner || s.WinningTeam != TeamRed {
		t.Fatalf("winningTeam = %v hasWinner=%v, want red/true", s.WinningTeam, s.HasWinner)
	}
	if ended == nil {
		t.Fatal("expected a MatchEndedEvent")
	}

	// Subsequent ticks are no-ops once the match has ended.
	before := s.GameTimeMs
	events := s.Tick(16.6)
	if events != nil || s.GameTimeMs != before {
		t.Fatal("ticks after match end must be no-ops")
	}
}

func TestOffWorldBulletIsRemoved(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	s.Shoot("a", WorldMaxX-1, 500)
	for i := 0; i < 10 && len(s.Bullets) > 0; i++ {
		s.Tick(16.6)
	}
	if len(s.Bullets) != 0 {
		t.Fatalf("bullet crossing the world bound must be removed, %d remain", len(s.Bullets))
	}
}

func TestBulletExpiresAfterLifetime(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")

	// Parked well clear of any platform and the world bounds, with zero
	// velocity, so nothing but the lifetime safety net can remove it.
	s.Bullets = append(s.Bullets, &Bullet{ID: "stale", X: 1500, Y: 200, VX: 0, OwnerID: "a", AgeMs: BulletLifetimeMs - 1})

	s.Tick(16.6)
	if len(s.Bullets) != 0 {
		t.Fatalf("bullet past its lifetime must be removed even with no other trigger, %d remain", len(s.Bullets))
	}
}

func TestBulletLifetimeDoesNotRemoveEarly(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	s.Bullets = append(s.Bullets, &Bullet{ID: "fresh", X: 1500, Y: 200, VX: 0, OwnerID: "a", AgeMs: 0})

	s.Tick(16.6)
	if len(s.Bullets) != 1 {
		t.Fatalf("a freshly aged bullet must not be removed, %d remain", len(s.Bullets))
	}
}

func TestPlatformBulletIsRemoved(t *testing.T) {
	s := NewRoomState()
	s.AddPlayer("a", "Alice")
	pl := Platforms[0]
	s.Shoot("a", pl.X-pl.W/2+1, pl.Y)
	for i := 0; i < 10 && len(s.Bullets) > 0; i++ {
		s.Tick(16.6)
	}
	if len(s.Bullets) != 0 {
		t.Fatalf("bullet entering platform geometry must be removed, %d remain", len(s.Bullets))
	}
}
