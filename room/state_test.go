package room

import "testing"

func TestNewPlayerSpawnsAtTeamSpawn(t *testing.T) {
	red := NewPlayer("p1", "Red Guy", TeamRed)
	if red.X != RedSpawnX || red.Y != RedSpawnY {
		t.Fatalf("red spawn = (%v, %v), want (%v, %v)", red.X, red.Y, RedSpawnX, RedSpawnY)
	}
	if red.Health != 100 || red.IsDead {
		t.Fatalf("new player should start alive at full health, got health=%d isDead=%v", red.Health, red.IsDead)
	}

	blue := NewPlayer("p2", "Blue Guy", TeamBlue)
	if blue.X != BlueSpawnX || blue.Y != BlueSpawnY {
		t.Fatalf("blue spawn = (%v, %v), want (%v, %v)", blue.X, blue.Y, BlueSpawnX, BlueSpawnY)
	}
}

func TestTakeDamageDeathInvariant(t *testing.T) {
	p := NewPlayer("p1", "A", TeamRed)
	died := p.TakeDamage(40)
	if died || p.IsDead {
		t.Fatalf("60 health remaining should not be dead")
	}
	died = p.TakeDamage(60)
	if !died || !p.IsDead {
		t.Fatalf("health at 0 must mark dead")
	}
	if p.Health != 0 {
		t.Fatalf("health should clamp at 0, got %d", p.Health)
	}
	if p.RespawnTimer != RespawnMs {
		t.Fatalf("respawnTimer = %v, want %v", p.RespawnTimer, RespawnMs)
	}

	// Further damage to an already-dead player is a no-op.
	died = p.TakeDamage(10)
	if died {
		t.Fatalf("TakeDamage on a dead player must not report a second death")
	}
}

func TestRespawnRestoresFullHealthAtSpawn(t *testing.T) {
	p := NewPlayer("p1", "A", TeamBlue)
	p.TakeDamage(100)
	p.X, p.Y = 10, 10
	p.Respawn()
	if p.IsDead {
		t.Fatalf("respawn must clear isDead")
	}
	if p.Health != 100 {
		t.Fatalf("respawn must restore full health, got %d", p.Health)
	}
	if p.X != BlueSpawnX || p.Y != BlueSpawnY {
		t.Fatalf("respawn must reset position to team spawn")
	}
	if p.RespawnTimer != 0 {
		t.Fatalf("respawnTimer must be cleared on respawn")
	}
}

func TestNextBulletIDNeverCollidesForSameOwner(t *testing.T) {
	s := NewRoomState()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := s.nextBulletID("ownerA")
		if seen[id] {
			t.Fatalf("duplicate bullet id %q after %d bullets", id, i)
		}
		seen[id] = true
	}
}

func TestScoreAndAddScore(t *testing.T) {
	s := NewRoomState()
	s.AddScore(TeamRed)
	s.AddScore(TeamRed)
	s.AddScore(TeamBlue)
	if s.Score(TeamRed) != 2 {
		t.Fatalf("red score = %d, want 2", s.Score(TeamRed))
	}
	if s.Score(TeamBlue) != 1 {
		t.Fatalf("blue score = %d, want 1", s.Score(TeamBlue))
	}
}

func TestTeamString(t *testing.T) {
	if TeamRed.String() != "red" {
		t.Fatalf("TeamRed.String() = %q, want red", TeamRed.String())
	}
	if TeamBlue.String() != "blue" {
		t.Fatalf("TeamBlue.String() = %q, want blue", TeamBlue.String())
	}
}
