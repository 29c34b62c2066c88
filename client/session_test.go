package client

import (
	"testing"

	"teamshooter/wire"
)

func findEvent[T any](events []Event) (T, bool) {
	var zero T
	for _, e := range events {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	return zero, false
}

func TestPlayerAddedBeforeTeamAssignedIsBuffered(t *testing.T) {
	s := NewSession()

	events := s.HandleSnapshot(wire.Snapshot{
		Tick:    1,
		Players: []wire.PlayerSnapshot{{ID: "me", Name: "Me", X: 10, Y: 20}},
	})
	if _, ok := findEvent[PlayerAddedEvent](events); ok {
		t.Fatal("player-added should be buffered until the local id is known")
	}
	if len(s.Remotes) != 0 {
		t.Fatal("no remote visual should be created before the local id is known")
	}

	events = s.HandleTeamAssigned(wire.TeamAssignedMsg{Team: "red", PlayerID: "me", RoomID: "r1", PlayerName: "Me"})
	added, ok := findEvent[PlayerAddedEvent](events)
	if !ok {
		t.Fatal("expected the buffered player-added to replay after team-assigned")
	}
	if !added.IsLocal || added.Player.ID != "me" {
		t.Fatalf("expected the local player's added event, got %+v", added)
	}
	if _, isRemote := s.Remotes["me"]; isRemote {
		t.Fatal("the local player must not get a remote visual")
	}
}

func TestPlayerAddedAfterTeamAssignedCreatesRemoteImmediately(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})

	events := s.HandleSnapshot(wire.Snapshot{
		Tick:    1,
		Players: []wire.PlayerSnapshot{{ID: "me", X: 0, Y: 0}, {ID: "enemy", X: 50, Y: 50}},
	})
	added, ok := findEvent[PlayerAddedEvent](events)
	if !ok {
		t.Fatal("expected a player-added event")
	}
	_ = added
	if _, ok := s.Remotes["enemy"]; !ok {
		t.Fatal("expected a remote visual for the non-local player")
	}
}

func TestSnapshotDiffEmitsLocalUpdateNotPlayerUpdated(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})
	s.HandleSnapshot(wire.Snapshot{Tick: 1, Players: []wire.PlayerSnapshot{{ID: "me", X: 0, Y: 0, Health: 100}}})

	events := s.HandleSnapshot(wire.Snapshot{Tick: 2, Players: []wire.PlayerSnapshot{{ID: "me", X: 5, Y: 0, Health: 80}}})
	if _, ok := findEvent[LocalPlayerServerUpdateEvent](events); !ok {
		t.Fatal("expected a local-player-server-update event")
	}
	if _, ok := findEvent[PlayerUpdatedEvent](events); ok {
		t.Fatal("the local player's own change must not also surface as player-updated")
	}
}

func TestSnapshotDiffEmitsPlayerUpdatedForRemote(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})
	s.HandleSnapshot(wire.Snapshot{Tick: 1, Players: []wire.PlayerSnapshot{
		{ID: "me", X: 0, Y: 0}, {ID: "enemy", X: 10, Y: 10},
	}})

	events := s.HandleSnapshot(wire.Snapshot{Tick: 2, Players: []wire.PlayerSnapshot{
		{ID: "me", X: 0, Y: 0}, {ID: "enemy", X: 20, Y: 10},
	}})
	upd, ok := findEvent[PlayerUpdatedEvent](events)
	if !ok || upd.Player.ID != "enemy" {
		t.Fatalf("expected a player-updated event for enemy, got events=%+v", events)
	}
	if s.Remotes["enemy"].TargetX != 20 {
		t.Fatalf("expected the remote's target to track the new snapshot, got %v", s.Remotes["enemy"].TargetX)
	}
}

func TestPlayerRemovedClearsRemote(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})
	s.HandleSnapshot(wire.Snapshot{Tick: 1, Players: []wire.PlayerSnapshot{
		{ID: "me", X: 0, Y: 0}, {ID: "enemy", X: 10, Y: 10},
	}})

	events := s.HandleSnapshot(wire.Snapshot{Tick: 2, Players: []wire.PlayerSnapshot{{ID: "me", X: 0, Y: 0}}})
	removed, ok := findEvent[PlayerRemovedEvent](events)
	if !ok || removed.PlayerID != "enemy" {
		t.Fatalf("expected a player-removed event for enemy, got %+v", events)
	}
	if _, stillThere := s.Remotes["enemy"]; stillThere {
		t.Fatal("the remote visual should be gone after removal")
	}
}

func TestDeltaSnapshotAppliesOnTopOfFullSnapshot(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})
	s.HandleSnapshot(wire.Snapshot{Tick: 1, Players: []wire.PlayerSnapshot{{ID: "me", X: 0, Y: 0}}})

	newX := 42.0
	events := s.HandleDelta(wire.DeltaSnapshot{
		Tick:           2,
		PlayersChanged: []wire.PlayerDelta{{ID: "me", X: &newX}},
	})
	upd, ok := findEvent[LocalPlayerServerUpdateEvent](events)
	if !ok || upd.X != 42 {
		t.Fatalf("expected the delta to move the local player to x=42, got %+v", events)
	}
}

func TestBulletAddedAndRemovedEvents(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})

	events := s.HandleSnapshot(wire.Snapshot{Tick: 1, Bullets: []wire.BulletSnapshot{{ID: "b1", X: 0, Y: 0}}})
	if _, ok := findEvent[BulletAddedEvent](events); !ok {
		t.Fatal("expected a bullet-added event")
	}

	events = s.HandleSnapshot(wire.Snapshot{Tick: 2})
	if _, ok := findEvent[BulletRemovedEvent](events); !ok {
		t.Fatal("expected a bullet-removed event")
	}
}

func TestDisconnectClearsState(t *testing.T) {
	s := NewSession()
	s.HandleTeamAssigned(wire.TeamAssignedMsg{PlayerID: "me"})
	s.HandleSnapshot(wire.Snapshot{Players: []wire.PlayerSnapshot{{ID: "me"}, {ID: "enemy"}}})

	s.Disconnect()
	if _, ok := s.LocalPlayerID(); ok {
		t.Fatal("expected local id to be cleared")
	}
	if len(s.Remotes) != 0 {
		t.Fatal("expected remotes to be cleared")
	}
}
