package roommgr

import (
	"sync"

	"github.com/google/uuid"

	"teamshooter/persist"
	"teamshooter/room"
	"teamshooter/wire"
)

const maxRooms = 100

// Manager tracks every live room, keyed by room ID. There is no
// matchmaking beyond "find a room with a free seat" — this spec's whole
// simulation surface is a single team-deathmatch mode.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*RoomHandle
	db    *persist.DB
}

// NewManager creates an empty registry. db may be nil if persistence is
// disabled, in which case every room it creates runs guest-only.
func NewManager(db *persist.DB) *Manager {
	return &Manager{rooms: make(map[string]*RoomHandle), db: db}
}

// CreateRoom starts a new room and its tick loop. Returns nil if the
// server is already hosting the maximum number of rooms.
func (m *Manager) CreateRoom() *RoomHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rooms) >= maxRooms {
		return nil
	}

	id := uuid.NewString()
	h := NewRoomHandle(id, m.db)
	m.rooms[id] = h
	go h.Run()
	return h
}

// GetRoom looks up a room by ID.
func (m *Manager) GetRoom(id string) (*RoomHandle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.rooms[id]
	return h, ok
}

// FindJoinable returns the first room with an open seat, creating a new
// one if none exists or all are full.
func (m *Manager) FindJoinable() *RoomHandle {
	m.mu.RLock()
	for _, h := range m.rooms {
		if h.PlayerCount() < room.MaxClients {
			m.mu.RUnlock()
			return h
		}
	}
	m.mu.RUnlock()
	return m.CreateRoom()
}

// RemoveEmpty tears down a room's tick loop and drops it from the
// registry once its last player has left.
func (m *Manager) RemoveEmpty(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rooms[id]
	if !ok || h.PlayerCount() > 0 {
		return
	}
	h.Stop()
	delete(m.rooms, id)
}

// ListRooms returns the lobby-searchable metadata for every room.
func (m *Manager) ListRooms() []wire.RoomMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]wire.RoomMetadata, 0, len(m.rooms))
	for _, h := range m.rooms {
		list = append(list, h.Metadata())
	}
	return list
}
