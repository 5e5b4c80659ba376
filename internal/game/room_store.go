// internal/game/room_store.go
package game

import "sync"

// RoomStore holds the live rooms. It is the hot path for every socket event;
// the durable store behind the Manager is only consulted on a miss.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

func (s *RoomStore) Get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

// AddIfAbsent inserts r unless a room with the same ID is already live, in
// which case the existing room is returned and ok is false.
func (s *RoomStore) AddIfAbsent(r *Room) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[r.ID]; ok {
		return existing, false
	}
	s.rooms[r.ID] = r
	return r, true
}

func (s *RoomStore) Delete(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// GetByConnID scans for the room holding a seat bound to connID. Room counts
// are small enough that a reverse index is not worth carrying.
func (s *RoomStore) GetByConnID(connID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		r.Mu.Lock()
		seat := r.seatFor(connID)
		r.Mu.Unlock()
		if seat != nil {
			return r, true
		}
	}
	return nil, false
}
