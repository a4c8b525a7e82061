package realtime

import (
	"fmt"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// SessionID identifies one live connection.
type SessionID string

// Stats summarises registry contents.
type Stats struct {
	Rooms       int
	Sessions    int
	Memberships int
}

// Registry tracks room membership of live sessions.
// A single mutex guards both indexes; empty entries are removed eagerly.
type Registry struct {
	mu       sync.Mutex
	rooms    map[model.RoomKey]map[SessionID]struct{}
	sessions map[SessionID]map[model.RoomKey]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[model.RoomKey]map[SessionID]struct{}),
		sessions: make(map[SessionID]map[model.RoomKey]struct{}),
	}
}

// Join adds session to the room. Joining twice is a no-op.
func (r *Registry) Join(kind model.RoomKind, id string, session SessionID) error {
	key := model.Room(kind, id)
	if !key.Valid() || session == "" {
		return fmt.Errorf("%w: %s", domainErrors.ErrInvalidRoom, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[key]
	if !ok {
		members = make(map[SessionID]struct{})
		r.rooms[key] = members
	}
	members[session] = struct{}{}

	joined, ok := r.sessions[session]
	if !ok {
		joined = make(map[model.RoomKey]struct{})
		r.sessions[session] = joined
	}
	joined[key] = struct{}{}
	return nil
}

// Leave removes session from the room. Unknown rooms or sessions are ignored.
func (r *Registry) Leave(kind model.RoomKind, id string, session SessionID) {
	key := model.Room(kind, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(key, session)
}

// MembersOf returns a sorted snapshot of sessions in the room.
func (r *Registry) MembersOf(kind model.RoomKind, id string) []SessionID {
	key := model.Room(kind, id)

	r.mu.Lock()
	members := r.rooms[key]
	result := make([]SessionID, 0, len(members))
	for s := range members {
		result = append(result, s)
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// RoomsOf returns the rooms session currently belongs to.
func (r *Registry) RoomsOf(session SessionID) []model.RoomKey {
	r.mu.Lock()
	joined := r.sessions[session]
	result := make([]model.RoomKey, 0, len(joined))
	for key := range joined {
		result = append(result, key)
	}
	r.mu.Unlock()

	sortKeys(result)
	return result
}

// DropSession removes session from every room it joined and returns those rooms.
func (r *Registry) DropSession(session SessionID) []model.RoomKey {
	r.mu.Lock()
	joined := r.sessions[session]
	dropped := make([]model.RoomKey, 0, len(joined))
	for key := range joined {
		dropped = append(dropped, key)
	}
	for _, key := range dropped {
		r.removeLocked(key, session)
	}
	delete(r.sessions, session)
	r.mu.Unlock()

	sortKeys(dropped)
	return dropped
}

// Rooms lists all rooms with at least one member.
func (r *Registry) Rooms() []model.RoomKey {
	r.mu.Lock()
	result := make([]model.RoomKey, 0, len(r.rooms))
	for key := range r.rooms {
		result = append(result, key)
	}
	r.mu.Unlock()

	sortKeys(result)
	return result
}

// Stats reports registry cardinalities.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{Rooms: len(r.rooms), Sessions: len(r.sessions)}
	for _, members := range r.rooms {
		stats.Memberships += len(members)
	}
	return stats
}

func (r *Registry) removeLocked(key model.RoomKey, session SessionID) {
	if members, ok := r.rooms[key]; ok {
		delete(members, session)
		if len(members) == 0 {
			delete(r.rooms, key)
		}
	}
	if joined, ok := r.sessions[session]; ok {
		delete(joined, key)
		if len(joined) == 0 {
			delete(r.sessions, session)
		}
	}
}

func sortKeys(keys []model.RoomKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
}
