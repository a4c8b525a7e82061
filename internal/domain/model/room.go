package model

import "strings"

// RoomKind is the category of a subscription room.
type RoomKind string

const (
	RoomRestaurant RoomKind = "restaurant"
	RoomCustomer   RoomKind = "customer"
	RoomRider      RoomKind = "rider"
)

// Valid reports whether the kind is one of the known room kinds.
func (k RoomKind) Valid() bool {
	switch k {
	case RoomRestaurant, RoomCustomer, RoomRider:
		return true
	}
	return false
}

// RoomKey identifies a room as kind:id.
type RoomKey struct {
	Kind RoomKind
	ID   string
}

// Room builds a room key.
func Room(kind RoomKind, id string) RoomKey {
	return RoomKey{Kind: kind, ID: id}
}

// Valid reports whether the key has a known kind and non-empty id.
func (r RoomKey) Valid() bool {
	return r.Kind.Valid() && strings.TrimSpace(r.ID) != ""
}

func (r RoomKey) String() string {
	return string(r.Kind) + ":" + r.ID
}

// ParseRoomKey parses "kind:id". The id may itself contain colons.
func ParseRoomKey(s string) (RoomKey, bool) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return RoomKey{}, false
	}
	key := RoomKey{Kind: RoomKind(kind), ID: id}
	return key, key.Valid()
}
