package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// Target addresses a publish to one room or to every connected session.
type Target struct {
	room      model.RoomKey
	broadcast bool
}

// Broadcast targets all connected sessions.
var Broadcast = Target{broadcast: true}

// ToRoom targets the members of a single room.
func ToRoom(kind model.RoomKind, id string) Target {
	return Target{room: model.Room(kind, id)}
}

// ToKey targets the room identified by key.
func ToKey(key model.RoomKey) Target {
	return Target{room: key}
}

// IsBroadcast reports whether the target is the broadcast pseudo-target.
func (t Target) IsBroadcast() bool {
	return t.broadcast
}

// Room returns the targeted room; zero for broadcast.
func (t Target) Room() model.RoomKey {
	return t.room
}

func (t Target) String() string {
	if t.broadcast {
		return "broadcast"
	}
	return t.room.String()
}

// Envelope is the frame written to subscribers.
type Envelope struct {
	Event  string          `json:"event"`
	Room   string          `json:"room,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	SentAt time.Time       `json:"sentAt"`
}

// Deliverer is a connected subscriber able to accept frames without blocking.
type Deliverer interface {
	ID() SessionID
	// Deliver enqueues frame and reports whether it was accepted.
	Deliver(frame []byte) bool
}

// Mirror receives a copy of every published envelope. Implementations must not block.
type Mirror interface {
	Mirror(env Envelope)
}

// Bus fans published events out to room members.
// Delivery is best effort and at most once: nothing is queued for absent subscribers.
type Bus struct {
	registry *Registry
	logger   *slog.Logger
	mirror   Mirror
	now      func() time.Time

	// mu serialises publishes so every member of a room observes the same order.
	mu    sync.Mutex
	peers map[SessionID]Deliverer
}

// NewBus constructs Bus. mirror may be nil.
func NewBus(registry *Registry, logger *slog.Logger, mirror Mirror) *Bus {
	return &Bus{
		registry: registry,
		logger:   logger,
		mirror:   mirror,
		now:      time.Now,
		peers:    make(map[SessionID]Deliverer),
	}
}

// Registry returns the membership registry used by the bus.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// Attach makes peer reachable for publishes.
func (b *Bus) Attach(peer Deliverer) {
	b.mu.Lock()
	b.peers[peer.ID()] = peer
	b.mu.Unlock()
}

// Detach drops all memberships of the session and forgets its peer.
func (b *Bus) Detach(id SessionID) []model.RoomKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.peers, id)
	return b.registry.DropSession(id)
}

// Connected returns the number of attached peers.
func (b *Bus) Connected() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.peers)
}

// Publish delivers event to target and reports whether anyone received it.
// An empty room is not an error.
func (b *Bus) Publish(target Target, event string, payload any) (bool, error) {
	if event == "" {
		return false, errors.New("publish: empty event name")
	}
	if !target.broadcast && !target.room.Valid() {
		return false, fmt.Errorf("publish: %w: %s", domainErrors.ErrInvalidRoom, target.room)
	}

	data, err := encodePayload(payload)
	if err != nil {
		return false, fmt.Errorf("publish %s: encode payload: %w", event, err)
	}

	env := Envelope{Event: event, Data: data, SentAt: b.now().UTC()}
	if !target.broadcast {
		env.Room = target.room.String()
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return false, fmt.Errorf("publish %s: encode envelope: %w", event, err)
	}

	delivered := b.fanOut(target, event, frame)

	if b.mirror != nil {
		b.mirror.Mirror(env)
	}
	return delivered, nil
}

func (b *Bus) fanOut(target Target, event string, frame []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	var recipients []SessionID
	if target.broadcast {
		recipients = make([]SessionID, 0, len(b.peers))
		for id := range b.peers {
			recipients = append(recipients, id)
		}
	} else {
		recipients = b.registry.MembersOf(target.room.Kind, target.room.ID)
	}

	delivered := false
	for _, id := range recipients {
		peer, ok := b.peers[id]
		if !ok {
			continue
		}
		if peer.Deliver(frame) {
			delivered = true
			continue
		}
		b.logger.Warn("realtime frame dropped",
			slog.String("session", string(id)),
			slog.String("target", target.String()),
			slog.String("event", event),
		)
	}
	return delivered
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(p) == 0 {
			return nil, nil
		}
		if !json.Valid(p) {
			return nil, errors.New("invalid raw json")
		}
		return p, nil
	default:
		return json.Marshal(p)
	}
}
