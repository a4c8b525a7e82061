package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/pkg/auth"
)

// Inbound and reply event names of the websocket protocol.
const (
	EventJoined    = "joined"
	EventLeft      = "left"
	EventPing      = "ping"
	EventPong      = "pong"
	EventEcho      = "echo"
	EventTest      = "test"
	EventBroadcast = "broadcast"
	EventSend      = "send"
	EventPublished = "published"
	EventError     = "error"
	EventConnected = "connected"
)

const (
	defaultSendBuffer     = 64
	defaultPingInterval   = 25 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultMaxMessageSize = 64 << 10
)

// ErrHubClosed is returned by Serve after Shutdown.
var ErrHubClosed = errors.New("realtime hub closed")

// Config tunes per-connection behaviour.
type Config struct {
	SendBuffer        int
	PingInterval      time.Duration
	WriteTimeout      time.Duration
	MaxMessageSize    int64
	EnableCompression bool
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	return c
}

// Frame is an inbound client message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type broadcastRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type sendRequest struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type roomAck struct {
	Room string `json:"room"`
}

type publishAck struct {
	Target    string `json:"target"`
	Event     string `json:"event"`
	Delivered bool   `json:"delivered"`
}

type errorReply struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

type connectedReply struct {
	SessionID string `json:"sessionId"`
}

var joinEvents = map[string]model.RoomKind{
	"join-restaurant": model.RoomRestaurant,
	"join-customer":   model.RoomCustomer,
	"join-rider":      model.RoomRider,
}

var leaveEvents = map[string]model.RoomKind{
	"leave-restaurant": model.RoomRestaurant,
	"leave-customer":   model.RoomCustomer,
	"leave-rider":      model.RoomRider,
}

// Hub accepts websocket connections and routes their requests to the registry and bus.
type Hub struct {
	bus      *Bus
	logger   *slog.Logger
	cfg      Config
	upgrader websocket.Upgrader
	newID    func() SessionID

	mu     sync.Mutex
	peers  map[SessionID]*Peer
	closed bool
	wg     sync.WaitGroup
}

// NewHub constructs Hub.
func NewHub(bus *Bus, logger *slog.Logger, cfg Config) *Hub {
	cfg = cfg.withDefaults()
	return &Hub{
		bus:    bus,
		logger: logger,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin:       func(*http.Request) bool { return true },
		},
		newID: func() SessionID { return SessionID(uuid.NewString()) },
		peers: make(map[SessionID]*Peer),
	}
}

// Bus returns the notification bus the hub publishes through.
func (h *Hub) Bus() *Bus {
	return h.bus
}

// Serve upgrades the request and runs the connection until it ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, principal auth.Principal) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
		return ErrHubClosed
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	peer := newPeer(h.newID(), principal, conn, h.cfg, h.logger)
	h.mu.Lock()
	// Shutdown may have run while the upgrade was in flight and would not see this peer.
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ErrHubClosed.Error()),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return ErrHubClosed
	}
	h.peers[peer.id] = peer
	h.mu.Unlock()
	h.bus.Attach(peer)

	h.logger.Info("realtime session opened",
		slog.String("session", string(peer.id)),
		slog.String("subject", principal.Subject),
		slog.String("role", string(principal.Role)),
	)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		peer.writePump()
	}()

	h.reply(peer, EventConnected, connectedReply{SessionID: string(peer.id)})
	peer.readPump(h.handle)

	h.disconnect(peer)
	<-writerDone
	return nil
}

// Disconnect closes the session and drops its memberships before returning.
func (h *Hub) Disconnect(id SessionID) bool {
	h.mu.Lock()
	peer, ok := h.peers[id]
	h.mu.Unlock()
	if !ok {
		return false
	}
	h.disconnect(peer)
	return true
}

// Sessions returns the number of open connections.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Shutdown closes every connection and waits for them to finish or ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		h.disconnect(p)
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) disconnect(peer *Peer) {
	dropped := h.bus.Detach(peer.id)
	peer.Close()

	h.mu.Lock()
	_, known := h.peers[peer.id]
	delete(h.peers, peer.id)
	h.mu.Unlock()

	if known {
		h.logger.Info("realtime session closed",
			slog.String("session", string(peer.id)),
			slog.Int("rooms", len(dropped)),
		)
	}
}

func (h *Hub) handle(peer *Peer, data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
		h.replyError(peer, "", "malformed frame")
		return
	}

	if kind, ok := joinEvents[frame.Event]; ok {
		h.join(peer, frame, kind)
		return
	}
	if kind, ok := leaveEvents[frame.Event]; ok {
		h.leave(peer, frame, kind)
		return
	}

	switch frame.Event {
	case EventPing:
		h.replyRaw(peer, EventPong, frame.Data)
	case EventEcho, EventTest:
		h.replyRaw(peer, frame.Event, frame.Data)
	case EventBroadcast:
		h.broadcast(peer, frame)
	case EventSend:
		h.send(peer, frame)
	default:
		h.replyError(peer, frame.Event, "unknown event")
	}
}

func (h *Hub) join(peer *Peer, frame Frame, kind model.RoomKind) {
	id, err := parseRoomID(frame.Data)
	if err != nil {
		h.replyError(peer, frame.Event, err.Error())
		return
	}
	if err := h.bus.Registry().Join(kind, id, peer.id); err != nil {
		h.replyError(peer, frame.Event, err.Error())
		return
	}
	key := model.Room(kind, id)
	h.logger.Debug("room joined", slog.String("session", string(peer.id)), slog.String("room", key.String()))
	h.reply(peer, EventJoined, roomAck{Room: key.String()})
}

func (h *Hub) leave(peer *Peer, frame Frame, kind model.RoomKind) {
	id, err := parseRoomID(frame.Data)
	if err != nil {
		h.replyError(peer, frame.Event, err.Error())
		return
	}
	h.bus.Registry().Leave(kind, id, peer.id)
	h.reply(peer, EventLeft, roomAck{Room: model.Room(kind, id).String()})
}

func (h *Hub) broadcast(peer *Peer, frame Frame) {
	if !peer.principal.IsAdmin() {
		h.replyError(peer, frame.Event, "forbidden")
		return
	}
	var req broadcastRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil || req.Event == "" {
		h.replyError(peer, frame.Event, "broadcast requires event")
		return
	}
	delivered, err := h.bus.Publish(Broadcast, req.Event, req.Payload)
	if err != nil {
		h.replyError(peer, frame.Event, err.Error())
		return
	}
	h.reply(peer, EventPublished, publishAck{Target: Broadcast.String(), Event: req.Event, Delivered: delivered})
}

func (h *Hub) send(peer *Peer, frame Frame) {
	if !peer.principal.IsAdmin() {
		h.replyError(peer, frame.Event, "forbidden")
		return
	}
	var req sendRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil || req.Event == "" {
		h.replyError(peer, frame.Event, "send requires room and event")
		return
	}
	key, ok := model.ParseRoomKey(req.Room)
	if !ok {
		h.replyError(peer, frame.Event, "invalid room")
		return
	}
	delivered, err := h.bus.Publish(ToKey(key), req.Event, req.Payload)
	if err != nil {
		h.replyError(peer, frame.Event, err.Error())
		return
	}
	h.reply(peer, EventPublished, publishAck{Target: key.String(), Event: req.Event, Delivered: delivered})
}

func (h *Hub) reply(peer *Peer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode reply failed", slog.String("event", event), slog.String("error", err.Error()))
		return
	}
	h.replyRaw(peer, event, data)
}

func (h *Hub) replyRaw(peer *Peer, event string, data json.RawMessage) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if !peer.Deliver(frame) {
		h.logger.Warn("realtime reply dropped", slog.String("session", string(peer.id)), slog.String("event", event))
	}
}

func (h *Hub) replyError(peer *Peer, event, message string) {
	h.reply(peer, EventError, errorReply{Event: event, Message: message})
}

// parseRoomID accepts a JSON string or number, or an object with an "id" field.
func parseRoomID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("room id required")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return requireID(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return requireID(n.String())
	}

	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.ID) > 0 && obj.ID[0] != '{' {
		return parseRoomID(obj.ID)
	}
	return "", errors.New("room id must be a string or number")
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("room id required")
	}
	return id, nil
}
