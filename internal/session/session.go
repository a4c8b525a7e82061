// Package session implements the client side of the realtime channel:
// a websocket connection that remembers its room joins and replays them
// after every reconnect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// State is the connection state of a Session.
type State string

const (
	StateConnecting      State = "connecting"
	StateConnected       State = "connected"
	StateDisconnected    State = "disconnected"
	StateReconnecting    State = "reconnecting"
	StateReconnectFailed State = "reconnect_failed"
	StateClosed          State = "closed"
)

// Policy bounds reconnection.
type Policy struct {
	MaxAttempts    int
	Delay          time.Duration
	ConnectTimeout time.Duration
}

// DefaultPolicy returns five attempts two seconds apart with a twenty second handshake budget.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Delay: 2 * time.Second, ConnectTimeout: 20 * time.Second}
}

// Options configure a Session.
type Options struct {
	URL               string
	Token             string
	Policy            Policy
	EnableCompression bool
	// ReadTimeout is extended on every server ping; zero means 60s.
	ReadTimeout time.Duration
	EventBuffer int
	Logger      *slog.Logger
}

// Event is a frame received from the server.
type Event struct {
	Name   string
	Room   string
	Data   json.RawMessage
	SentAt time.Time
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// StateChange reports a transition of the session state.
type StateChange struct {
	State   State
	Attempt int
	Err     error
}

// Session is a reconnecting client connection. It is safe for concurrent use.
type Session struct {
	opts   Options
	dialer *websocket.Dialer
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	serverID   string
	rooms      map[model.RoomKey]struct{}
	chansDone  bool
	writeMu    sync.Mutex
	events     chan Event
	states     chan StateChange
	failed     chan struct{}
	failOnce   sync.Once
	closed     chan struct{}
	closeOnce  sync.Once
	loopDone   chan struct{}
	loopActive bool
}

// New constructs a Session without connecting.
func New(opts Options) *Session {
	if opts.Policy.MaxAttempts <= 0 {
		opts.Policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if opts.Policy.Delay < 0 {
		opts.Policy.Delay = 0
	}
	if opts.Policy.ConnectTimeout <= 0 {
		opts.Policy.ConnectTimeout = DefaultPolicy().ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = time.Minute
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return &Session{
		opts: opts,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  opts.Policy.ConnectTimeout,
			EnableCompression: opts.EnableCompression,
		},
		logger:   logger,
		state:    StateConnecting,
		rooms:    make(map[model.RoomKey]struct{}),
		events:   make(chan Event, opts.EventBuffer),
		states:   make(chan StateChange, 32),
		failed:   make(chan struct{}),
		closed:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Dial creates a Session and connects it. The first attempt is immediate; on failure
// up to Policy.MaxAttempts retries follow, each after Policy.Delay.
func Dial(ctx context.Context, opts Options) (*Session, error) {
	s := New(opts)
	if err := s.Connect(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Connect performs the initial connection.
func (s *Session) Connect(ctx context.Context) error {
	s.setState(StateConnecting, 0, nil)

	conn, err := s.dial(ctx)
	attempt := 0
	for err != nil && attempt < s.opts.Policy.MaxAttempts {
		attempt++
		s.logger.Warn("realtime connect failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		if werr := s.wait(ctx); werr != nil {
			return werr
		}
		s.setState(StateReconnecting, attempt, err)
		conn, err = s.dial(ctx)
	}
	if err != nil {
		s.fail(attempt, err)
		return fmt.Errorf("%w: %v", domainErrors.ErrReconnectFailed, err)
	}

	s.attach(conn, 0)
	if s.isClosed() {
		_ = conn.Close()
		return domainErrors.ErrSessionClosed
	}
	s.mu.Lock()
	s.loopActive = true
	s.mu.Unlock()
	go s.run(conn)
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the server-assigned session id of the current connection.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverID
}

// Events delivers frames from the server. It is closed after Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// States delivers state transitions. It is closed after Close.
func (s *Session) States() <-chan StateChange {
	return s.states
}

// Failed is closed once the reconnect budget is exhausted.
func (s *Session) Failed() <-chan struct{} {
	return s.failed
}

// Rooms returns the rooms that will be rejoined after a reconnect.
func (s *Session) Rooms() []model.RoomKey {
	s.mu.Lock()
	keys := make([]model.RoomKey, 0, len(s.rooms))
	for k := range s.rooms {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Join records the room and asks the server to join it when connected.
// While disconnected the join is deferred until the next successful reconnect.
func (s *Session) Join(kind model.RoomKind, id string) error {
	key := model.Room(kind, id)
	if !key.Valid() {
		return fmt.Errorf("%w: %s", domainErrors.ErrInvalidRoom, key)
	}

	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.rooms[key] = struct{}{}
	connected := s.state == StateConnected
	s.mu.Unlock()

	if !connected {
		return nil
	}
	if err := s.Send("join-"+string(kind), id); err != nil && !errors.Is(err, domainErrors.ErrNotConnected) {
		s.logger.Debug("join deferred to reconnect", slog.String("room", key.String()), slog.String("error", err.Error()))
	}
	return nil
}

// Leave forgets the room so it is not rejoined, and tells the server when connected.
func (s *Session) Leave(kind model.RoomKind, id string) error {
	key := model.Room(kind, id)

	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.rooms, key)
	connected := s.state == StateConnected
	s.mu.Unlock()

	if !connected {
		return nil
	}
	if err := s.Send("leave-"+string(kind), id); err != nil && !errors.Is(err, domainErrors.ErrNotConnected) {
		return err
	}
	return nil
}

// Send writes a single frame to the server.
func (s *Session) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	conn := s.conn
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected || conn == nil {
		return domainErrors.ErrNotConnected
	}
	return s.write(conn, realtime.Frame{Event: event, Data: raw})
}

// Close ends the session. Events and States are closed once the connection loop stops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)

		s.mu.Lock()
		conn := s.conn
		active := s.loopActive
		s.mu.Unlock()

		if conn != nil {
			s.writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			s.writeMu.Unlock()
			_ = conn.Close()
		}
		if active {
			<-s.loopDone
		}

		s.setState(StateClosed, 0, nil)
		s.mu.Lock()
		s.chansDone = true
		close(s.events)
		close(s.states)
		s.mu.Unlock()
	})
	return nil
}

func (s *Session) usableLocked() error {
	switch s.state {
	case StateClosed:
		return domainErrors.ErrSessionClosed
	case StateReconnectFailed:
		return domainErrors.ErrReconnectFailed
	}
	return nil
}

func (s *Session) run(conn *websocket.Conn) {
	defer close(s.loopDone)
	for {
		err := s.readLoop(conn)
		if s.isClosed() {
			return
		}
		s.logger.Info("realtime connection lost", slog.String("error", errString(err)))
		s.setState(StateDisconnected, 0, err)

		next, ok := s.reconnect()
		if !ok {
			return
		}
		conn = next
	}
}

func (s *Session) reconnect() (*websocket.Conn, bool) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.Policy.MaxAttempts; attempt++ {
		if err := s.wait(context.Background()); err != nil {
			return nil, false
		}
		s.setState(StateReconnecting, attempt, lastErr)

		conn, err := s.dial(context.Background())
		if err == nil {
			s.attach(conn, attempt)
			if s.isClosed() {
				_ = conn.Close()
				return nil, false
			}
			return conn, true
		}
		lastErr = err
		s.logger.Warn("realtime reconnect failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}
	s.fail(s.opts.Policy.MaxAttempts, lastErr)
	return nil, false
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Policy.ConnectTimeout)
	defer cancel()

	header := http.Header{}
	if s.opts.Token != "" {
		header.Set("Authorization", "Bearer "+s.opts.Token)
	}
	conn, resp, err := s.dialer.DialContext(ctx, s.opts.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// attach installs conn, reads the greeting and replays recorded joins.
func (s *Session) attach(conn *websocket.Conn, attempt int) {
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	_ = conn.SetReadDeadline(time.Now().Add(s.opts.Policy.ConnectTimeout))
	var greeting realtime.Envelope
	var pending *Event
	if err := conn.ReadJSON(&greeting); err == nil {
		if greeting.Event != realtime.EventConnected {
			ev := toEvent(greeting)
			pending = &ev
		}
	}
	_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))

	var hello struct {
		SessionID string `json:"sessionId"`
	}
	if greeting.Event == realtime.EventConnected {
		_ = json.Unmarshal(greeting.Data, &hello)
	}

	// Rooms are copied under the same lock that flips the state, so a Join either
	// lands in the replay below or sees StateConnected and sends its own frame.
	s.mu.Lock()
	s.conn = conn
	s.serverID = hello.SessionID
	rooms := make([]model.RoomKey, 0, len(s.rooms))
	for k := range s.rooms {
		rooms = append(rooms, k)
	}
	s.setStateLocked(StateConnected, attempt, nil)
	s.mu.Unlock()

	if pending != nil {
		s.emit(*pending)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].String() < rooms[j].String() })
	for _, room := range rooms {
		if err := s.write(conn, joinFrame(room)); err != nil {
			s.logger.Warn("rejoin failed", slog.String("room", room.String()), slog.String("error", err.Error()))
			return
		}
	}
	if len(rooms) > 0 {
		s.logger.Info("realtime rooms rejoined", slog.Int("rooms", len(rooms)))
	}
}

func (s *Session) readLoop(conn *websocket.Conn) error {
	for {
		var env realtime.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		s.emit(toEvent(env))
	}
}

func (s *Session) write(conn *websocket.Conn, frame realtime.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(s.opts.Policy.ConnectTimeout))
	return conn.WriteJSON(frame)
}

func (s *Session) wait(ctx context.Context) error {
	timer := time.NewTimer(s.opts.Policy.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-s.closed:
		return domainErrors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) fail(attempt int, err error) {
	s.logger.Error("realtime reconnect budget exhausted", slog.Int("attempts", attempt), slog.String("error", errString(err)))
	s.setState(StateReconnectFailed, attempt, err)
	s.failOnce.Do(func() { close(s.failed) })
}

func (s *Session) setState(state State, attempt int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(state, attempt, err)
}

func (s *Session) setStateLocked(state State, attempt int, err error) {
	if s.state == StateClosed || s.chansDone {
		return
	}
	s.state = state
	select {
	case s.states <- StateChange{State: state, Attempt: attempt, Err: err}:
	default:
		s.logger.Warn("state change dropped", slog.String("state", string(state)))
	}
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chansDone {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("realtime event dropped", slog.String("event", ev.Name))
	}
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func joinFrame(room model.RoomKey) realtime.Frame {
	raw, _ := json.Marshal(room.ID)
	return realtime.Frame{Event: "join-" + string(room.Kind), Data: raw}
}

func toEvent(env realtime.Envelope) Event {
	return Event{Name: env.Event, Room: env.Room, Data: env.Data, SentAt: env.SentAt}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
