package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/realtime"
)

type testServer struct {
	hub *realtime.Hub
	srv *httptest.Server
	url string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := realtime.NewHub(realtime.NewBus(realtime.NewRegistry(), logger, nil), logger, realtime.Config{
		PingInterval: time.Second,
		WriteTimeout: time.Second,
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, auth.Anonymous)
	}))
	ts := &testServer{hub: hub, srv: srv, url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
	t.Cleanup(ts.stop)
	return ts
}

func (ts *testServer) stop() {
	_ = ts.hub.Shutdown(context.Background())
	ts.srv.Close()
}

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 20 * time.Millisecond, ConnectTimeout: time.Second}
}

func dialSession(t *testing.T, url string) *Session {
	t.Helper()
	s, err := Dial(context.Background(), Options{URL: url, Policy: fastPolicy()})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func waitEvent(t *testing.T, s *Session, name string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", name)
			}
			if ev.Name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event %s", name)
		}
	}
}

func waitState(t *testing.T, s *Session, want State) StateChange {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ch, ok := <-s.States():
			if !ok {
				t.Fatalf("states closed while waiting for %s", want)
			}
			if ch.State == want {
				return ch
			}
		case <-timeout:
			t.Fatalf("timeout waiting for state %s (current %s)", want, s.State())
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.MaxAttempts != 5 || p.Delay != 2*time.Second || p.ConnectTimeout != 20*time.Second {
		t.Fatalf("unexpected default policy %+v", p)
	}
}

func TestSessionJoinAndReceive(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)

	if s.State() != StateConnected {
		t.Fatalf("expected connected, got %s", s.State())
	}
	if s.ID() == "" {
		t.Fatal("expected server assigned id")
	}

	if err := s.Join(model.RoomRestaurant, "1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitEvent(t, s, realtime.EventJoined)

	if delivered, err := ts.hub.Bus().Publish(realtime.ToRoom(model.RoomRestaurant, "1"), model.EventNewOrder, model.NewOrderEvent{OrderNumber: "FR-1"}); err != nil || !delivered {
		t.Fatalf("delivered=%v err=%v", delivered, err)
	}
	ev := waitEvent(t, s, model.EventNewOrder)
	var payload model.NewOrderEvent
	if err := ev.Decode(&payload); err != nil || payload.OrderNumber != "FR-1" {
		t.Fatalf("unexpected payload %+v err=%v", payload, err)
	}
}

func TestSessionRejoinsAfterDrop(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)

	_ = s.Join(model.RoomCustomer, "42")
	_ = s.Join(model.RoomRider, "r1")
	waitEvent(t, s, realtime.EventJoined)
	waitEvent(t, s, realtime.EventJoined)
	_ = s.Leave(model.RoomRider, "r1")
	waitEvent(t, s, realtime.EventLeft)

	first := s.ID()
	if !ts.hub.Disconnect(realtime.SessionID(first)) {
		t.Fatal("expected server to know the session")
	}

	waitState(t, s, StateDisconnected)
	waitState(t, s, StateReconnecting)
	waitState(t, s, StateConnected)
	waitEvent(t, s, realtime.EventJoined)

	if s.ID() == first {
		t.Fatal("expected a new server session after reconnect")
	}
	if delivered, _ := ts.hub.Bus().Publish(realtime.ToRoom(model.RoomCustomer, "42"), model.EventOrderStatusChanged, nil); !delivered {
		t.Fatal("expected rejoined room to receive publishes")
	}
	waitEvent(t, s, model.EventOrderStatusChanged)

	if members := ts.hub.Bus().Registry().MembersOf(model.RoomRider, "r1"); len(members) != 0 {
		t.Fatalf("left rooms must not be rejoined, got %v", members)
	}
}

// Joins issued while a reconnect completes must reach the server exactly once, either
// through the replay or through their own frame.
func TestSessionJoinDuringReconnectIsNotLost(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)

	if !ts.hub.Disconnect(realtime.SessionID(s.ID())) {
		t.Fatal("expected server to know the session")
	}

	const rooms = 40
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < rooms; i++ {
			_ = s.Join(model.RoomCustomer, fmt.Sprintf("c%d", i))
			time.Sleep(2 * time.Millisecond)
		}
	}()
	waitState(t, s, StateConnected)
	<-done

	deadline := time.Now().Add(2 * time.Second)
	for i := 0; i < rooms; i++ {
		id := fmt.Sprintf("c%d", i)
		for len(ts.hub.Bus().Registry().MembersOf(model.RoomCustomer, id)) == 0 {
			if time.Now().After(deadline) {
				t.Fatalf("room %s was never joined on the server", id)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestSessionReconnectFailed(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)
	_ = s.Join(model.RoomCustomer, "1")

	ts.stop()

	change := waitState(t, s, StateReconnectFailed)
	if change.Attempt != fastPolicy().MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastPolicy().MaxAttempts, change.Attempt)
	}
	select {
	case <-s.Failed():
	case <-time.After(time.Second):
		t.Fatal("expected Failed to be closed")
	}
	if err := s.Join(model.RoomCustomer, "2"); !errors.Is(err, domainErrors.ErrReconnectFailed) {
		t.Fatalf("expected reconnect failed, got %v", err)
	}
}

func TestDialUnreachable(t *testing.T) {
	ts := newTestServer(t)
	url := ts.url
	ts.stop()

	s, err := Dial(context.Background(), Options{URL: url, Policy: Policy{MaxAttempts: 2, Delay: time.Millisecond, ConnectTimeout: 200 * time.Millisecond}})
	if !errors.Is(err, domainErrors.ErrReconnectFailed) {
		t.Fatalf("expected reconnect failed, got %v", err)
	}
	if s.State() != StateReconnectFailed {
		t.Fatalf("unexpected state %s", s.State())
	}
	_ = s.Close()
}

func TestSessionCloseIsTerminal(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
	if err := s.Join(model.RoomRestaurant, "1"); !errors.Is(err, domainErrors.ErrSessionClosed) {
		t.Fatalf("expected session closed, got %v", err)
	}
	if err := s.Send("ping", nil); !errors.Is(err, domainErrors.ErrSessionClosed) {
		t.Fatalf("expected session closed, got %v", err)
	}
	for range s.Events() {
	}
	_ = s.Close()
}

func TestSessionJoinValidation(t *testing.T) {
	s := New(Options{URL: "ws://127.0.0.1:1/ws"})
	if err := s.Join("kitchen", "1"); !errors.Is(err, domainErrors.ErrInvalidRoom) {
		t.Fatalf("expected invalid room, got %v", err)
	}
	if err := s.Join(model.RoomCustomer, "7"); err != nil {
		t.Fatalf("join before connect should be deferred: %v", err)
	}
	if rooms := s.Rooms(); len(rooms) != 1 || rooms[0].String() != "customer:7" {
		t.Fatalf("unexpected rooms %v", rooms)
	}
	if err := s.Send("ping", nil); !errors.Is(err, domainErrors.ErrNotConnected) {
		t.Fatalf("expected not connected, got %v", err)
	}
}

func TestSessionPingRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	s := dialSession(t, ts.url)

	if err := s.Send(realtime.EventPing, map[string]int{"n": 7}); err != nil {
		t.Fatalf("send: %v", err)
	}
	ev := waitEvent(t, s, realtime.EventPong)
	if string(ev.Data) != `{"n":7}` {
		t.Fatalf("unexpected pong payload %s", ev.Data)
	}
}
