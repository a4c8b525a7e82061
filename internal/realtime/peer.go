package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/polkiloo/foodrush/internal/pkg/auth"
)

// Peer is the server side of one websocket connection.
// All writes happen on the write pump; other goroutines hand frames over through Deliver.
type Peer struct {
	id        SessionID
	principal auth.Principal
	conn      *websocket.Conn
	cfg       Config
	logger    *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(id SessionID, principal auth.Principal, conn *websocket.Conn, cfg Config, logger *slog.Logger) *Peer {
	return &Peer{
		id:        id,
		principal: principal,
		conn:      conn,
		cfg:       cfg,
		logger:    logger,
		send:      make(chan []byte, cfg.SendBuffer),
		done:      make(chan struct{}),
	}
}

// ID returns the session identifier.
func (p *Peer) ID() SessionID {
	return p.id
}

// Principal returns the identity the connection authenticated as.
func (p *Peer) Principal() auth.Principal {
	return p.principal
}

// Deliver queues frame for writing. It never blocks; a full queue or closed peer rejects the frame.
func (p *Peer) Deliver(frame []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which closes the underlying connection.
func (p *Peer) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Done is closed once the peer is shutting down.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

func (p *Peer) pongWait() time.Duration {
	return p.cfg.PingInterval * 3 / 2
}

func (p *Peer) readPump(handle func(*Peer, []byte)) {
	p.conn.SetReadLimit(p.cfg.MaxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(p.pongWait()))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(p.pongWait()))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Debug("websocket read failed", slog.String("session", string(p.id)), slog.String("error", err.Error()))
			}
			return
		}
		handle(p, data)
	}
}

func (p *Peer) writePump() {
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case <-p.done:
			deadline := time.Now().Add(p.cfg.WriteTimeout)
			_ = p.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case frame := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				p.logger.Debug("websocket write failed", slog.String("session", string(p.id)), slog.String("error", err.Error()))
				p.Close()
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.Close()
				return
			}
		}
	}
}
