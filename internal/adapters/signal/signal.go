// Package signal is the WebSocket transport for the relay: one
// controller, one connection wrapper, and a read/write pump pair per
// client.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/app"
	"github.com/interviewly/relay/internal/config"
	"github.com/interviewly/relay/internal/core"
	"github.com/interviewly/relay/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Dispatch *app.Dispatcher
	Limiter  *CreateLimiter
	Cfg      *config.Config

	upgrader websocket.Upgrader
}

func NewSignalWSController(d *app.Dispatcher, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Dispatch: d,
		Limiter:  NewCreateLimiter(cfg.CreateRoomLimit, cfg.CreateRoomWindow),
		Cfg:      cfg,
	}
	ctl.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if cfg.AllowedOrigin == "" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == cfg.AllowedOrigin
		},
	}
	return ctl
}

// WsSignalConn wraps one websocket connection with a bounded outbound
// queue. TrySend never blocks the caller; a full queue is reported as
// backpressure and the frame dropped.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts the per-connection
// pumps. Every physical channel gets a fresh connection id; the client
// token cookie only identifies the browser for logs and records.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.Dispatch.Connect(sid, conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
