package signal

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/app"
	"github.com/dche/callsign/internal/core"
)

// Controller upgrades HTTP requests to websocket connections and
// bridges them into the hub.
type Controller struct {
	Hub        *app.Hub
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(hub *app.Hub, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Hub:        hub,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// WsSignalConn wraps one websocket with a buffered outbound channel.
// TrySend never blocks: a full buffer drops the frame instead of
// stalling the hub on a slow consumer.
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
		return core.ErrBackpressure
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the read/write pumps.
// The auth gate has already run (or was deliberately disabled) by the
// time a request reaches this handler.
func (ctl *Controller) HandleSignal(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	client := ctl.Hub.Connect(conn)
	log.Info().Str("module", "signal").Str("key", client.Key).Msg("new WS connection")

	go ctl.writePump(conn)
	go ctl.readPump(client, conn)
}
