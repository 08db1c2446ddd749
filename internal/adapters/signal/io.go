package signal

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/app"
	"github.com/dche/callsign/internal/core"
)

const writeTimeout = 5 * time.Second

func (ctl *Controller) writePump(c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump feeds inbound frames into the hub. Frames are decoded and
// handled inline on this goroutine, so per-connection wire order is
// preserved. On any read error the connection is torn down exactly
// once via Hub.Disconnect.
func (ctl *Controller) readPump(client *app.Conn, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("key", client.Key).Msg("readPump closing")
		ctl.Hub.Disconnect(client)
		c.Close()
	}()

	if ctl.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.ReadLimit)
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().Err(err).Str("module", "signal").Str("key", client.Key).Msg("readPump read error")
			}
			return
		}
		ctl.Hub.HandleFrame(client, core.Frame(data))
	}
}
