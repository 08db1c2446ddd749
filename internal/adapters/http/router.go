package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/adapters/signal"
	"github.com/dche/callsign/internal/app"
	"github.com/dche/callsign/internal/auth"
	"github.com/dche/callsign/internal/config"
)

// SetupRouter wires static assets, the gated websocket endpoint and
// the debug surface. A nil gate disables handshake-time auth; the
// relay keeps serving either way.
func SetupRouter(cfg *config.Config, hub *app.Hub, gate *auth.Gate) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	// Read-only operational counters. Deliberately outside the auth
	// gate, like the static assets.
	r.GET("/debug", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"NocP":   hub.PeerCount(),
			"Uptime": hub.Uptime(),
			"Peers":  hub.PeerList(),
		})
	})

	ctrl := signal.NewController(hub, cfg.ReadLimit, cfg.PingPeriod)
	ws := r.Group("/ws")
	if gate != nil {
		ws.Use(gate.Middleware())
	} else {
		log.Warn().Str("module", "adapters.http").Msg("auth gate disabled, websocket endpoint is open")
	}
	ws.GET("", ctrl.HandleSignal)

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}
