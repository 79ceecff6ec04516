package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/adapters/signal"
	"github.com/interviewly/relay/internal/app"
	"github.com/interviewly/relay/internal/config"
	"github.com/interviewly/relay/internal/domain"
	"github.com/interviewly/relay/internal/store"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware tags each browser with a stable cookie token,
// used for logs and call records. Connection ids stay per-channel.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, d *app.Dispatcher, calls store.CallStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RelaySessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": d.Sessions.Count(),
		})
	})

	log.Info().Str("module", "adapters.http").Str("origin", cfg.AllowedOrigin).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": clientICEServers(cfg)})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		roomID := domain.RoomID(c.Param("id"))
		if room, ok := d.Registry.Get(roomID); ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "room": room.Snapshot()})
			return
		}
		// The live room may already be gone while the record remains.
		if call, ok := calls.GetCall(c.Request.Context(), roomID); ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "call": call})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "NotFound"})
	})

	ctl := signal.NewSignalWSController(d, cfg)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
