// Package http wires the gin router: the WebSocket endpoint and the REST
// routes whose side effects flow through the event relay.
package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/adapters/ws"
	"github.com/rsinha/huddle/internal/app"
	"github.com/rsinha/huddle/internal/config"
	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

const userIDKey = "userId"

// Deps collects everything the router hands to its handlers.
type Deps struct {
	Resolver    app.IdentityResolver
	Gate        *app.Gate
	Coordinator *app.Coordinator
	Registry    *core.Registry
	Relay       *core.Relay
	Rooms       app.RoomStore
	Chats       app.ChatStore
	Messages    app.MessageStore
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsCfg))

	wsCtl := &ws.Controller{
		Gate:        deps.Gate,
		Coordinator: deps.Coordinator,
		Registry:    deps.Registry,
		Relay:       deps.Relay,
		ReadLimit:   cfg.ReadLimit,
		PingPeriod:  cfg.PingPeriod,
	}

	api := r.Group("/api")

	// The gate authenticates WS handshakes itself, so no middleware here.
	api.GET("/ws", func(c *gin.Context) {
		wsCtl.Handle(ctx, c)
	})

	h := &Handlers{Rooms: deps.Rooms, Chats: deps.Chats, Messages: deps.Messages, Relay: deps.Relay}

	authed := api.Group("", AuthRequired(deps.Resolver))
	authed.POST("/rooms", h.CreateRoom)
	authed.POST("/rooms/join", h.JoinRoom)
	authed.POST("/chats/:chatId/messages", h.SendMessage)
	authed.DELETE("/chats/:chatId/messages/:messageId", h.DeleteMessage)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

// AuthRequired resolves the caller's access token from the accessToken cookie
// or a bearer Authorization header, the same credential the gate reads.
func AuthRequired(resolver app.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Cookie("accessToken"); err == nil {
			token = cookie
		}
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
			return
		}
		userID, err := resolver.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid access token"})
			return
		}
		c.Set(userIDKey, string(userID))
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString(userIDKey))
}
