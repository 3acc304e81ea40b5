package network

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/derivaventura/server/internal/auth"
	"github.com/derivaventura/server/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from another origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS returns the gin handler that upgrades an authenticated
// request to a game connection. The token travels as a query
// parameter because browsers cannot set headers on WebSocket dials.
func ServeWS(hub *Hub, eng *engine.Engine, tokens *auth.Store, actionRPS, actionBurst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		identity, ok := tokens.Lookup(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Error("WebSocket upgrade failed: %v", err)
			return
		}

		limiter := rate.NewLimiter(rate.Limit(actionRPS), actionBurst)
		client := NewClient(hub, conn, eng, identity, limiter)
		client.Register()

		go client.WritePump()
		go client.ReadPump()
	}
}
