package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

// HandlerOptions configures WSHandler.
type HandlerOptions struct {
	// AllowedOrigins lists accepted Origin values; "*" or an empty list
	// accepts any origin.
	AllowedOrigins []string
	Client         Options
}

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser peers (the vehicle) send no Origin
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

// WSHandler upgrades the request to a WebSocket, registers the new client
// with the hub and serves it until the connection ends.
func WSHandler(hub *Hub, opts HandlerOptions) gin.HandlerFunc {
	upgrader := newUpgrader(opts.AllowedOrigins)

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already answered the request
			hub.logger.Warn("websocket_upgrade_failed",
				"remote_addr", c.Request.RemoteAddr,
				"error", err.Error(),
			)
			return
		}

		client := NewClient(conn, opts.Client, hub.logger)
		hub.OnOpen(client)
		client.ReadPump(hub)
	}
}
