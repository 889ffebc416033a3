package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"myhometech/internal/logger"
	"myhometech/internal/pkg/jwt"
	"myhometech/internal/pkg/response"
)

// Gateway upgrades authenticated HTTP requests to hub connections.
//
// Endpoint: GET /ws?token=JWT. Browsers cannot set headers on the upgrade
// request, so the token travels in the query; a Bearer header is also accepted.
type Gateway struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewGateway(hub *Hub, jwtService *jwt.Service, allowedOrigins []string, l *zap.Logger) *Gateway {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &Gateway{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
		logger: logger.OrNop(l).Named("ws"),
	}
}

func (g *Gateway) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", g.Handle)
}

func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := newClient(g.hub, conn, claims.UserID, claims.Role)
	if !g.hub.register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	g.logger.Info("connected", zap.Int64("user_id", claims.UserID), zap.String("role", claims.Role))

	go client.writePump()
	go client.readPump()
}
