package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hzj010427/YACA/internal/audit"
	"github.com/hzj010427/YACA/internal/config"
	"github.com/hzj010427/YACA/internal/hub"
	"github.com/hzj010427/YACA/pkg/jwt"
	"github.com/hzj010427/YACA/pkg/log"
	"github.com/hzj010427/YACA/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler admits clients to the fan-out audience. The handshake applies
// the same token rules as the REST middleware, before the upgrade.
type WSHandler struct {
	hub    *hub.Hub
	tokens *jwt.Manager
	wsCfg  config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, tokens *jwt.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{hub: h, tokens: tokens, wsCfg: wsCfg}
}

// RegisterRoutes registers the real-time endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat/events", h.HandleConnect)
}

// HandleConnect verifies the handshake token and, on success, upgrades the
// connection and registers the client with the hub. Rejections are audited
// as suspected eavesdropping attempts.
func (h *WSHandler) HandleConnect(c *gin.Context) {
	ctx := c.Request.Context()

	token := c.Query("token")
	if token == "" {
		audit.LogWithDetail(ctx, audit.ActionEavesdropDenied, "", c.ClientIP(),
			"realtime connection without token rejected")
		response.Fail(c, response.NewAuthError("MissingToken",
			"A token is missing and is required for authorization"))
		return
	}

	claims, err := h.tokens.Verify(token)
	if err != nil {
		audit.LogWithDetail(ctx, audit.ActionEavesdropDenied, "", c.ClientIP(),
			"realtime connection with invalid token rejected")
		response.Fail(c, response.NewAuthError("InvalidToken", "The token is invalid"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), claims.Username, h.hub, conn, h.wsCfg)
	h.hub.Register(client)
	audit.Log(ctx, audit.ActionClientConnected, claims.Username, "realtime client connected")

	go client.WritePump()
	go client.ReadPump()
}
