package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/research_hub/internal/auth"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/service"
	"github.com/immxrtalbeast/research_hub/lib/logger/sl"
)

// ChatController is the only component talking to the websocket transport.
// It authenticates before the upgrade, runs one serial read loop per
// connection, and drains the client's outbound queue from a single writer
// goroutine so frames leave in enqueue order.
type ChatController struct {
	gateway  service.GatewayInteractor
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewChatController(gateway service.GatewayInteractor, log *slog.Logger) *ChatController {
	if log == nil {
		log = slog.Default()
	}
	return &ChatController{
		gateway: gateway,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *ChatController) Connect(ctx *gin.Context) {
	token := extractToken(ctx.Request)
	if token == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	client, err := c.gateway.Authenticate(ctx.Request.Context(), token)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrInvalidToken) ||
			errors.Is(err, auth.ErrExpiredToken) ||
			errors.Is(err, auth.ErrAccountUnavailable) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": "authentication failed"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Error("websocket upgrade failed", sl.Err(err))
		c.gateway.Disconnect(client)
		return
	}

	go c.writeEvents(conn, client)

	for {
		var envelope domain.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			c.gateway.Disconnect(client)
			return
		}

		c.gateway.HandleEvent(context.Background(), client, envelope)
	}
}

// writeEvents is the single writer for one connection. It exits, closing the
// socket, when the client's outbound queue is closed on disconnect.
func (c *ChatController) writeEvents(conn *websocket.Conn, client *domain.Client) {
	defer conn.Close()

	for event := range client.Events() {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}

func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	return ""
}
