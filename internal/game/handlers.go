package game

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// RoomLister is the read side of the registry the HTTP layer needs.
type RoomLister interface {
	Registry
	Rooms(ctx context.Context) []RoomDescription
}

type GameHandler struct {
	registry RoomLister
	upgrader websocket.Upgrader
}

func NewGameHandler(registry RoomLister) *GameHandler {
	return &GameHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the router's allow-list middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WebsocketHandler upgrades the request and starts the player's pumps.
// roomId and nickname query parameters join a room right away.
func (h *GameHandler) WebsocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Debug().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	socket := NewGorillaWebSocketWrapper(conn)
	p := NewPlayer(uuid.NewString(), h.registry)

	log.Debug().Str("player", p.id).Str("ip", ctx.ClientIP()).Msg("websocket connected")

	go p.WritePump(socket)
	go p.ReadPump(socket)

	if roomID := ctx.Query("roomId"); roomID != "" {
		p.Join(roomID, ctx.Query("nickname"), ctx.Query("binaryStrokes") == "true")
	}
}

func (h *GameHandler) ListRoomsHandler(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	rooms := h.registry.Rooms(reqCtx)
	if rooms == nil {
		if reqCtx.Err() != nil {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "registry-unavailable"})
			return
		}
		rooms = []RoomDescription{}
	}
	ctx.JSON(http.StatusOK, rooms)
}
