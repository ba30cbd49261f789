package live

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/myceliumAI/polypore/internal/pkg/response"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from the given origins; "*" or an empty list allows any.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/availability", h.Subscribe)
}

// Subscribe upgrades to a WebSocket that streams reservation changes.
//
// GET /ws/availability?item_id=ID (item_id optional)
func (h *Handler) Subscribe(c *gin.Context) {
	var itemID int64
	if raw := c.Query("item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid item_id")
			return
		}
		itemID = id
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed error=%q", err.Error())
		return
	}
	h.hub.Serve(conn, itemID)
}
