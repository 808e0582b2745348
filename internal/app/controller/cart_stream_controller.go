package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/middleware"
	ws "github.com/ikkim/cart-backend/internal/websocket"
)

type CartStreamController struct {
	cartService service.CartService
	hub         *ws.Hub
	upgrader    websocket.Upgrader
}

func NewCartStreamController(cartService service.CartService, hub *ws.Hub, allowedOrigins []string) *CartStreamController {
	return &CartStreamController{
		cartService: cartService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Requests without an Origin header come from non-browser clients and are
// let through.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

// Stream upgrades to a WebSocket that receives the cart on connect and
// after every change
// GET /api/v1/cart/stream
func (ctrl *CartStreamController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, middleware.GetRequestID(c))

	// The snapshot and the registration happen with mutations held off, so
	// the first broadcast this client gets is for a change after its snapshot.
	err = ctrl.cartService.Snapshot(c.Request.Context(), func(view *service.CartView) error {
		snapshot, err := json.Marshal(service.CartEvent{Type: service.EventCartUpdated, Cart: view})
		if err != nil {
			return err
		}
		client.Send <- snapshot
		ctrl.hub.Register(client)
		return nil
	})
	if err != nil {
		log.Error("Failed to send cart snapshot", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "failed to fetch cart"))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"client_id": client.ID,
	})
}
