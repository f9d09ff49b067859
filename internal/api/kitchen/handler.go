package kitchen

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// The stream authenticates with the session cookie, so cross-site pages must
// not be able to open it.
var wsUpgrader = websocket.Upgrader{CheckOrigin: allowedOrigin}

func allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range strings.Split(config.CORS_ORIGIN, ",") {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return strings.EqualFold(origin, config.APP_URL)
}

// GET /orgs/:orgID/kitchen/orders
func ListActive(c *gin.Context) {
	org := apiutil.Org(c)

	list, err := orders.List(database.DB, org.ID, orders.Filter{
		Statuses:    orders.KitchenStatuses,
		OldestFirst: true,
	})
	if err != nil {
		apiutil.ServerError(c, "Failed to load kitchen orders", err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /orgs/:orgID/kitchen/stream
func Stream(c *gin.Context) {
	org := apiutil.Org(c)
	ctx := c.Request.Context()

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.WarnContext(ctx, "Kitchen stream upgrade failed", logger.ErrAttr(err))
		return
	}
	defer conn.Close()

	events, cancel := realtime.Default.Subscribe(ctx, org.ID)
	defer cancel()

	slog.InfoContext(ctx, "Kitchen stream connected")

	// the client only sends pongs and close frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.WarnContext(ctx, "Kitchen stream closed unexpectedly", logger.ErrAttr(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
