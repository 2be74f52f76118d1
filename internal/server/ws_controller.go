package server

import (
	"net/http"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	pkgmdw "github.com/nguyentranbao-ct/chat-timeline/internal/server/middleware"
	"github.com/nguyentranbao-ct/chat-timeline/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController interface {
	Connect(c echo.Context) error
}

type wsController struct {
	hub *ws.Hub
}

func NewWSController(hub *ws.Hub) WSController {
	return &wsController{hub: hub}
}

func (wc *wsController) Connect(c echo.Context) error {
	userID := pkgmdw.GetUserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "upgrade failed")
	}

	ctx := c.Request().Context()
	log.Infow(ctx, "websocket connected", "user_id", userID)
	wc.hub.ServeConn(ctx, conn, userID)
	return nil
}
