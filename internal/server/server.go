package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/chat-timeline/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/chat-timeline/internal/server/middleware"
	"github.com/nguyentranbao-ct/chat-timeline/internal/usecase"
	"github.com/nguyentranbao-ct/chat-timeline/internal/ws"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler Controller,
	convController ConversationController,
	wsController WSController,
	hub *ws.Hub,
	conversations *usecase.ConversationUsecase,
) {
	e := echo.New()
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(logger.MustNamed("http"))

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Enabled: func(c echo.Context) bool {
			uri := c.Request().RequestURI
			return uri != "/health" && uri != "/metrics"
		},
		KeyAndValues: func(c echo.Context) []any {
			args := make([]any, 0, 2)
			if userID := pkgmdw.GetUserID(c); userID != "" {
				args = append(args, "user_id", userID)
			}
			return args
		},
	}

	if conf.Server.CORSOrigin != "" {
		e.Use(pkgmdw.CORS(regexp.MustCompile(conf.Server.CORSOrigin)))
	}
	pkgmdw.PprofWrap(e)
	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)

	auth := pkgmdw.Auth(conf.Server.JWTSecret)
	e.GET("/ws", wsController.Connect, auth)

	api := e.Group("/api/v1", auth)
	api.GET("/conversations/:id/timeline", convController.GetTimeline)
	api.POST("/conversations/:id/messages", convController.SendMessage)
	api.POST("/conversations/:id/messages/:tempId/retry", convController.RetryMessage)
	api.DELETE("/conversations/:id/messages/:tempId", convController.DeletePendingMessage)
	api.POST("/conversations/:id/read", convController.MarkRead)
	api.DELETE("/conversations/:id/session", convController.CloseConversation)

	// The hub asks the usecase who is in a conversation when relaying
	// typing events. Wired here to avoid a constructor cycle.
	hub.Participants = conversations.Participants
	hubCtx, hubCancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go hub.Run(hubCtx)
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hubCancel()
			return e.Shutdown(ctx)
		},
	})
}
