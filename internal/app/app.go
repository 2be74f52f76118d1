package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/nguyentranbao-ct/chat-timeline/internal/config"
	"github.com/nguyentranbao-ct/chat-timeline/internal/kafka"
	"github.com/nguyentranbao-ct/chat-timeline/internal/repo/chatapi"
	"github.com/nguyentranbao-ct/chat-timeline/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/chat-timeline/internal/server"
	"github.com/nguyentranbao-ct/chat-timeline/internal/usecase"
	"github.com/nguyentranbao-ct/chat-timeline/internal/ws"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,
			newKafkaConfig,
			newBroadcaster,
			newEventHandler,

			server.NewController,
			server.NewConversationController,
			server.NewWSController,

			usecase.NewConversationUsecase,

			mongodb.NewMessageRepository,
			mongodb.NewConversationRepository,

			chatapi.NewClient,

			ws.NewHub,
			kafka.NewConsumer,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}

func newKafkaConfig(conf *config.Config) *config.KafkaConfig {
	return &conf.Kafka
}

func newBroadcaster(hub *ws.Hub) usecase.Broadcaster {
	return hub
}

func newEventHandler(conversations *usecase.ConversationUsecase) kafka.EventHandler {
	return kafka.NewEventHandler(conversations)
}
