package bootstrap

import (
	"doc-workbench-be/internal/config"
	"doc-workbench-be/internal/controller"
	"doc-workbench-be/internal/handler"
	"doc-workbench-be/internal/pkg/logger"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/internal/service"
	"doc-workbench-be/internal/websocket"
	"doc-workbench-be/pkg/upstream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	WorkspaceController  controller.IWorkspaceController
	CollectionController controller.ICollectionController
	ChatController       controller.IChatController
	RagController        controller.IRagController

	// WebSockets & Status Events
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. In-Memory Workbench Storage
	// Each workbench gets its own upstream client so upstream cookies stay
	// scoped to one browser session.
	benches := memory.NewWorkbenchRepository(func() *upstream.Client {
		return upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.UploadTimeout, cfg.Upstream.ChatTimeout)
	})

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/status.log")
	wsHub := websocket.NewHub(pubSub, cfg.App.StatusTopic, wsLogger)
	statusHandler := handler.NewStatusHandler(wsHub, wsLogger)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.StatusTopic, pubSub)

	workspaceService := service.NewWorkspaceService(benches, publisherService, sysLogger)
	collectionService := service.NewCollectionService(benches, publisherService, cfg.Ai, sysLogger)
	chatService := service.NewChatService(benches, publisherService)
	ragService := service.NewRagService(benches, publisherService, cfg.Ai, sysLogger)

	// 5. Controllers
	return &Container{
		StatusHandler:        statusHandler,
		WebSocketHub:         wsHub,
		WorkspaceController:  controller.NewWorkspaceController(workspaceService),
		CollectionController: controller.NewCollectionController(collectionService),
		ChatController:       controller.NewChatController(chatService),
		RagController:        controller.NewRagController(ragService),
	}
}
