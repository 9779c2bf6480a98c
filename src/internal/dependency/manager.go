package dependency

import (
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/activitylog"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/queue"
	"workspace-core-svc/src/internal/workspace"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Router             *gin.Engine
	Config             *config.Configuration
	Mongodb            *clients.MongoDB
	Redis              *clients.RedisClient
	RabbitMQ           *clients.RabbitMQ
	IdentityClient     *clients.IdentityClient
	EmailClient        *clients.EmailClient
	ContextService     workspace.ContextService
	WorkspaceService   workspace.Service
	WorkspaceHandler   workspace.Handler
	ActivityLogService activitylog.Service
	ActivityLogHandler activitylog.Handler
	Consumer           *activitylog.Consumer
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) *Manager {
	identityClient := clients.NewIdentityClient(cfg)
	emailClient := clients.NewEmailClient(cfg, rabbitMQ.Channel)

	workspaceRepo := workspace.NewRepository(mongodb, cfg.Database.WorkspaceCollection, cfg.Database.InvitationCollection)
	contextStore := workspace.NewRedisContextStore(redisClient.Client)
	contextService := workspace.NewContextService(contextStore, workspaceRepo, cfg)
	workspaceService := workspace.NewService(workspaceRepo, contextService, identityClient, emailClient)
	workspaceHandler := workspace.NewHandler(cfg, workspaceService, contextService)

	activityLogRepo := activitylog.NewRepository(mongodb, cfg.Database.ActivityLogCollection)
	activityLogService := activitylog.NewService(activityLogRepo, identityClient, cfg)
	activityLogHandler := activitylog.NewHandler(cfg, activityLogService)

	messageSource := queue.NewMessageSource(rabbitMQ, cfg)
	consumer := activitylog.NewConsumer(messageSource, activityLogRepo, contextService, cfg)

	return &Manager{
		Router:             router,
		Config:             cfg,
		Mongodb:            mongodb,
		Redis:              redisClient,
		RabbitMQ:           rabbitMQ,
		IdentityClient:     identityClient,
		EmailClient:        emailClient,
		ContextService:     contextService,
		WorkspaceService:   workspaceService,
		WorkspaceHandler:   workspaceHandler,
		ActivityLogService: activityLogService,
		ActivityLogHandler: activityLogHandler,
		Consumer:           consumer,
	}
}
