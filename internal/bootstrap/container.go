package bootstrap

import (
	"context"
	"log"

	"lms-be/internal/config"
	"lms-be/internal/controller"
	"lms-be/internal/handler"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/mailer"
	"lms-be/internal/pkg/render"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/contract"
	"lms-be/internal/repository/memory"
	"lms-be/internal/repository/redisstore"
	"lms-be/internal/repository/unitofwork"
	"lms-be/internal/service"
	"lms-be/internal/websocket"
	"lms-be/pkg/events"
	pktNats "lms-be/pkg/nats"
	"lms-be/pkg/richtext"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	CourseController     controller.ICourseController
	ContentController    controller.IContentController
	EnrollmentController controller.IEnrollmentController
	UploadController     controller.IUploadController
	EditorController     controller.IEditorController
	AdminController      controller.IAdminController

	// WebSockets
	EditorHandler *handler.EditorHandler
	WebSocketHub  *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	Logger *logger.ZapLogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. In-process bus for deferred highlighting
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var publisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger.Named("NATS"))
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger.Named("NATS"))
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.AuditService = service.NewAuditService(natsSub, sysLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	rdb := connectRedis(cfg.App.RedisURL)
	var sessions contract.SessionRepository
	if rdb != nil {
		sessions = redisstore.NewSessionRepository(rdb)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	} else {
		log.Printf("[WARN] Using in-memory login sessions")
		sessions = memory.NewSessionRepository(cfg.Auth.SessionTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/editor.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Services
	highlighter := richtext.NewChromaHighlighter(cfg.Editor.HighlightStyle)

	authService := service.NewAuthService(uowFactory, sessions, emailService, publisher, sysLogger, cfg.Auth)
	auth := serverutils.JwtMiddleware(cfg.Auth.JwtSecret, authService)

	uploadService := service.NewUploadService(cfg.Upload, sysLogger)
	courseService := service.NewCourseService(uowFactory, uploadService, publisher, sysLogger)

	publisherService := service.NewPublisherService(cfg.Events.ContentTopic, pubSub)
	contentService := service.NewContentService(uowFactory, publisherService, render.NewRenderer(highlighter), sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.ContentTopic, uowFactory, highlighter, sysLogger)

	enrollmentService := service.NewEnrollmentService(uowFactory, emailService, publisher, sysLogger, cfg.App.ClientURL)

	editorService := service.NewEditorService(
		memory.NewEditorRegistry(cfg.Editor.SessionTTL),
		c.WebSocketHub,
		highlighter,
		cfg.Editor,
		wsLogger,
		wsLogger.Named("EDITOR"),
	)

	adminService := service.NewAdminService(sysLogger)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService, auth)
	c.CourseController = controller.NewCourseController(courseService, auth)
	c.ContentController = controller.NewContentController(contentService, auth)
	c.EnrollmentController = controller.NewEnrollmentController(enrollmentService, auth)
	c.UploadController = controller.NewUploadController(uploadService, auth)
	c.EditorController = controller.NewEditorController(editorService, auth)
	c.AdminController = controller.NewAdminController(adminService, auth)
	c.EditorHandler = handler.NewEditorHandler(editorService, c.WebSocketHub, auth, wsLogger)

	return c
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if c.AuditService != nil {
		if err := c.AuditService.Start(ctx); err != nil {
			log.Printf("Audit Subscriber Error: %v", err)
		}
	}
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
