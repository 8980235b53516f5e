package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideaboard/internal/auth"
	"ideaboard/internal/config"
	"ideaboard/internal/database"
	"ideaboard/internal/handler"
	"ideaboard/internal/job"
	"ideaboard/internal/logger"
	"ideaboard/internal/metrics"
	"ideaboard/internal/middleware"
	"ideaboard/internal/notify"
	"ideaboard/internal/ordering"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"
	"ideaboard/internal/undo"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Config    *config.Config
	Logger    *zap.Logger
	Scheduler *undo.Scheduler
	Hub       *notify.Hub

	cron       *cron.Cron
	stopRelay  context.CancelFunc
	closeRedis func() error
}

func Init(cfg *config.Config) (*Server, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.New(database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DSN(),
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to database", zap.String("driver", cfg.DBDriver))
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}

	m := metrics.New(log)
	hub := notify.NewHub(m, log)

	s := &Server{
		DB:         db,
		Config:     cfg,
		Logger:     log,
		Hub:        hub,
		stopRelay:  func() {},
		closeRedis: func() error { return nil },
	}

	// Toasts go straight to local sockets unless Redis is configured, in
	// which case every instance receives them and delivers to its own.
	var out notify.Publisher = hub
	if cfg.RedisURL != "" {
		rc, err := notify.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		relay := notify.NewRedisRelay(rc, cfg.ToastChannel, hub, log)
		ctx, cancel := context.WithCancel(context.Background())
		go relay.Run(ctx)
		out = relay
		s.stopRelay = cancel
		s.closeRedis = rc.Close
		log.Info("Toast relay enabled", zap.String("channel", cfg.ToastChannel))
	}

	scheduler := undo.NewScheduler(
		undo.WithClock(clock.New()),
		undo.WithNotifier(notify.NewToastNotifier(out, log)),
		undo.WithRecorder(m),
		undo.WithLogger(log),
		undo.WithCommitTimeout(cfg.CommitTimeout),
		undo.WithDefaultDuration(cfg.UndoWindow),
	)
	s.Scheduler = scheduler

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.Metrics(m))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	boardShareRepo := repository.NewBoardShareRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)

	// Initialize services
	access := service.NewAccessService(boardRepo, boardShareRepo, columnRepo, taskRepo)
	orderingSvc := service.NewOrderingService(columnRepo, taskRepo, ordering.Spacing{Gap: cfg.PositionGap}, m, log)
	actions := service.NewActionService(columnRepo, taskRepo, scheduler, cfg.UndoWindow, log)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, tokens)
	boardHandler := handler.NewBoardHandler(boardRepo, access)
	boardShareHandler := handler.NewBoardShareHandler(boardRepo, userRepo, boardShareRepo, access)
	columnHandler := handler.NewColumnHandler(columnRepo, access, orderingSvc, actions)
	taskHandler := handler.NewTaskHandler(taskRepo, labelRepo, userRepo, access, orderingSvc, actions)
	labelHandler := handler.NewLabelHandler(labelRepo, access)
	actionHandler := handler.NewActionHandler(actions)
	wsHandler := handler.NewWSHandler(hub, tokens, log)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/ws", wsHandler.Connect)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", s.health)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)

		// Board routes
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)

		// Board sharing routes
		authorized.POST("/boards/:id/share", boardShareHandler.ShareBoard)
		authorized.DELETE("/boards/:id/share/:user_id", boardShareHandler.RemoveShare)
		authorized.GET("/boards/:id/share", boardShareHandler.GetBoardShares)
		authorized.GET("/shared-boards", boardShareHandler.GetSharedBoards)

		// Column routes
		authorized.POST("/columns", columnHandler.Create)
		authorized.GET("/boards/:id/columns", columnHandler.GetAll)
		authorized.GET("/columns/:id", columnHandler.GetByID)
		authorized.PUT("/columns/:id", columnHandler.Update)
		authorized.DELETE("/columns/:id", columnHandler.Delete)
		authorized.POST("/columns/:id/move", columnHandler.Move)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.GET("/columns/:id/tasks", taskHandler.GetByColumnID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/archive", taskHandler.Archive)
		authorized.POST("/tasks/:id/move", taskHandler.MoveTask)
		authorized.POST("/tasks/:id/assign", taskHandler.AssignUser)
		authorized.DELETE("/tasks/:id/assign", taskHandler.UnassignUser)
		authorized.POST("/tasks/:id/labels/:label_id", taskHandler.AddLabel)
		authorized.DELETE("/tasks/:id/labels/:label_id", taskHandler.RemoveLabel)
		authorized.GET("/tasks/:id/labels", taskHandler.GetTaskLabels)
		authorized.POST("/tasks/:id/due-date", taskHandler.SetDueDate)

		// Label routes
		authorized.POST("/labels", labelHandler.Create)
		authorized.GET("/labels/:id", labelHandler.GetByID)
		authorized.GET("/boards/:id/labels", labelHandler.GetByBoardID)
		authorized.PUT("/labels/:id", labelHandler.Update)
		authorized.DELETE("/labels/:id", labelHandler.Delete)
		authorized.GET("/labels/:id/tasks", labelHandler.GetTasksWithLabel)

		// Undo routes
		authorized.GET("/actions", actionHandler.Pending)
		authorized.POST("/actions/:id/undo", actionHandler.Undo)
	}

	s.cron, err = job.NewCron(log,
		job.Entry{
			Name: "renumber",
			Spec: cfg.RenumberSchedule,
			Job:  job.NewRenumberJob(taskRepo, orderingSvc, cfg.MinTaskGap, log),
		},
		job.Entry{
			Name: "pending-sweep",
			Spec: cfg.SweepSchedule,
			Job:  job.NewPendingSweepJob(columnRepo, taskRepo, scheduler, cfg.PendingStaleAfter, m, log),
		},
	)
	if err != nil {
		return nil, err
	}

	s.Engine = r
	return s, nil
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	s.cron.Start()

	go func() {
		s.Logger.Info("Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("Failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.CommitTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Open undo windows commit now rather than leave their rows hidden.
	if err := s.Scheduler.Flush(ctx); err != nil {
		s.Logger.Error("Pending actions did not settle", zap.Error(err))
	}
	<-s.cron.Stop().Done()
	s.stopRelay()
	s.Hub.Close()
	if err := s.closeRedis(); err != nil {
		s.Logger.Warn("Failed to close redis", zap.Error(err))
	}
	if err := database.Close(s.DB); err != nil {
		s.Logger.Warn("Failed to close database", zap.Error(err))
	}

	s.Logger.Info("Server exited properly")
	_ = s.Logger.Sync()
}
