package app

import (
	"academy-api/common"
	"academy-api/config"
	"academy-api/db"
	"academy-api/handler"
	"academy-api/logger"
	"academy-api/metrics"
	"academy-api/repository"
	"academy-api/router"
	"academy-api/service"
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App holds the wired layers of the server.
type App struct {
	DB      *sql.DB
	Dialect db.Dialect
	Router  http.Handler
	Cleaner *service.TempFileCleaner
}

// New wires repositories, services and handlers on top of conn. redisClient
// may be nil, in which case list caching is disabled.
func New(conn *sql.DB, dialect db.Dialect, redisClient *redis.Client) *App {
	cfg := config.AppConfig
	if err := common.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Log.WithError(err).Warn("Ignoring invalid trusted proxy list")
	}

	var cache service.ICacheClient = service.NoopCache{}
	var redisPinger handler.RedisPinger
	if redisClient != nil {
		cache = redisClient
		redisPinger = redisClient
	}

	// Repositories
	memberRepo := repository.NewMemberRepository(conn, dialect)
	tokenRepo := repository.NewTokenRepository(conn, dialect)
	groupRepo := repository.NewCategoryGroupRepository(conn, dialect)
	categoryRepo := repository.NewCategoryRepository(conn, dialect)
	fileRepo := repository.NewFileRepository(conn, dialect)
	noticeRepo := repository.NewNoticeRepository(conn, dialect)
	faqRepo := repository.NewFaqRepository(conn, dialect)
	applyRepo := repository.NewApplyRepository(conn, dialect)
	qnaRepo := repository.NewQnaRepository(conn, dialect)
	historyRepo := repository.NewAdminHistoryRepository(conn, dialect)

	// Services
	historyService := service.NewAdminHistoryService(historyRepo)
	authService := service.NewAuthService(memberRepo, tokenRepo).WithLoginRecorder(historyService)
	memberService := service.NewMemberService(memberRepo, tokenRepo)
	categoryService := service.NewCategoryService(groupRepo, categoryRepo)
	fileService := service.NewFileService(fileRepo, cfg.File.UploadDir, cfg.File.MaxSize)
	cleaner := service.NewTempFileCleaner(fileService, tokenRepo,
		time.Duration(cfg.File.TempMaxAgeHours)*time.Hour, cfg.File.CleanupInterval)
	noticeService := service.NewNoticeService(conn, noticeRepo, categoryRepo, memberRepo, fileService, cache, cfg.Redis.TTL)
	faqService := service.NewFaqService(faqRepo, categoryRepo, memberRepo, cache, cfg.Redis.TTL)
	applyService := service.NewApplyService(conn, applyRepo, memberRepo, fileService)
	qnaService := service.NewQnaService(conn, qnaRepo, memberRepo, cache, cfg.Redis.TTL)

	r := router.NewRouter(router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Member:        handler.NewMemberHandler(memberService),
		Category:      handler.NewCategoryHandler(categoryService),
		File:          handler.NewFileHandler(fileService, cleaner),
		Notice:        handler.NewNoticeHandler(noticeService),
		Faq:           handler.NewFaqHandler(faqService),
		Apply:         handler.NewApplyHandler(applyService),
		Qna:           handler.NewQnaHandler(qnaService),
		History:       handler.NewAdminHistoryHandler(historyService),
		Audit:         handler.NewAudit(historyService),
		Actuator:      handler.NewActuatorHandler(conn, redisPinger),
		SignInLimiter: handler.NewIPRateLimiter(cfg.Auth.SignInRate, cfg.Auth.SignInBurst),
	})

	return &App{DB: conn, Dialect: dialect, Router: r, Cleaner: cleaner}
}

func Run() {
	config.LoadConfig(".")
	logger.Init(config.AppConfig.Log.Level)
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, dialect, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if config.AppConfig.Database.Migrate {
		if err := db.Migrate(database, dialect); err != nil {
			logger.Log.Fatalf("Error applying migrations: %v", err)
		}
	}
	if err := metrics.RegisterDB(database, config.AppConfig.Database.Name); err != nil {
		logger.Log.WithError(err).Warn("Could not register database metrics")
	}

	var redisClient *redis.Client
	if config.AppConfig.Redis.Enabled {
		redisClient, err = db.ConnectRedis(context.Background())
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, list caching disabled")
		} else {
			defer redisClient.Close()
		}
	}

	a := New(database, dialect, redisClient)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go a.Cleaner.Start(bgCtx)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      a.Router,
		ReadTimeout:  config.AppConfig.Server.ReadTimeout,
		WriteTimeout: config.AppConfig.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	stopBackground()

	timeout := config.AppConfig.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
