package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnmate_backend/internal/config"
	"learnmate_backend/internal/controller"
	"learnmate_backend/internal/curriculum"
	"learnmate_backend/internal/repository"
	"learnmate_backend/internal/service"
	"learnmate_backend/pkg/database"
	"learnmate_backend/pkg/logger"
	"learnmate_backend/pkg/monitoring"
	"learnmate_backend/pkg/security"
	"learnmate_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	session   *repository.SessionRepository
	chat      *repository.ChatRepository
	planCache *repository.PlanCacheRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	ai       *service.AIService
	learning *service.LearningService
	progress *service.ProgressService
	history  *service.HistoryService
	chat     *service.ChatService
	user     *service.UserService
}

type controllers struct {
	auth     *controller.AuthController
	learning *controller.LearningController
	history  *controller.HistoryController
	chat     *controller.ChatController
	user     *controller.UserController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新回调入口，由配置文件监听器触发
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	cacheTTL := time.Duration(cfg.Learning.PlanCacheTTLMin) * time.Minute
	return &repositories{
		user:      repository.NewUserRepository(db),
		session:   repository.NewSessionRepository(db),
		chat:      repository.NewChatRepository(db, rdb),
		planCache: repository.NewPlanCacheRepository(rdb, cacheTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	policy := curriculum.Policy{
		TotalWeeks:       cfg.Learning.TotalWeeks,
		QuestionsPerWeek: cfg.Learning.QuestionsPerWeek,
		PassThreshold:    cfg.Learning.PassThreshold,
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.ai = service.NewAIService(cfg.AI)
	s.learning = service.NewLearningService(repos.session, repos.planCache, s.ai, cfg.Learning)
	s.progress = service.NewProgressService(repos.session, repos.planCache, policy)
	s.history = service.NewHistoryService(repos.session, repos.planCache, policy)
	s.chat = service.NewChatService(repos.chat, repos.session, s.ai)
	s.user = service.NewUserService(repos.user, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		learning: controller.NewLearningController(s.learning, s.progress),
		history:  controller.NewHistoryController(s.history),
		chat:     controller.NewChatController(s.chat),
		user:     controller.NewUserController(s.user),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Headers())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Redis 不可用时降级运行：计划缓存与近期消息缓存直接读库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Failed to initialize redis, running without cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnmate", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	// 配置热更新：替换运行时配置引用，连接池与中间件保持启动时的参数
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Config = newCfg
		logger.Log.Info("Configuration reloaded", zap.String("mode", newCfg.Server.Mode))
	})

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
