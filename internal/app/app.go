package app

import (
	"context"
	"log"
	"neonclub_backend/internal/config"
	"neonclub_backend/internal/controller"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/service"
	"neonclub_backend/pkg/configwatcher"
	"neonclub_backend/pkg/database"
	"neonclub_backend/pkg/logger"
	"neonclub_backend/pkg/monitoring"
	"neonclub_backend/pkg/security"
	"neonclub_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 运行时监听的配置文件
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	workshop *repository.WorkshopRepository
	event    *repository.EventRepository
	purchase *repository.PurchaseRepository
	progress *repository.ProgressRepository
	session  *repository.SessionRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	storage  *service.StorageService
	cache    *service.CatalogCache
	course   *service.CourseService
	workshop *service.WorkshopService
	event    *service.EventService
	coupon   *service.CouponService
	purchase *service.PurchaseService
	progress *service.ProgressService
	session  *service.SessionService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	course   *controller.CourseController
	workshop *controller.WorkshopController
	event    *controller.EventController
	purchase *controller.PurchaseController
	coupon   *controller.CouponController
	progress *controller.ProgressController
	session  *controller.SessionController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		workshop: repository.NewWorkshopRepository(db),
		event:    repository.NewEventRepository(db),
		purchase: repository.NewPurchaseRepository(db),
		progress: repository.NewProgressRepository(db),
		session:  repository.NewSessionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.cache = service.NewCatalogCache(rdb, time.Duration(cfg.Redis.CatalogTTLSeconds)*time.Second)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course, repos.purchase, repos.progress, s.storage, s.cache)
	s.workshop = service.NewWorkshopService(repos.workshop, repos.purchase)
	s.event = service.NewEventService(repos.event)
	s.coupon = service.NewCouponService(cfg.CouponTable())
	s.purchase = service.NewPurchaseService(db, repos.purchase, repos.course, repos.workshop, repos.event, s.coupon, s.cache)
	s.progress = service.NewProgressService(db, repos.progress, repos.course, repos.purchase)
	s.session = service.NewSessionService(repos.session, repos.user)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth, s.user),
		user:     controller.NewUserController(s.user),
		course:   controller.NewCourseController(s.course),
		workshop: controller.NewWorkshopController(s.workshop),
		event:    controller.NewEventController(s.event),
		purchase: controller.NewPurchaseController(s.purchase, s.event),
		coupon:   controller.NewCouponController(s.coupon),
		progress: controller.NewProgressController(s.progress),
		session:  controller.NewSessionController(s.session),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startConfigWatcher 配置文件变更后重新加载优惠码表
func (a *App) startConfigWatcher(ctx context.Context) {
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.services.coupon.Reload(newCfg.CouponTable())
	})

	go func() {
		err := configwatcher.WatchConfig(ctx, filepath.Clean(ConfigFile), func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()
}

// NewApp 初始化依赖；只迁移或导入种子数据时不创建路由
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.SeedFile != "" {
		seed, err := database.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Log.Fatal("Failed to load seed file", zap.String("file", cfg.SeedFile), zap.Error(err))
		}
		if err := database.Seed(db, seed); err != nil {
			logger.Log.Fatal("Failed to seed database", zap.Error(err))
		}
		logger.Log.Info("Seed data loaded", zap.String("file", cfg.SeedFile))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

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

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startConfigWatcher(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Sync()
}
