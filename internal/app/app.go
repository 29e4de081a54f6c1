package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procserv_training_backend/internal/config"
	"procserv_training_backend/internal/controller"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/service"
	"procserv_training_backend/pkg/database"
	"procserv_training_backend/pkg/logger"
	"procserv_training_backend/pkg/monitoring"
	"procserv_training_backend/pkg/payment"
	"procserv_training_backend/pkg/security"
	"procserv_training_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires the whole server together. DB is nil when no database is
// configured; the server then runs in degraded mode serving the static
// catalog while mutating routes answer 503.
type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	progress   *repository.ProgressRepository
	payment    *repository.PaymentRepository
}

type services struct {
	auth        *service.AuthService
	catalog     service.CatalogService
	storage     *service.StorageService
	content     *service.ContentService
	enrollment  *service.EnrollmentService
	progress    *service.ProgressService
	certificate *service.CertificateService
	payment     *service.PaymentService
}

type controllers struct {
	auth        *controller.AuthController
	course      *controller.CourseController
	enrollment  *controller.EnrollmentController
	progress    *controller.ProgressController
	certificate *controller.CertificateController
	payment     *controller.PaymentController
	admin       *controller.AdminController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		progress:   repository.NewProgressRepository(db),
		payment:    repository.NewPaymentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)

	if cfg.Database.Configured() {
		s.catalog = service.NewLiveCatalogService(repos.course, rdb)
	} else {
		s.catalog = service.NewStaticCatalogService()
	}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.course, s.storage, s.catalog)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.progress)
	s.progress = service.NewProgressService(repos.enrollment, repos.course, repos.progress)
	s.certificate = service.NewCertificateService(repos.enrollment, repos.course)

	var provider payment.Provider
	if cfg.Payment.Configured() {
		provider = payment.NewStripeClient(cfg.Payment.StripeAPIKey, cfg.Payment.StripeWebhookSecret)
	} else {
		logger.Log.Warn("Stripe not configured, payment routes disabled")
	}
	s.payment = service.NewPaymentService(repos.payment, repos.course, s.enrollment, provider, &cfg.Payment)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		course:      controller.NewCourseController(s.catalog),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		progress:    controller.NewProgressController(s.progress),
		certificate: controller.NewCertificateController(s.certificate),
		payment:     controller.NewPaymentController(s.payment),
		admin:       controller.NewAdminController(s.content),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized")
	if cfg.JWT.Ephemeral {
		logger.Log.Warn("JWT secret generated at startup, issued tokens will not survive a restart")
	}

	var (
		db  *gorm.DB
		rdb *redis.Client
		err error
	)

	if cfg.Database.Configured() {
		migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
		db, err = database.InitDB(&cfg.Database, migrate)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}

		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	} else {
		logger.Log.Warn("Database not configured, running in degraded mode with the static catalog")
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	ctrls := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("procserv-training", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type != "minio" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
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
