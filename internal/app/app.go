package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bloghive/docs"
	"bloghive/internal/config"
	"bloghive/internal/handlers"
	"bloghive/internal/limiter"
	"bloghive/internal/middleware"
	"bloghive/internal/pdf"
	"bloghive/internal/repositories"
	"bloghive/internal/routes"
	"bloghive/internal/services"
	"bloghive/internal/utils"
)

func newSender(cfg *config.Config) services.NotificationSender {
	switch cfg.Email.Provider {
	case "sendgrid":
		return services.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	case "log":
		utils.Logger.Warn("[app] email provider is 'log', codes are not delivered")
		return services.NewLogSender()
	default:
		return services.NewSMTPSender(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
		)
	}
}

// newThrottle: без Redis возвращает nil, отправка кодов не ограничена
func newThrottle(cfg *config.Config) (services.Throttle, func()) {
	if cfg.Redis.Addr == "" {
		utils.Logger.Warn("[app] redis not configured, send-otp throttle disabled")
		return nil, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		utils.Logger.WithError(err).Warn("[app] redis ping failed, throttle will fail requests until it is back")
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			utils.Logger.WithError(err).Warn("[app] redis close")
		}
	}
	return limiter.NewRedisLimiter(rdb, "otp:", cfg.OTP.MaxSends, cfg.OTP.SendWindow), closeFn
}

func Run() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		utils.Logger.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			utils.Logger.Errorf("Ошибка закрытия БД: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repositories.EnsureSchema(ctx, db); err != nil {
		cancel()
		utils.Logger.Fatal("Ошибка миграции схемы: ", err)
	}
	cancel()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewUserVerificationRepository(db, cfg.OTP.TTL)
	blogRepo := repositories.NewBlogRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// === Services ===
	throttle, closeRedis := newThrottle(cfg)
	defer closeRedis()

	sender := newSender(cfg)
	telegram := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
	if !telegram.Enabled() {
		utils.Logger.Info("[app] telegram mirror disabled")
	}

	authService := services.NewAuthService(cfg.BcryptCost)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	userService := services.NewUserService(userRepo, authService, tokenService, cfg.JWT.RefreshTTL)
	verificationService := services.NewVerificationService(
		userRepo,
		verificationRepo,
		sender,
		authService,
		throttle,
		cfg.OTP.MaxAttempts,
	)
	blogService := services.NewBlogService(blogRepo, userRepo)
	adminService := services.NewAdminService(userRepo, notificationRepo, sender, telegram)
	notificationService := services.NewNotificationService(notificationRepo)

	// PDF: TTF с кириллицей, иначе встроенный Helvetica
	renderer := pdf.NewPostRenderer(cfg.Files.FontPath)

	// === Cron ===
	scheduler := cron.New()
	if err := services.NewCleanupService(verificationRepo).Schedule(scheduler, cfg.Cleanup.Schedule); err != nil {
		utils.Logger.Fatal("Неверное расписание очистки: ", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, verificationService)
	blogHandler := handlers.NewBlogHandler(blogService, renderer)
	adminHandler := handlers.NewAdminHandler(adminService, blogService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(db)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		tokenService,
		userService,
		authHandler,
		blogHandler,
		adminHandler,
		notificationHandler,
		healthHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.Logger.Infof("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		utils.Logger.Fatal("Ошибка запуска сервера: ", err)
	}
}
