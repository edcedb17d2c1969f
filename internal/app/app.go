package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taskdeck/docs"
	"taskdeck/internal/config"
	"taskdeck/internal/handlers"
	"taskdeck/internal/logging"
	"taskdeck/internal/middleware"
	"taskdeck/internal/pdf"
	"taskdeck/internal/repositories"
	"taskdeck/internal/routes"
	"taskdeck/internal/services"
	"taskdeck/internal/validation"
)

func Run() {
	cfg := config.LoadConfig()
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	logOut, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	gin.DefaultWriter = logOut

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (TASKDECK_JWT_SECRET) is required")
	}
	policy, err := validation.ParsePolicy(cfg.Validation.PasswordPolicy)
	if err != nil {
		return err
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v, policy); err != nil {
			return fmt.Errorf("register validators: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] close db: %v", err)
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := repositories.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Printf("[app] schema migrated")
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	todoRepo := repositories.NewTodoRepository(db)
	linkRepo := repositories.NewTelegramLinkRepository(db)

	// === Redis blacklist (optional) ===
	var (
		revoker       middleware.Revoker
		handleRevoker handlers.TokenRevoker
	)
	if cfg.Redis.Addr != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		bl := services.NewTokenBlacklist(rdb)
		revoker, handleRevoker = bl, bl
	} else {
		log.Printf("[app] redis not configured: logout will not revoke tokens")
	}

	// === Services ===
	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	var sender services.MessageSender
	if cfg.Telegram.BotToken != "" {
		tg := services.NewTelegramService(cfg.Telegram.BotToken)
		if err := tg.SetWebhook(cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Printf("[app] telegram setWebhook failed: %v", err)
		}
		sender = tg
	}

	todoService := services.NewTodoService(todoRepo)
	userService := services.NewUserService(userRepo, todoRepo, emailService)
	linkService := services.NewTelegramLinkService(linkRepo, userRepo, sender)
	notifier := services.NewTodoNotifier(sender, userRepo)
	tokens := middleware.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Reminders.Enabled {
		reminders := services.NewReminderService(todoRepo, userRepo, sender, cfg.Reminders)
		if err := reminders.Start(); err != nil {
			return err
		}
		defer reminders.Stop()
	}

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, tokens, handleRevoker, policy.Describe())
	todoHandler := handlers.NewTodoHandler(todoService, notifier)
	userHandler := handlers.NewUserHandler(userService, todoService, pdf.NewReportGenerator(cfg.Files.FontPath), policy.Describe())
	telegramHandler := handlers.NewTelegramHandler(linkService, cfg.Telegram.WebhookSecret)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.MetricsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, tokens, revoker, authHandler, todoHandler, userHandler, telegramHandler)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
