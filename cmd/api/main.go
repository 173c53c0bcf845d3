package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/handler"
	"github.com/files-coaching/contact-relay/internal/middleware"
	"github.com/files-coaching/contact-relay/internal/router"
	"github.com/files-coaching/contact-relay/internal/service"
	"github.com/files-coaching/contact-relay/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	var sender mailer.Sender = unconfiguredSender{}
	if cfg.HasCredential() {
		resendSender, err := mailer.NewResendSender(mailer.ResendConfig{
			APIKey:  cfg.ResendAPIKey,
			BaseURL: cfg.ResendBaseURL,
			Timeout: cfg.ProviderTimeout,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create resend client: %v", err)
		}
		sender = resendSender
	} else {
		logger.Warn().Msg("RESEND_API_KEY is not set, submissions will be rejected with 500")
	}

	relayService := service.NewRelayService(
		cfg,
		service.NewSubmissionNormalizer(logger),
		service.NewValidator(),
		service.NewTemplateRenderer(cfg.BrandName),
		service.NewDispatcher(sender, logger),
		logger,
	)
	relayHandler := handler.NewRelayHandler(relayService, cfg, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv != "production"})
	router.Register(app, cfg, router.Dependencies{
		RelayHandler: relayHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// unconfiguredSender backs the dispatcher when no credential is set; the handler rejects
// every submission before it is reached.
type unconfiguredSender struct{}

func (unconfiguredSender) Send(context.Context, mailer.Email) (string, error) {
	return "", &mailer.ProviderError{Detail: "provider credential is not configured"}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
