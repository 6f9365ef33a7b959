package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/givingprint/payment-service/internal/adapter/handler/http"
	"github.com/givingprint/payment-service/internal/config"
	"github.com/givingprint/payment-service/internal/infrastructure/database"
	stripeprovider "github.com/givingprint/payment-service/internal/infrastructure/provider/stripe"
	"github.com/givingprint/payment-service/internal/middleware/auth"
	"github.com/givingprint/payment-service/internal/usecase"
	"github.com/givingprint/payment-service/pkg/logger"
)

// CustomValidator adapts validator/v10 to echo's Validator interface
type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type Server struct {
	config    *config.Config
	logger    *zap.Logger
	echo      *echo.Echo
	repos     *database.Repositories
	publisher usecase.StatusPublisher
}

func NewServer(cfg *config.Config, log *zap.Logger, repos *database.Repositories, publisher usecase.StatusPublisher) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST},
	}))
	logger.WithEchoErrorHandler(e, log)

	return &Server{
		config:    cfg,
		logger:    log,
		echo:      e,
		repos:     repos,
		publisher: publisher,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	resolver := usecase.NewPaymentResolver(s.repos.Payment, s.repos.PaymentLog, s.logger)
	campaignLinker := usecase.NewCampaignLinkService(s.repos.CampaignPayment, s.repos.PaymentLog, s.logger)
	checkoutReconciler := usecase.NewCheckoutReconciler(s.repos.Payment, s.repos.PaymentLog, resolver, campaignLinker, s.logger)
	intentReconciler := usecase.NewIntentReconciler(s.repos.Payment, s.repos.PaymentLog, resolver, campaignLinker, s.publisher, s.logger)

	checkoutProvider := stripeprovider.NewCheckoutClient(s.config.Service.StripeSecretKey, s.config.Service.ClientURL, s.logger)
	donationService := usecase.NewDonationService(
		s.repos.Payment,
		s.repos.PaymentLog,
		s.repos.CampaignPayment,
		s.repos.Recipient,
		s.repos.Fingerprint,
		checkoutProvider,
		s.logger,
	)

	webhookHandler := handlers.NewWebhookHandler(s.logger, s.config.Service.StripeWebhookSecret, s.repos.Webhook, checkoutReconciler, intentReconciler)
	donationHandler := handlers.NewDonationHandler(donationService, s.logger)
	paymentHandler := handlers.NewPaymentHandler(donationService, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/api/v1/webhooks",
			"/api/v1/donations",
			"/api/v1/campaigns",
			"/api/v1/fingerprints",
		},
	}
	s.echo.Use(auth.JWTMiddleware(jwtConfig))

	v1 := s.echo.Group("/api/v1")

	// Provider webhook deliveries authenticate via signature, not JWT.
	v1.POST("/webhooks/stripe", webhookHandler.HandleWebhook)

	// Public donation flow: donors are anonymous.
	v1.POST("/donations", donationHandler.CreateDonation)
	v1.GET("/donations/:id/status", donationHandler.GetDonationStatus)
	v1.GET("/campaigns/:id/donations", donationHandler.GetCampaignFeed)
	v1.GET("/fingerprints/:id/allocations", donationHandler.GetFingerprintAllocations)

	// Recipient routes require JWT authentication.
	v1.GET("/payments", paymentHandler.ListMyPayments)
	v1.GET("/payments/:id/logs", paymentHandler.GetPaymentLogs)
}
