package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insurepay/config"
	"insurepay/cron"
	"insurepay/database"
	customerRepo "insurepay/database/repository/customer"
	insurerRepo "insurepay/database/repository/insurer"
	invoiceRepo "insurepay/database/repository/invoice"
	paymentRepo "insurepay/database/repository/payment"
	policyRepo "insurepay/database/repository/policy"
	"insurepay/handlers"
	"insurepay/middleware"
	"insurepay/routes"
	"insurepay/services/auth"
	"insurepay/services/billing"
	"insurepay/services/customer"
	"insurepay/services/gateway"
	"insurepay/services/insurer"
	"insurepay/services/notification"
	"insurepay/services/tasks"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	database.InitDB()
	utils.InitAuthCache()
	utils.InitOTPCache()

	if err := utils.RegisterValidators(); err != nil {
		logger.Sugar().Fatalf("main: failed to register validators: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	db := database.DB()
	customers := customerRepo.NewMongoCustomerRepo(db)
	insurers := insurerRepo.NewMongoInsurerRepo(db)
	policies := policyRepo.NewMongoPolicyRepo(db)
	invoices := invoiceRepo.NewMongoInvoiceRepo(db)
	payments, err := paymentRepo.NewMongoPaymentRepo(db)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build payment indexes: %v", err)
	}
	txRunner := database.NewMongoTxRunner(database.MongoClient, config.AppConfig.MongoTransactions)

	// external providers.
	gw, err := gateway.NewFromConfig(config.AppConfig, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize payment gateway: %v", err)
	}
	emailClient := notification.NewEmailClient(notification.EmailConfig{
		Enabled:     config.AppConfig.EmailEnabled,
		APIKey:      config.AppConfig.ResendAPIKey,
		FromAddress: config.AppConfig.EmailFrom,
		ReplyTo:     config.AppConfig.EmailReplyTo,
	})
	notificationService := notification.NewDefaultNotificationService(emailClient, logger)

	// services.
	authService := auth.NewDefaultAuthService(
		customers,
		insurers,
		auth.NewRedisStore(utils.GetAuthCacheClient()),
		auth.NewRedisStore(utils.GetOTPCacheClient()),
		notificationService,
		auth.AdminAccount{
			Email:        config.AppConfig.AdminEmail,
			PasswordHash: config.AppConfig.AdminPasswordHash,
		},
		logger,
	)
	customerService := customer.NewDefaultCustomerService(customers, policies, logger)
	insurerService := insurer.NewDefaultInsurerService(insurers, policies, customers, logger)
	billingService := billing.NewDefaultBillingService(
		customers, policies, invoices, payments, txRunner, gw, notificationService, logger,
		billing.Options{
			Currency:       config.AppConfig.Currency,
			AutoPayTaxRate: config.AppConfig.AutoPayTaxRate,
			LinkExpiry:     time.Duration(config.AppConfig.PaymentLinkExpiryHours) * time.Hour,
			ReminderLead:   time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
		},
	)

	// reminder queue.
	queueOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	asynqClient := asynq.NewClient(queueOpts)
	defer asynqClient.Close()
	billingService.Reminders = tasks.NewAsynqScheduler(asynqClient)
	reminderWorker := cron.NewReminderWorker(queueOpts, billingService, logger)
	reminderWorker.Start()

	// Assemble the handler bundle.
	handlerBundle := handlers.NewHandlerBundle(handlers.Services{
		Auth:         authService,
		Customers:    customerService,
		Insurers:     insurerService,
		Billing:      billingService,
		Notification: notificationService,
		Gateway:      gw,
	})

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second, map[string]*redis.Client{
		"auth": utils.GetAuthCacheClient(),
		"otp":  utils.GetOTPCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s with %s gateway...", srv.Addr, gw.Provider())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stopMonitor()
	reminderWorker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}
	utils.CloseCaches()

	logger.Sugar().Info("main: server stopped gracefully")
}
