package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	"workshop-booking/internal/httpapi"
	"workshop-booking/internal/infrastructure/memory"
	"workshop-booking/internal/infrastructure/repository"
	"workshop-booking/internal/notify"
	"workshop-booking/internal/usecase"
	"workshop-booking/pkg/config"
	"workshop-booking/pkg/container"
	"workshop-booking/pkg/database"
	"workshop-booking/pkg/logging"
)

func main() {
	c := container.New()

	_ = c.Provide(func() *config.Config { return config.Load() }, true)

	_ = c.Provide(func(cfg *config.Config) (*logging.Logger, error) {
		return logging.New(logging.Config{
			Level:  parseLogLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
			Output: cfg.LogOutput,
		})
	}, true)

	// The UnitOfWork factory is the storage switch: MySQL when
	// DATABASE_URL is set, otherwise the in-memory store.
	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger) (domain.UnitOfWorkFactory, error) {
		if cfg.DatabaseURL == "" {
			logger.Warn("DATABASE_URL not set, using in-memory store; data will not survive restarts")
			return memory.NewFactory(memory.NewStore()), nil
		}
		db, err := database.NewWithConfig(cfg.DatabaseURL, cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLUnitOfWorkFactory(db), nil
	}, true)

	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger) auth.Authorizer {
		return auth.NewFileAuthorizer(cfg.RolesYAMLPath, logger)
	}, true)

	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger) *notify.Dispatcher {
		var notifier notify.Notifier
		if cfg.NotifyGatewayURL == "" {
			logger.Warn("NOTIFY_GATEWAY_URL not set, notification intents are recorded only")
			notifier = notify.NewRecorder()
		} else {
			notifier = notify.NewMailGatewayNotifier(notify.MailGatewayConfig{
				URL:        cfg.NotifyGatewayURL,
				APIKey:     cfg.NotifyAPIKey,
				FromEmail:  cfg.NotifyFromEmail,
				FromName:   cfg.NotifyFromName,
				AdminEmail: cfg.AdminEmail,
				Timeout:    cfg.NotifyTimeout,
			})
		}
		return notify.NewDispatcher(notifier, logger)
	}, true)

	var (
		cfg        *config.Config
		logger     *logging.Logger
		factory    domain.UnitOfWorkFactory
		authorizer auth.Authorizer
		dispatcher *notify.Dispatcher
	)
	if err := c.Resolve(&cfg); err != nil {
		log.Fatal("config resolve:", err)
	}
	if err := c.Resolve(&logger); err != nil {
		log.Fatal("logger resolve:", err)
	}
	defer logger.Close()
	if err := c.Resolve(&factory); err != nil {
		logger.Error("storage init failed", err)
		os.Exit(1)
	}
	if err := c.Resolve(&authorizer); err != nil {
		logger.Error("authorizer init failed", err)
		os.Exit(1)
	}
	if err := c.Resolve(&dispatcher); err != nil {
		logger.Error("dispatcher init failed", err)
		os.Exit(1)
	}

	logger.Info("starting workshop booking service",
		logging.String("env", cfg.Env),
		logging.String("port", cfg.Port))

	uc := httpapi.UseCases{
		CreateWorkshop:     usecase.NewCreateWorkshop(factory, authorizer, logger),
		EditWorkshop:       usecase.NewEditWorkshop(factory, authorizer, logger),
		DeleteWorkshop:     usecase.NewDeleteWorkshop(factory, authorizer, dispatcher, logger),
		UpdateAvailability: usecase.NewUpdateAvailability(factory, authorizer, logger),
		ViewWorkshops:      usecase.NewViewWorkshops(factory),
		ViewBookings:       usecase.NewViewBookings(factory, authorizer),
		CreateBooking:      usecase.NewCreateBooking(factory, dispatcher, logger),
		CancelBooking:      usecase.NewCancelBooking(factory, authorizer, dispatcher, logger),
		LinkBookings:       usecase.NewLinkBookings(factory, authorizer, logger),
		RegisterGuardian:   usecase.NewRegisterGuardian(factory, authorizer, logger),
	}

	var db *database.DB
	if sqlFactory, ok := factory.(*repository.SQLUnitOfWorkFactory); ok {
		db = sqlFactory.DB()
	}
	server := httpapi.NewServer(uc, db, logger)

	// Hot-reload the roles file so access grants apply without a restart,
	// and surface environment config changes in the log.
	watcher := config.NewWatcher(30 * time.Second)
	watcher.Start()
	defer watcher.Stop()
	changes := watcher.Subscribe()
	rolesTick := time.NewTicker(time.Minute)
	defer rolesTick.Stop()
	go func() {
		for {
			select {
			case chg, ok := <-changes:
				if !ok {
					return
				}
				logger.Info("config changed", logging.String("fields", strings.Join(chg.Fields, ",")))
			case <-rolesTick.C:
				if fa, ok := authorizer.(*auth.FileAuthorizer); ok {
					if err := fa.Reload(); err != nil {
						logger.Error("roles reload failed", err)
					}
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	go func() {
		logger.Info("http server listening", logging.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", err)
	}

	// Let in-flight notification intents finish before the process exits.
	dispatcher.Wait()
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close failed", err)
		}
	}
	logger.Info("shutdown complete")
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
