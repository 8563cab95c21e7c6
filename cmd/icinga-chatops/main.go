package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opschat/icinga-chatops/internal/adapter/handler"
	"github.com/opschat/icinga-chatops/internal/adapter/presenter"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
	"github.com/opschat/icinga-chatops/internal/infrastructure/config"
	"github.com/opschat/icinga-chatops/internal/infrastructure/icinga"
	"github.com/opschat/icinga-chatops/internal/infrastructure/observability"
	"github.com/opschat/icinga-chatops/internal/infrastructure/persistence/memory"
	"github.com/opschat/icinga-chatops/internal/infrastructure/persistence/mysql"
	"github.com/opschat/icinga-chatops/internal/infrastructure/persistence/sqlite"
	"github.com/opschat/icinga-chatops/internal/infrastructure/server"
	infraslack "github.com/opschat/icinga-chatops/internal/infrastructure/slack"
	"github.com/opschat/icinga-chatops/internal/usecase/chat"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Level lives in a LevelVar so the config watcher can adjust it at
	// runtime.
	levelVar := &slog.LevelVar{}
	levelVar.Set(config.ParseLevel(cfg.Logging.Level))
	logger := setupLogger(levelVar, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"icinga_host", cfg.Icinga.Hostname,
		"storage_type", cfg.Storage.Type,
		"server_port", cfg.Server.Port,
	)

	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	// Audit storage
	var auditRepo repository.AuditRepository
	var sqliteDB *sqlite.DB
	var mysqlDB *mysql.DB

	switch cfg.Storage.Type {
	case "mysql":
		mysqlDB, err = mysql.NewDB(&cfg.Storage.MySQL)
		if err != nil {
			logger.Error("failed to initialize MySQL database", "error", err)
			os.Exit(1)
		}
		if err := mysqlDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			mysqlDB.Close()
			os.Exit(1)
		}
		auditRepo = mysql.NewAuditRepository(mysqlDB)
		logger.Info("MySQL storage initialized",
			"host", cfg.Storage.MySQL.Host,
			"database", cfg.Storage.MySQL.Database,
		)

	case "sqlite":
		sqliteDB, err = sqlite.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("failed to initialize SQLite database", "error", err, "path", cfg.Storage.SQLite.Path)
			os.Exit(1)
		}
		if err := sqliteDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			sqliteDB.Close()
			os.Exit(1)
		}
		auditRepo = sqlite.NewAuditRepository(sqliteDB)
		logger.Info("SQLite storage initialized", "path", cfg.Storage.SQLite.Path)

	default:
		auditRepo = memory.NewAuditRepository()
		logger.Info("in-memory storage initialized")
	}

	// Monitoring backend
	icingaClient := icinga.NewClient(icinga.ClientConfig{
		BaseURL:     cfg.Icinga.BaseURL(),
		Username:    cfg.Icinga.Username,
		Password:    cfg.Icinga.Password,
		Timeout:     cfg.Icinga.Timeout,
		InsecureTLS: cfg.Icinga.InsecureTLS,
	}, logger)
	gateway := icinga.NewInstrumentedGateway(icingaClient, telemetry.Metrics)

	// Use cases
	store := memory.NewConversationStore()
	resolver := chat.NewResolveFilterUseCase(gateway, logger)
	dispatcher := chat.NewDispatchUseCase(gateway, auditRepo, logger)
	converse := chat.NewConverseUseCase(store, resolver, dispatcher, logger)
	status := chat.NewStatusUseCase(gateway, logger)
	overview := chat.NewOverviewUseCase(gateway, logger)
	history := chat.NewHistoryUseCase(auditRepo, logger)

	formatter := presenter.NewStatusFormatter(cfg.Icinga.WebURL, cfg.Bot.MaxDetailedStatus)
	router := chat.NewRouter(store, converse, status, overview, history, formatter, logger)

	// Slack transport
	slackClient, err := infraslack.NewClient(cfg.Slack, logger)
	if err != nil {
		logger.Error("failed to initialize slack client", "error", err)
		os.Exit(1)
	}
	chatHandler := handler.NewChatHandler(router, slackClient, telemetry.Metrics, logger)
	slackClient.SetHandler(chatHandler)

	// HTTP server for health and metrics
	handlers := &server.Handlers{
		Health:  handler.NewHealthHandler(),
		Metrics: handler.NewMetricsHandler(),
	}
	srv := server.New(cfg.Server, server.NewRouter(handlers, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config watcher for log level hot reload, best effort.
	if watcher, err := config.NewWatcher(configPath, levelVar, logger); err != nil {
		logger.Warn("config watcher disabled", "error", err)
	} else {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- srv.Run(ctx)
	}()
	go func() {
		errChan <- slackClient.Run(ctx)
	}()

	logger.Info("starting icinga-chatops", "version", version, "port", cfg.Server.Port)

	select {
	case <-ctx.Done():
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			logger.Error("runtime error", "error", err)
		}
		stop()
	}

	if mysqlDB != nil {
		if err := mysqlDB.Close(); err != nil {
			logger.Error("failed to close MySQL database", "error", err)
		}
	}
	if sqliteDB != nil {
		if err := sqliteDB.Close(); err != nil {
			logger.Error("failed to close SQLite database", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down telemetry", "error", err)
	}

	logger.Info("icinga-chatops stopped")
}

// setupLogger creates and configures the logger.
func setupLogger(level slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
