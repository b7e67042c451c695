package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/access"
	accesspostgres "github.com/rizkypratama/crm-management/internal/access/postgres"
	"github.com/rizkypratama/crm-management/internal/actor"
	actorpostgres "github.com/rizkypratama/crm-management/internal/actor/postgres"
	"github.com/rizkypratama/crm-management/internal/auth"
	authpostgres "github.com/rizkypratama/crm-management/internal/auth/postgres"
	"github.com/rizkypratama/crm-management/internal/communication"
	communicationpostgres "github.com/rizkypratama/crm-management/internal/communication/postgres"
	"github.com/rizkypratama/crm-management/internal/core/events"
	"github.com/rizkypratama/crm-management/internal/customer"
	customerpostgres "github.com/rizkypratama/crm-management/internal/customer/postgres"
	"github.com/rizkypratama/crm-management/internal/lead"
	leadpostgres "github.com/rizkypratama/crm-management/internal/lead/postgres"
	"github.com/rizkypratama/crm-management/internal/messagegateway"
	"github.com/rizkypratama/crm-management/internal/opportunity"
	opportunitypostgres "github.com/rizkypratama/crm-management/internal/opportunity/postgres"
	"github.com/rizkypratama/crm-management/internal/transport/rest"
	"github.com/rizkypratama/crm-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	GormDB  *gorm.DB
	Router  *chi.Mux
	Logger  *slog.Logger
	Gateway *messagegateway.Client
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Gateway != nil {
			deps.Gateway.Shutdown()
		}
		if deps.DB != nil {
			if err := deps.DB.Close(); err != nil {
				deps.Logger.Error("database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	cfg := deps.Config
	db := deps.GormDB

	// Repositories
	actorRepo := actorpostgres.NewActorRepository(db)
	authRepo := authpostgres.NewRepository(db)
	accessRepo := accesspostgres.NewAccessRepository(db)
	leadRepo := leadpostgres.NewLeadRepository(db)
	customerRepo := customerpostgres.NewCustomerRepository(db)
	opportunityRepo := opportunitypostgres.NewOpportunityRepository(db)
	communicationRepo := communicationpostgres.NewCommunicationRepository(db)

	// Event bus with audit subscribers
	bus := events.NewEventBus(lg)
	registerEventSubscribers(bus, lg)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	actorService := actor.NewService(actorRepo, lg)
	accessService := access.NewService(accessRepo, actorService, bus, lg)
	resolver := access.NewResolver(accessRepo, actorService, lg)

	leadService := lead.NewService(leadRepo, resolver, lg)
	customerService := customer.NewService(customerRepo, resolver, lg)
	opportunityService := opportunity.NewService(opportunityRepo, resolver, lg)
	communicationService := communication.NewService(communicationRepo, resolver, deps.Gateway, lg)
	if deps.Gateway != nil {
		deps.Gateway.SetStatusCallback(communicationService.HandleDeliveryStatus)
	}

	handlers := rest.Handlers{
		Auth:          auth.NewHandler(authService),
		Actor:         actor.NewHandler(actorService, accessService),
		Access:        access.NewHandler(accessService),
		Lead:          lead.NewHandler(leadService),
		Customer:      customer.NewHandler(customerService),
		Opportunity:   opportunity.NewHandler(opportunityService),
		Communication: communication.NewHandler(communicationService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, lg)
}

func registerEventSubscribers(bus *events.EventBus, lg *slog.Logger) {
	auditLog := func(ctx context.Context, event events.Event) error {
		lg.Info("audit event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		events.AccessRequestSent,
		events.AccessRequestAccepted,
		events.AccessRequestRejected,
		events.AccessRevoked,
		events.PermissionUpdated,
	} {
		bus.Subscribe(eventType, auditLog)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format)
	lg := logger.L()

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gateway := messagegateway.NewClient(messagegateway.Config{
		MockAPIURL:  config.Messaging.MockAPIURL,
		APIKey:      config.Messaging.APIKey,
		SendTimeout: 10 * time.Second,
	}, lg)

	return &Dependencies{
		Config:  config,
		Logger:  lg,
		DB:      db,
		GormDB:  gormDB,
		Router:  chi.NewRouter(),
		Gateway: gateway,
	}, nil
}

// initDB opens the database per the configured driver. Postgres runs through
// pgx/sqlx with GORM sharing the same *sql.DB; sqlite is for local setups
// and tests.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if cfg.Driver == "sqlite" {
		gormDB, err := gorm.Open(sqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to unwrap sqlite connection: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite"), gormDB, nil
	}

	dbConn, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), gormConfig)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
	}

	return dbConn, gormDB, nil
}
