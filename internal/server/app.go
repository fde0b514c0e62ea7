package server

import (
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/minidebet/backend/internal/audit"
	"github.com/minidebet/backend/internal/config"
	"github.com/minidebet/backend/internal/handlers"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/metrics"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
	"github.com/minidebet/backend/internal/store"
)

// App holds the wired services and handlers of one process.
type App struct {
	cfg     *config.Config
	db      *sqlx.DB
	log     *logger.Logger
	metrics *metrics.Metrics
	tokens  *services.TokenService

	auth     *handlers.AuthHandler
	settings *handlers.SettingsHandler
	clients  *handlers.ClientHandler
	invoices *handlers.InvoiceHandler
}

// NewApp wires stores, services and handlers. rdb may be nil, revoked tokens
// are then kept in process memory.
func NewApp(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, log *logger.Logger) *App {
	m := metrics.New()
	auditLog := audit.NewLogger(log)

	accounts := store.NewAccountStore(db, log)
	settings := store.NewSettingsStore(db, log)
	clients := store.NewClientStore(db, log)
	invoices := store.NewInvoiceStore(db, log)
	allocator := store.NewSequenceAllocator(db, log)

	var revocations services.RevocationList
	if rdb != nil {
		revocations = services.NewRedisRevocationList(rdb)
	} else {
		log.Warnw("redis unavailable, revoked tokens are kept in memory")
		revocations = services.NewMemoryRevocationList()
	}
	tokens := services.NewTokenService(cfg.Auth, revocations, log.Named("token"))

	defaults := models.SettingsDefaults{
		TaxRate:          cfg.Billing.DefaultTaxRate,
		Currency:         cfg.Billing.DefaultCurrency,
		InvoicePrefix:    cfg.Billing.InvoicePrefix,
		PaymentTermsDays: cfg.Billing.PaymentTermsDays,
	}

	authSvc := services.NewAuthService(accounts, services.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, defaults, auditLog, m, log.Named("auth"))
	settingsSvc := services.NewSettingsService(settings, auditLog)
	clientSvc := services.NewClientService(clients, cfg.Billing.DefaultCountry, log.Named("client"))
	invoiceSvc := services.NewInvoiceService(invoices, clients, settings, allocator, auditLog, m, log.Named("invoice"))
	qrSvc := services.NewQRService(invoiceSvc, accounts, settings)

	return &App{
		cfg:      cfg,
		db:       db,
		log:      log,
		metrics:  m,
		tokens:   tokens,
		auth:     handlers.NewAuthHandler(authSvc, log),
		settings: handlers.NewSettingsHandler(settingsSvc, log),
		clients:  handlers.NewClientHandler(clientSvc, log),
		invoices: handlers.NewInvoiceHandler(invoiceSvc, qrSvc, log),
	}
}

// HTTPServer returns the server for the configured port.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.Router(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
