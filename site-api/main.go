package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio-labs/folio-go/internal/chatbot"
	"github.com/folio-labs/folio-go/internal/platform/apispec"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/auth"
	"github.com/folio-labs/folio-go/internal/platform/httpserver"
	"github.com/folio-labs/folio-go/internal/platform/objectstore"
	"github.com/folio-labs/folio-go/internal/platform/otel"
	"github.com/folio-labs/folio-go/internal/platform/postgres"
	"github.com/folio-labs/folio-go/internal/repo"
	"github.com/folio-labs/folio-go/internal/repo/memory"
	pgrepo "github.com/folio-labs/folio-go/internal/repo/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := siteConfigFromEnv()
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}

	otelCfg, err := otel.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid otel config", "error", err)
		os.Exit(2)
	}
	shutdownTracing, err := otel.Setup(ctx, otelCfg, serviceName)
	if err != nil {
		logger.Error("otel init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("otel shutdown failed", "error", err)
		}
	}()

	var (
		tx     repo.Transactor
		checks []httpserver.ReadinessCheck
	)
	switch cfg.Storage {
	case storageMemory:
		logger.Warn("in-memory storage enabled, content is lost on restart")
		tx = memory.New()
	default:
		dbCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid database config", "error", err)
			os.Exit(2)
		}
		db, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			logger.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		if dbCfg.AutoMigrate {
			applied, err := postgres.Migrate(ctx, db, postgres.Migrations())
			if err != nil {
				logger.Error("migrations failed", "error", err)
				os.Exit(1)
			}
			logger.Info("migrations applied", "count", len(applied), "names", applied)
		}
		tx = pgrepo.NewRegistry(db)
		checks = append(checks, httpserver.ReadinessCheck{
			Name:  "postgres",
			Check: httpserver.WithTimeout(750*time.Millisecond, db.PingContext),
		})
	}

	var opts siteAPIOptions
	opts.TrustProxy = cfg.TrustProxy
	opts.PublicHost = cfg.PublicHost
	if cfg.MediaEnabled {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid object store config", "error", err)
			os.Exit(2)
		}
		client, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			logger.Error("object store init failed", "error", err)
			os.Exit(1)
		}
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = objectstore.EnsureBuckets(ensureCtx, client, storeCfg)
		cancel()
		if err != nil {
			logger.Error("object store unavailable", "error", err)
			os.Exit(1)
		}
		opts.Media = objectstore.NewMediaStore(client, storeCfg)
		opts.MaxUpload = storeCfg.MaxUploadBytes
		checks = append(checks, httpserver.ReadinessCheck{
			Name: "minio",
			Check: httpserver.WithTimeout(2*time.Second, func(ctx context.Context) error {
				return objectstore.CheckBuckets(ctx, client, storeCfg)
			}),
		})
	} else {
		logger.Warn("media routes disabled")
	}

	knowledge, err := chatbot.DefaultKnowledge()
	if cfg.ChatbotKnowledgeFile != "" {
		knowledge, err = chatbot.LoadKnowledge(cfg.ChatbotKnowledgeFile)
	}
	if err != nil {
		logger.Error("invalid chatbot knowledge", "error", err)
		os.Exit(2)
	}
	bot := chatbot.NewBot(knowledge)
	if cfg.ChatbotKnowledgeFile != "" {
		watcher, err := chatbot.NewWatcher(logger, bot, cfg.ChatbotKnowledgeFile)
		if err != nil {
			logger.Error("chatbot watcher init failed", "error", err)
			os.Exit(1)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("chatbot hot reload unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid auth config", "error", err)
		os.Exit(2)
	}

	var authenticator auth.Authenticator
	var oidcService *auth.OIDCService
	switch authCfg.Mode {
	case auth.ModeToken:
		tokens, err := auth.NewTokenService(authCfg)
		if err != nil {
			logger.Error("token auth init failed", "error", err)
			os.Exit(2)
		}
		opts.Tokens = tokens
		authenticator = tokens
	case auth.ModeOIDC:
		svc, err := auth.NewOIDCService(ctx, authCfg)
		if err != nil {
			logger.Error("oidc init failed", "error", err)
			os.Exit(1)
		}
		oidcService = svc
		authenticator = svc
	case auth.ModeDev:
		logger.Warn("dev auth enabled, every request is treated as the dev identity")
		authenticator = auth.NewDevAuthenticator(authCfg)
	case auth.ModeDisabled:
		logger.Warn("auth disabled, admin routes are open")
	default:
		logger.Error("unsupported auth mode", "mode", authCfg.Mode)
		os.Exit(2)
	}

	denyAudit := auditlog.AuthDenyFunc(tx.Stores().Audit, serviceName)
	authMiddleware := auth.Middleware{
		Logger:        logger,
		Authenticator: authenticator,
		Authorize:     auth.MethodRoleAuthorizer(),
		Audit: func(ctx context.Context, event auth.DenyEvent) error {
			auditCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
			defer cancel()
			return denyAudit(auditCtx, event)
		},
	}
	admin := func(handler http.HandlerFunc) http.Handler {
		if authenticator == nil {
			return handler
		}
		return authMiddleware.Wrap(handler)
	}

	api, err := newSiteAPI(logger, tx, bot, opts)
	if err != nil {
		logger.Error("api init failed", "error", err)
		os.Exit(1)
	}

	doc, err := apispec.Load(ctx)
	if err != nil {
		logger.Error("openapi document invalid", "error", err)
		os.Exit(1)
	}
	validator, err := apispec.NewValidator(logger, doc)
	if err != nil {
		logger.Error("openapi validator init failed", "error", err)
		os.Exit(1)
	}

	handler := newHandler(logger, handlerDeps{
		API:         api,
		Admin:       admin,
		Validator:   validator,
		CORSOrigins: cfg.CORSOrigins(),
		Checks:      checks,
		Extra: func(mux *http.ServeMux) {
			if oidcService == nil {
				return
			}
			login, err := oidcService.LoginHandler()
			if err != nil {
				logger.Warn("oidc login endpoints disabled", "error", err)
				return
			}
			callback, err := oidcService.CallbackHandler()
			if err != nil {
				logger.Warn("oidc login endpoints disabled", "error", err)
				return
			}
			mux.HandleFunc("GET /api/auth/oidc/login", login)
			mux.HandleFunc("GET /api/auth/oidc/callback", callback)
			mux.HandleFunc("POST /api/auth/logout", oidcService.LogoutHandler())
		},
	})

	serverCfg := httpserver.Config{
		Service:         serviceName,
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	if err := httpserver.Run(ctx, logger, serverCfg, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
