package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/mailsig/sigsync/api/handler"
	"github.com/mailsig/sigsync/internal/infrastructure/monitor"
	pgInfra "github.com/mailsig/sigsync/internal/infrastructure/postgres"
	redisInfra "github.com/mailsig/sigsync/internal/infrastructure/redis"
	"github.com/mailsig/sigsync/internal/middleware"
	"github.com/mailsig/sigsync/internal/router"
	"github.com/mailsig/sigsync/internal/services"
	"github.com/mailsig/sigsync/internal/services/lifecycle"
	"github.com/mailsig/sigsync/pkg/httpcontext"
	"github.com/mailsig/sigsync/repository"
	"github.com/mailsig/sigsync/repository/bolt"
	pgRepo "github.com/mailsig/sigsync/repository/postgres"
	redisRepo "github.com/mailsig/sigsync/repository/redis"
	"github.com/mailsig/sigsync/repository/rest"
	"github.com/mailsig/sigsync/repository/templatestore"
	syncUC "github.com/mailsig/sigsync/usecase/sync"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a daemon with scheduled syncs and a status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Error("migrations failed", zap.Error(err))
		return err
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Error("postgres connection failed", zap.Error(err))
		return err
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Error("redis connection failed", zap.Error(err))
		return err
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	var historyRepo repository.RunHistoryRepository
	var historySizer monitor.HistorySizer
	if cfg.History.Backend == "bolt" {
		store, err := bolt.Open(cfg.History.Path)
		if err != nil {
			zapLogger.Error("history store open failed", zap.Error(err))
			return err
		}
		manager.Register("history", func(ctx context.Context) error {
			return store.Close()
		})
		pruneHistory(store)
		historyRepo = store
		historySizer = store
	} else {
		historyRepo = pgRepo.NewRunHistoryRepository(pool)
	}

	mon := monitor.New(pool, redisClient, historySizer, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var creds repository.CredentialProvider
	if cfg.Credential.PrivateKeyPath != "" {
		creds, err = rest.NewCredentialClient(rest.CredentialConfig{
			Issuer:         cfg.Credential.Issuer,
			PrivateKeyPath: cfg.Credential.PrivateKeyPath,
			TokenURL:       cfg.Credential.TokenURL,
			Scope:          cfg.Credential.Scope,
			Timeout:        cfg.Credential.Timeout,
		}, zapLogger)
		if err != nil {
			zapLogger.Error("credential provider setup failed", zap.Error(err))
			return err
		}
	}

	templateCache := redisRepo.NewTemplateCache(redisClient, cfg.Template.CacheTTL)

	service := syncUC.NewService(
		rest.NewDirectoryClient(rest.Config{
			BaseURL: cfg.Directory.BaseURL,
			Token:   cfg.Directory.Token,
			Timeout: cfg.Directory.Timeout,
		}, zapLogger),
		templatestore.New(templatestore.Config{
			Dir:       cfg.Template.Dir,
			RemoteURL: cfg.Template.RemoteURL,
		}, templateCache, zapLogger),
		rest.NewMailboxClient(rest.Config{
			BaseURL: cfg.Mailbox.BaseURL,
			Token:   cfg.Mailbox.Token,
			Timeout: cfg.Mailbox.Timeout,
		}, zapLogger),
		creds,
		historyRepo,
		cfg.Sync,
		cfg.Filter,
		branding(),
		zapLogger,
	)

	if cfg.Schedule.Enabled {
		scheduler := services.NewScheduler(service, mon, zapLogger, services.SchedulerConfig{
			Interval:   cfg.Schedule.Interval,
			RunTimeout: cfg.Context.RunTimeout,
			DryRun:     cfg.Sync.DryRun,
			TemplateID: cfg.Template.ID,
		})
		scheduler.Start()
		manager.Register("scheduler", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RunTimeout)

	handlers := router.Handlers{
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Runs:   apiHandler.NewRunsHandler(service, historyRepo, cfg.History.Limit, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(cfg.HTTP.AdminToken, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	return manager.Shutdown(context.Background())
}
