package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/internal/config"
	"github.com/mailsig/sigsync/internal/template"
	"github.com/mailsig/sigsync/pkg/logger"
	"github.com/mailsig/sigsync/repository"
	"github.com/mailsig/sigsync/repository/bolt"
	"github.com/mailsig/sigsync/repository/rest"
	"github.com/mailsig/sigsync/repository/templatestore"
	syncUC "github.com/mailsig/sigsync/usecase/sync"
)

var (
	cfg       *config.Config
	zapLogger *zap.Logger

	flagDomain   string
	flagTemplate string
	flagUsers    []string
	flagDryRun   bool
)

func Execute() error {
	root := &cobra.Command{
		Use:           "sigsync",
		Short:         "Synchronize rendered signature blocks into organization mailboxes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if flagDomain != "" {
				cfg.Sync.Domain = flagDomain
			}
			if flagDryRun {
				cfg.Sync.DryRun = true
			}

			zapLogger, err = logger.New(logger.Config{
				Level:    cfg.Logger.Level,
				Encoding: cfg.Logger.Encoding,
			})
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if zapLogger != nil {
				_ = zapLogger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&flagDomain, "domain", "", "organization domain to synchronize (overrides SYNC_DOMAIN)")
	root.PersistentFlags().StringVar(&flagTemplate, "template", "", "template identifier (overrides TEMPLATE_ID)")
	root.PersistentFlags().StringArrayVar(&flagUsers, "user", nil, "limit the run to these users (repeatable)")
	root.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "classify changes without writing them")

	root.AddCommand(syncCmd(), planCmd(), historyCmd(), serveCmd())
	return root.Execute()
}

func templateID() string {
	if flagTemplate != "" {
		return flagTemplate
	}
	return cfg.Template.ID
}

// buildLocalService wires the run service for one-shot CLI commands:
// bolt-backed history, direct template fetches without a shared cache.
// requireCredentials is false for dry runs, which never acquire credentials.
func buildLocalService(requireCredentials bool) (*syncUC.Service, func(), error) {
	history, err := bolt.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("history store: %w", err)
	}
	cleanup := func() { _ = history.Close() }
	pruneHistory(history)

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
			cleanup()
			return nil, nil, err
		}
	} else if requireCredentials {
		cleanup()
		return nil, nil, fmt.Errorf("CREDENTIAL_PRIVATE_KEY_PATH is required for live runs")
	}

	service := syncUC.NewService(
		rest.NewDirectoryClient(rest.Config{
			BaseURL: cfg.Directory.BaseURL,
			Token:   cfg.Directory.Token,
			Timeout: cfg.Directory.Timeout,
		}, zapLogger),
		templatestore.New(templatestore.Config{
			Dir:       cfg.Template.Dir,
			RemoteURL: cfg.Template.RemoteURL,
		}, nil, zapLogger),
		rest.NewMailboxClient(rest.Config{
			BaseURL: cfg.Mailbox.BaseURL,
			Token:   cfg.Mailbox.Token,
			Timeout: cfg.Mailbox.Timeout,
		}, zapLogger),
		creds,
		history,
		cfg.Sync,
		cfg.Filter,
		branding(),
		zapLogger,
	)
	return service, cleanup, nil
}

// pruneHistory applies the configured retention to a freshly opened bolt
// store. Retention failures are logged, never fatal.
func pruneHistory(history *bolt.HistoryStore) {
	if cfg.History.Retention <= 0 {
		return
	}
	if err := history.Cleanup(time.Now().Add(-cfg.History.Retention)); err != nil {
		zapLogger.Warn("history retention pass failed", zap.Error(err))
	}
}

func branding() template.Branding {
	return template.Branding{
		CompanyName: cfg.Branding.CompanyName,
		Website:     cfg.Branding.Website,
		LogoURL:     cfg.Branding.LogoURL,
		PrimaryFont: cfg.Branding.PrimaryFont,
		AccentColor: cfg.Branding.AccentColor,
	}
}
