package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/config"
	"mspro-labs/tea-buddy/internal/fetcher"
	"mspro-labs/tea-buddy/internal/lexicon"
	"mspro-labs/tea-buddy/internal/logger"
	"mspro-labs/tea-buddy/internal/shops"
	"mspro-labs/tea-buddy/internal/store"
)

var (
	appCfg   config.AppConfig
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "tea-buddy",
	Short: "Keep track of your tea collection",
	Long: `tea-buddy manages a personal tea collection and wishlist: it reads tea
details from shop product pages, keeps a directory of known shops, exports
and imports backups, syncs to a remote database and serves a REST API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appCfg, err = config.GetAppConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger.Init(appCfg.LogLevel, appCfg.LogFormat)

		settings, err = config.LoadSettings(appCfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLocal opens the local database, seeding the shop directory on first run.
func openLocal() *store.SQLiteStore {
	st, err := store.OpenSQLite(appCfg.DBPath, lexicon.Default().SeedShops())
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.DBPath).Msg("Database error")
	}
	return st
}

// openRemote connects to the managed database and makes sure its tables exist.
func openRemote(ctx context.Context) *store.PostgresStore {
	if appCfg.RemoteDatabaseURL == "" {
		log.Fatal().Msg("REMOTE_DATABASE_URL is not set")
	}
	st, err := store.OpenPostgres(ctx, appCfg.RemoteDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Remote database error")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		log.Fatal().Err(err).Msg("Failed to prepare remote schema")
	}
	return st
}

// loadDirectory builds the in-memory shop directory from the store.
func loadDirectory(ctx context.Context, st store.Store) *shops.Directory {
	list, err := st.ListShops(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load shops")
	}
	return shops.NewDirectory(list)
}

func newFetcher(useBrowser bool) fetcher.Fetcher {
	if useBrowser || settings.Fetch.UseBrowser {
		return fetcher.NewBrowserFetcher(0, logger.Component("browser"))
	}
	return fetcher.NewHTTPFetcher(settings.Fetch, logger.Component("fetcher"))
}
