package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/reconcile"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy local teas and shops missing from the remote database",
	Long: `Compares the local collection with the remote database and inserts the
teas and shops the remote side does not have yet. Nothing is updated or
deleted remotely.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSync()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <export.json>",
	Short: "Load a JSON backup into the remote database",
	Long:  `Reads a backup written by 'export', drops rows without a name and inserts the rest into the remote database.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMigrate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, migrateCmd)
}

func runSync() {
	ctx := context.Background()

	// 1. Open both sides
	local := openLocal()
	defer local.Close()
	remote := openRemote(ctx)
	defer remote.Close()

	// 2. Read everything
	localTeas, err := local.ListTeas(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list local teas")
	}
	localShops, err := local.ListShops(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list local shops")
	}
	remoteTeas, err := remote.ListTeas(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list remote teas")
	}
	remoteShops, err := remote.ListShops(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list remote shops")
	}

	// 3. Insert what is missing
	teas, shopList := reconcile.ForSync(localTeas, localShops, remoteTeas, remoteShops)
	if len(teas) == 0 && len(shopList) == 0 {
		fmt.Println("✨ Remote database is already up to date.")
		return
	}

	nTeas, err := remote.InsertTeas(ctx, teas)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert teas")
	}
	nShops, err := remote.InsertShops(ctx, shopList)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert shops")
	}
	fmt.Printf("🔄 Synced %d tea(s) and %d shop(s).\n", nTeas, nShops)
}

func runMigrate(path string) {
	ctx := context.Background()

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open export")
	}
	p, err := reconcile.Read(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Export rejected")
	}

	teas, shopList := reconcile.DropNameless(p.Teas, p.Shops)
	log.Info().
		Int("teas", len(teas)).Int("skipped_teas", len(p.Teas)-len(teas)).
		Int("shops", len(shopList)).Int("skipped_shops", len(p.Shops)-len(shopList)).
		Msg("Migrating export")

	remote := openRemote(ctx)
	defer remote.Close()

	nTeas, err := remote.InsertTeas(ctx, teas)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert teas")
	}
	nShops, err := remote.InsertShops(ctx, shopList)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert shops")
	}
	fmt.Printf("🚚 Migrated %d tea(s) and %d shop(s).\n", nTeas, nShops)
}
