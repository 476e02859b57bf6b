package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/api"
	"mspro-labs/tea-buddy/internal/logger"
)

var (
	serveAddr    string
	serveBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :8080)")
	serveCmd.Flags().BoolVar(&serveBrowser, "browser", false, "fetch product pages with a headless browser")
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Setup
	st := openLocal()
	defer st.Close()
	directory := loadDirectory(ctx, st)

	handler := api.New(st, directory, newFetcher(serveBrowser), api.Options{
		AllowedOrigins: settings.Server.AllowedOrigins,
		Log:            logger.Component("api"),
	})

	// 2. Start Server
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("db", appCfg.DBPath).Msg("🍵 Tea API started")
		errCh <- server.ListenAndServe()
	}()

	// 3. Wait for a signal or a failure
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
