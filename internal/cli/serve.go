package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitweek/internal/api"
	"github.com/mmynk/splitweek/internal/auth"
	"github.com/mmynk/splitweek/internal/config"
	"github.com/mmynk/splitweek/internal/roster"
	"github.com/mmynk/splitweek/internal/service"
	"github.com/mmynk/splitweek/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the settlement HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	svc := service.NewSettlementService(store,
		service.WithNotifier(&roster.LogNotifier{}),
	)

	srv := api.NewServer(svc, auth.NewJWTManager(cfg.Auth.Secret, ttl))
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	// h2c serves HTTP/2 without TLS so gRPC-style clients work behind a
	// plain load balancer.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := cfg.Addr()
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
