package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/audit"
	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/db"
	"github.com/gmg-digital/staticembed/internal/hydrate"
	"github.com/gmg-digital/staticembed/internal/pages"
	"github.com/gmg-digital/staticembed/internal/reports"
	"github.com/gmg-digital/staticembed/internal/server"
	"github.com/gmg-digital/staticembed/internal/staticcontent"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the content API, admin API and hydration server",
	Long:  `Starts the staticembed HTTP server: the public static content API, the page registry and static content admin endpoints, error reports, the audit trail and the hydration endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, dbPath, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		var origins []string
		if cfg.Widgets.Origin != "" {
			origins = append(origins, cfg.Widgets.Origin)
		}
		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowAll:       cfg.Server.AllowAll,
			AllowedOrigins: origins,
		}, database, logger)

		svc := registerAllRoutes(srv, database, cfg, logger)
		defer svc.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("staticembed server starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("database", dbPath),
			zap.String("content_base_url", cfg.Content.BaseURL))

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

// registerAllRoutes wires every feature package onto the server router.
func registerAllRoutes(srv *server.Server, database *db.DB, cfg *config.Config, logger *zap.Logger) *staticcontent.Service {
	r := srv.Router()

	// Audit trail
	auditStore := audit.NewStore(database)
	audit.RegisterRoutes(r, auditStore)

	// Error reports
	reportStore := reports.NewStore(database)
	dispatcher := reports.NewDispatcher(reportStore, cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
	reports.RegisterRoutes(r, reportStore)

	// Static content
	pageStore := pages.NewStore(database)
	svc := staticcontent.NewService(staticcontent.NewStore(database), pageStore, auditStore, cfg.Generator, logger.Named("generator"))
	staticcontent.RegisterContentRoutes(r, svc.Store())
	staticcontent.RegisterAdminRoutes(r, svc)

	// Page registry, whose save hook regenerates static content
	pages.RegisterRoutes(r, pageStore, svc)

	// Hydration
	hydrate.RegisterRoutes(r, hydrate.New(cfg, dispatcher, nil, logger))

	return svc
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
