package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/srcf/controlplane/internal/config"
	"github.com/srcf/controlplane/internal/logging"
	"github.com/srcf/controlplane/internal/notify"
	"github.com/srcf/controlplane/internal/plumbing/sqlengine/mysqlplumb"
	"github.com/srcf/controlplane/internal/runner"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/tasks"
	"github.com/srcf/controlplane/pkg/db"
	"github.com/srcf/controlplane/pkg/health"
)

var (
	healthAddr string
	dryRun     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the job dispatch loop",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&healthAddr, "health-addr", ":8080", "address for the liveness/readiness HTTP server")
	serveCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log notifications instead of sending them")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("jobrunnerd: %w", err)
	}
	config.Apply(cfg)

	bootLog := logging.New(nil, nil)

	pool, err := db.Open(ctx, cfg.StoreDSN,
		db.WithMigrations(store.MigrationsFS),
		db.WithLogger(bootLog),
	)
	if err != nil {
		return fmt.Errorf("jobrunnerd: open control-plane database: %w", err)
	}
	defer pool.Close()

	pgCluster, err := db.Open(ctx, cfg.PGClusterDSN, db.WithLogger(bootLog))
	if err != nil {
		return fmt.Errorf("jobrunnerd: open postgres cluster: %w", err)
	}
	defer pgCluster.Close()

	mysqlDB, err := mysqlplumb.ConnectConfigFile(cfg.MySQLConfigFile)
	if err != nil {
		return fmt.Errorf("jobrunnerd: open mysql cluster: %w", err)
	}
	defer mysqlDB.Close()

	var notifier tasks.Notifier
	if dryRun {
		notifier = notify.NewSuppressed(bootLog)
	} else {
		notifier, err = notify.New(notify.NewSMTPSender(cfg.SMTP), pool, cfg.SMTP)
		if err != nil {
			return fmt.Errorf("jobrunnerd: build notifier: %w", err)
		}
	}

	log := logging.New(pool, notifier)

	deps := tasks.Deps{
		DB:        pool,
		PGCluster: pgCluster,
		MySQL:     mysqlDB,
		Notify:    notifier,
	}

	r := runner.New(pool, deps, log)

	sweeper, err := r.StartCertSweep(ctx)
	if err != nil {
		return fmt.Errorf("jobrunnerd: start certificate sweep: %w", err)
	}
	defer sweeper.Stop()

	readiness := health.Checks{
		"store":      func(ctx context.Context) error { return pool.Ping(ctx) },
		"pg_cluster": func(ctx context.Context) error { return pgCluster.Ping(ctx) },
		"mysql":      func(ctx context.Context) error { return mysqlDB.PingContext(ctx) },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.LivenessHandler())
	mux.HandleFunc("/readyz", health.ReadinessHandler(readiness, health.WithLogger(log)))

	srv := &http.Server{
		Addr:    healthAddr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server stopped unexpectedly", "error", err.Error())
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("jobrunnerd starting", "health_addr", healthAddr, "dry_run", dryRun)
	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("jobrunnerd: %w", err)
	}
	return nil
}
