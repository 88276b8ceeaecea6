package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobseek-id/auto-emailer/internal/app"
	"github.com/jobseek-id/auto-emailer/internal/config"
	"github.com/jobseek-id/auto-emailer/internal/logger"
)

// shutdownTimeout bounds the whole ordered teardown on SIGINT/SIGTERM.
const shutdownTimeout = 15 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the auto-emailer daemon",
	Long:  "Subscribe to the job-vacancy channel and dispatch application emails until terminated.",
	RunE:  runRun,
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	if err := a.Start(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Stop(shutdownCtx)
		return fmt.Errorf("starting: %w", err)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Stop(shutdownCtx)
	return nil
}
