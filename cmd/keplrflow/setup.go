package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/networkteam/keplrflow"
	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/config"
	"github.com/networkteam/keplrflow/driver/pwdriver"
	"github.com/networkteam/keplrflow/report"
)

func newSetupCmd() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Launch Chromium with the extension and import the configured wallet",
		Long: `Launches Chromium with the unpacked Keplr extension, resolves the extension
identity and runs the onboarding wizard with the wallet from
KEPLR_SECRET_WORDS_OR_PRIVATE_KEY.

With --report-addr the step journal is served as HTML until interrupted.`,
		RunE: runSetup,
	}
	setupCmd.Flags().String("extension", "", "Unpacked extension directory (overrides "+config.EnvExtensionPath+")")
	setupCmd.Flags().String("report-addr", "", "Serve the step report on this address, e.g. :8090")
	setupCmd.Flags().Bool("headless", false, "Run the browser headless (overrides "+config.EnvHeadless+")")
	setupCmd.Flags().String("user-data-dir", "", "Browser profile directory (default: temporary)")
	return setupCmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("extension") {
		cfg.ExtensionPath, _ = cmd.Flags().GetString("extension")
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless, _ = cmd.Flags().GetBool("headless")
	}
	if cfg.ExtensionPath == "" {
		return fmt.Errorf("no extension directory, set --extension or %s", config.EnvExtensionPath)
	}

	req, err := cfg.OnboardingRequest()
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	var minLevel slog.Level
	if err := minLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	journal := collector.NewEventCollector()
	defer journal.Close()
	logs := collector.NewLogCollectorWithOptions(1000, collector.LogOptions{EventCollector: journal})
	defer logs.Close()

	logger := slog.New(slogmulti.Fanout(
		collector.NewSlogLogCollectorHandler(logs, collector.CollectSlogLogsOptions{
			Level: slog.LevelDebug,
		}),
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: minLevel}),
	))

	driverOptions := cfg.DriverOptions()
	driverOptions.Logger = logger
	driverOptions.UserDataDir, _ = cmd.Flags().GetString("user-data-dir")
	drv := pwdriver.New(driverOptions)

	sessionOptions := cfg.SessionOptions()
	sessionOptions.Logger = logger
	sessionOptions.Journal = journal
	sessionOptions.CloseDriver = true

	sess, setupErr := keplrflow.InitialSetup(ctx, drv, req, sessionOptions)
	if sess != nil {
		defer sess.Close()
	} else {
		defer drv.Close()
	}
	if setupErr != nil {
		logger.ErrorContext(ctx, "Initial setup failed", slog.Any("error", setupErr))
	}

	addr, _ := cmd.Flags().GetString("report-addr")
	if addr == "" {
		return setupErr
	}

	if err := serveReport(ctx, addr, report.NewHandler(journal, report.WithLogCollector(logs)), logger); err != nil {
		return errors.Join(setupErr, err)
	}
	return setupErr
}

// serveReport serves the report until ctx is done
func serveReport(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving report", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving report: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
