package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Iron-Ham/simdeck/internal/automation"
	"github.com/Iron-Ham/simdeck/internal/capture"
	"github.com/Iron-Ham/simdeck/internal/cleanup"
	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/device"
	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/server"
	"github.com/Iron-Ham/simdeck/internal/session"
	"github.com/Iron-Ham/simdeck/internal/simctl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const httpShutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the simdeck MCP server.

The server speaks line-delimited JSON-RPC over stdio: requests on stdin,
responses on stdout. Logs go to stderr or to the configured log file,
never stdout. When server.listen is set (or --listen is given), the same
server is additionally exposed over HTTP at POST /mcp.

On shutdown, every tracked session is swept: devices the server created
are shut down and deleted, attached devices are released untouched.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "also serve HTTP on this address (e.g. 127.0.0.1:8130)")
	_ = viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newServerLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logger.Close() }()

	sim := simctl.NewClient(cfg.Simctl.Binary, logger)
	auto := automation.NewClient(cfg.Automation.Binary, logger)
	registry := device.NewRegistry()
	manager := session.NewManager(registry, device.NewProvisioner(sim, logger), sim, cfg.Device.DefaultType, logger)
	recorder := capture.NewRecorder(sim, logger)

	srv := server.New(server.Deps{
		Manager:    manager,
		Automation: auto,
		Simctl:     sim,
		Recorder:   recorder,
		Config:     cfg,
		Logger:     logger,
		Version:    version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var httpSrv *http.Server
	if cfg.Server.HTTPEnabled() {
		// Listen synchronously so a bad address fails startup instead of
		// being discovered later in a goroutine.
		ln, listenErr := net.Listen("tcp", cfg.Server.Listen)
		if listenErr != nil {
			return fmt.Errorf("http transport: %w", listenErr)
		}
		httpSrv = server.NewHTTPServer(srv, cfg.Server.Listen)
		go func() {
			logger.Info("http transport listening", "addr", ln.Addr().String())
			if serveErr := httpSrv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("http transport failed", "error", serveErr)
			}
		}()
	}

	logger.Info("simdeck serving",
		"version", version,
		"pid", os.Getpid(),
		"http", cfg.Server.HTTPEnabled())

	// The stdio loop normally ends when the client closes stdin. A signal
	// cancels ctx instead; the scanner may still be blocked on a read at
	// that point, so shutdown proceeds without waiting for it.
	stdioDone := make(chan error, 1)
	go func() { stdioDone <- srv.ServeStdio(ctx, os.Stdin, os.Stdout) }()

	var serveErr error
	select {
	case serveErr = <-stdioDone:
	case <-ctx.Done():
	}

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown incomplete", "error", err)
		}
		cancel()
	}

	// The signal context is spent by now on the signal path, so the sweep
	// runs on a fresh one. Each destroy is individually bounded by
	// sweeper.destroy_timeout, keeping total shutdown time finite.
	sweeper := cleanup.NewSweeper(manager, recorder, cfg.Sweeper.DestroyTimeout, logger)
	sweeper.Sweep(context.Background())

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", serveErr)
	}
	return nil
}

// newServerLogger builds the server's logger from config. With no log
// file configured, entries go to stderr; stdout stays reserved for the
// protocol stream.
func newServerLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Log.File == "" {
		return logging.NewLogger("", cfg.Log.Level)
	}
	return logging.NewLoggerWithRotation(cfg.Log.File, cfg.Log.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}
