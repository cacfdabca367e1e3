// Package serve runs the HTTP API
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/cmd/root"
	"fintrack/internal/container"
	"fintrack/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	host        string
	port        int
	skipStartup bool
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracker as an HTTP API server",
	Long: `Seeds an empty database, trains the categorization model, labels every
uncategorized transaction and then serves the HTTP API until interrupted.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "Address to listen on (overrides server.host)")
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides server.port)")
	Cmd.Flags().BoolVar(&skipStartup, "skip-startup", false, "Skip seeding, training and labeling at startup")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	cfg := root.AppConfig
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return root.WithContainer(cmd, func(_ context.Context, c *container.Container) error {
		if !skipStartup {
			if _, err := c.Bootstrap(ctx); err != nil {
				return err
			}
		}

		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           c.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return Run(ctx, srv, cfg.Server.ShutdownTimeout, c.GetLogger())
	})
}

// Run serves until ctx is cancelled, then shuts srv down gracefully within
// timeout.
func Run(ctx context.Context, srv *http.Server, timeout time.Duration, logger logging.Logger) error {
	log := logger.WithField(logging.FieldComponent, "http")
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", logging.F("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("Server shutdown complete")
		return nil
	})

	return g.Wait()
}
