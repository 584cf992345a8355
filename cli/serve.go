package cli

import (
	"context"
	"datatrans/handlers"
	"datatrans/logging"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the translator API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			if a.cfg.LogLevel != "DEBUG" {
				gin.SetMode(gin.ReleaseMode)
			}
			gin.DisableConsoleColor()

			api := handlers.New(e.svc, a.cfg, e.db, logging.Component(e.log, "http"))

			port, err := findAvailablePort(a.cfg.Port)
			if err != nil {
				return err
			}
			if port != a.cfg.Port {
				e.log.Warn().Int("configured", a.cfg.Port).Int("port", port).Msg("configured port is busy")
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf("0.0.0.0:%d", port),
				Handler:           api.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				e.log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			printBanner(cmd.OutOrStdout(), fmt.Sprintf("datatrans on http://127.0.0.1:%d/api", port), bannerDefaultWidth)

			select {
			case err := <-errc:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			e.log.Info().Msg("server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.log.Error().Err(err).Msg("server forced to shutdown")
			}
			return nil
		},
	}
}

// findAvailablePort returns the first free port at or above start.
func findAvailablePort(start int) (int, error) {
	for port := start; port < start+100; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in %d-%d", start, start+99)
}
