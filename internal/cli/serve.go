package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/server"
)

func (r *runner) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Long: `Serve the audit API: single page audits (html, url, virtual), the audit
history with compliance and diffs, and site audits as background jobs
with progress streamed over a WebSocket.`,
		Args: cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string) error {
			srv, err := server.NewServer(server.Config{App: r.app, Logger: r.app.Logger})
			if err != nil {
				return err
			}
			httpSrv := srv.HTTPServer()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				r.app.Logger.Info("listening", logging.Field{Key: "addr", Value: httpSrv.Addr})
				errCh <- httpSrv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.ErrOrStderr(), "rgaalint API listening on %s\n", httpSrv.Addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		}),
	}
	cmd.Flags().String("listen", "", "Listen address (default localhost:8080)")
	cmd.Flags().StringSlice("allowed-origin", nil, "Allowed CORS origin (repeatable, default *)")
	_ = r.v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = r.v.BindPFlag("allowed_origins", cmd.Flags().Lookup("allowed-origin"))
	return cmd
}
