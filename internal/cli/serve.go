package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/server"
)

// serveCommand creates the serve command running the editor API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor API server",
		Long:  `Serve the editor HTTP API: template listing, field discovery, editing sessions with live previews, translation, and export jobs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv := server.New(
				c.newLoader(cfg.Templates),
				c.newExporter(ctx, cfg),
				c.newTranslator(ctx, cfg),
				cfg.Translate.SourceLang,
				c.Logger,
			)

			httpSrv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			printInfo("Editor API on %s", StyleLink.Render("http://"+cfg.Server.Addr))

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("serving editor API", "addr", cfg.Server.Addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				c.Logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
