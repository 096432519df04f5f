package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dashprefs/api"
	"dashprefs/preference"
)

func newServeCmd(app *App) *cobra.Command {
	var port, file string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the per-user preference service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				app.Config.Server.Port = port
			}
			if file != "" {
				app.Config.Server.PreferencesFile = file
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides server.port / PORT)")
	cmd.Flags().StringVar(&file, "file", "", "preferences file (overrides server.preferences_file / PREFERENCES_FILE)")
	return cmd
}

func runServe(ctx context.Context, app *App) error {
	log := app.Log
	pm, err := preference.NewManager(app.Config.Server.PreferencesFile, log)
	if err != nil {
		log.Error("failed to load preferences", zap.String("file", app.Config.Server.PreferencesFile), zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", app.Config.Server.Port),
		Handler:           api.RegisterRoutes(pm, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("dashprefs listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout())
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
