package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/junkyard/internal/api"
	webui "github.com/joescharf/junkyard/internal/ui"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	Long:  "Start the HTTP server for the home page, project pages, sitemap and static files.\nBy default it listens on port 3000 (or $PORT). Use --port to change it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// newHandler wires the API server from configuration.
func newHandler() (http.Handler, error) {
	static, err := webui.Handler(viper.GetString("public_dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize static handler: %w", err)
	}

	if viper.GetString("github.owner") == "" {
		ui.Warning("github.owner is not set; project pages and sitemap dates will fail")
	}

	gh, err := newGitHubClient()
	if err != nil {
		return nil, err
	}

	srv, err := api.NewServer(newStore(), gh, static, api.Site{
		Title:       viper.GetString("site.title"),
		Description: viper.GetString("site.description"),
		BaseURL:     viper.GetString("site.base_url"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}
	srv.Log = ui

	return srv.Router(), nil
}

func serveRun() error {
	handler, err := newHandler()
	if err != nil {
		return err
	}

	port := viper.GetInt("port")
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		ui.Success("Server is running on http://localhost:%d", port)
		ui.VerboseLog("projects file: %s", newStore().Path())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	ui.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
