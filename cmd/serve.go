package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"charm.land/log/v2"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/reelscout/config"
	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/server"
	"github.com/Gaurav-Gosain/reelscout/source"
)

func newServeCmd(f *flags) *cobra.Command {
	var (
		catalogPath string
		addr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a movie catalog for the backend source",
		Long:  "Serve a movie catalog over HTTP at /movies, the shape the \"backend\" source reads.\nWithout --catalog, the catalog is downloaded from the configured gist URL.",
		Example: `  reelscout serve --catalog movies.json
  reelscout --source backend --url http://localhost:5000/movies batman`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			catalog, err := loadServeCatalog(c.Context(), cfg, catalogPath)
			if err != nil {
				return err
			}
			return serve(c.Context(), addr, server.New(catalog, logger), logger)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog JSON file (array or {\"movies\": [...]})")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":5000", "Listen address")
	return cmd
}

func loadServeCatalog(ctx context.Context, cfg *config.Config, path string) ([]movie.Record, error) {
	if path != "" {
		return server.LoadCatalog(path)
	}

	fetcher := &source.Fetcher{Timeout: cfg.RequestTimeout}
	body, err := fetcher.Get(ctx, cfg.GistURL)
	if err != nil {
		return nil, fmt.Errorf("download catalog: %w", err)
	}
	return source.DecodeCatalog(body)
}

func serve(ctx context.Context, addr string, s *server.Server, logger *log.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving catalog", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
