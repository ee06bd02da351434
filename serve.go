//go:build !js

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/04pril/minesweeper-web/internal/assets"
	"github.com/04pril/minesweeper-web/internal/config"
	"github.com/04pril/minesweeper-web/internal/server"
)

func addServeCommand(root *cobra.Command, v *viper.Viper, cfg *config.Config, log *logrus.Logger) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser build through the offline asset cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *cfg, log)
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address")
	f.String("dir", "", "directory holding the browser build")
	f.String("origin", "", "fetch assets from this origin instead of --dir")
	f.String("cache-dir", "", "badger directory for the asset cache (in memory when empty)")
	mustBind(v, "server.addr", f.Lookup("addr"))
	mustBind(v, "server.static_dir", f.Lookup("dir"))
	mustBind(v, "server.origin", f.Lookup("origin"))
	mustBind(v, "cache.dir", f.Lookup("cache-dir"))
	root.AddCommand(cmd)
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	var upstream assets.Fetcher = assets.DirFetcher{FS: os.DirFS(cfg.Server.StaticDir)}
	if cfg.Server.Origin != "" {
		upstream = assets.HTTPFetcher{Origin: cfg.Server.Origin, Client: &http.Client{Timeout: 30 * time.Second}}
	}

	cache, err := assets.Open(assets.Options{
		Name:           cfg.Cache.Name,
		Assets:         cfg.Cache.Assets,
		Dir:            cfg.Cache.Dir,
		PopulateOnMiss: cfg.Cache.PopulateOnMiss,
		Logger:         log,
	}, upstream)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Install(ctx); err != nil {
		log.WithError(err).Warn("cache install failed, serving through the upstream")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(cache, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.WithField("addr", cfg.Server.Addr).Info("serving")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
