package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/yaht-backend/internal/archive"
	"github.com/DoyleJ11/yaht-backend/internal/config"
	"github.com/DoyleJ11/yaht-backend/internal/httpapi"
	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/session"
	"github.com/DoyleJ11/yaht-backend/internal/ws"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	var store archive.Store = archive.NopStore{}
	if cfg.DatabaseURL != "" {
		gs, err := archive.OpenGorm(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := gs.Close(); err != nil {
				log.Warn("close archive database", zap.Error(err))
			}
		}()
		store = gs
		log.Info("archiving results to postgres")
	}
	archiver := archive.NewArchiver(store, cfg.ArchiveQueue, log)

	h := hub.NewHub(ctx, hub.Options{Results: archiver}, log)
	srv := session.NewServer(session.Config{
		MaxConnections:   cfg.MaxConnections,
		QueueSize:        cfg.QueueSize,
		MaxFrame:         cfg.MaxFrame,
		HandshakeTimeout: cfg.HandshakeTimeout,
		ServerVersion:    version,
	}, h, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Addr) })
	g.Go(func() error { return archiver.Run(ctx) })
	if cfg.PruneInterval > 0 {
		g.Go(func() error { return h.RunPruner(ctx, cfg.PruneInterval) })
	}
	if cfg.AdminAddr != "" {
		admin := &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           httpapi.SetupRoutes(h, srv, ws.HandlerOptions{OriginPatterns: cfg.AllowedOrigins}, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("admin listening", zap.String("addr", cfg.AdminAddr))
			if err := admin.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return admin.Shutdown(sctx)
		})
	}

	err := g.Wait()
	h.Shutdown()
	return err
}
