package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daybook/internal/bootstrap"
	"github.com/daybook/internal/config"
	"github.com/daybook/internal/handler"
	"github.com/daybook/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, bootstrap.BuildContainer())
		},
	}
}

func runServe(cmd *cobra.Command, inj *do.Injector) error {
	defer inj.Shutdown() //nolint:errcheck

	cfg, err := do.Invoke[*config.AppConfig](inj)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := do.Invoke[*zap.Logger](inj)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if err := setGinMode(cfg.GinMode); err != nil {
		return err
	}

	api, err := do.Invoke[*handler.API](inj)
	if err != nil {
		return fmt.Errorf("build handlers: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Sugar().Infow("starting http server", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
		return err
	}
	log.Sugar().Info("server exited")
	return nil
}

func setGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
		return nil
	default:
		return fmt.Errorf("unknown GIN_MODE %q", mode)
	}
}
