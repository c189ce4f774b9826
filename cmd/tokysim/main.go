// tokysim runs the local backend simulator so the admin CLI and tests can
// work without the real platform.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/config"
	"github.com/toky-team/toky-admin/internal/logx"
	"github.com/toky-team/toky-admin/internal/sim"
)

func main() {
	cfg := config.Load()
	log := logx.New(cfg.LogLevel)
	defer log.Sync()

	server := &http.Server{
		Addr:    cfg.SimAddr,
		Handler: sim.New(log).Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	log.Info("simulator listening", zap.String("addr", cfg.SimAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}
