package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"shopfloor/internal/config"
	"shopfloor/internal/logging"
	"shopfloor/internal/stubapi"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	srv := stubapi.New(stubapi.Options{
		SigningSecret: cfg.Stub.SigningSecret,
		TokenTTL:      cfg.Stub.TokenTTL,
	}, log)
	srv.SeedDefaults()

	httpServer := &http.Server{
		Addr:    cfg.Stub.Addr,
		Handler: srv.Router(),
	}

	log.Infof("stub shop backend listening on %s", cfg.Stub.Addr)
	log.Infof("seeded worker login: %s / %s", stubapi.DefaultEmail, stubapi.DefaultPassword)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(shutdownCtx)
}
