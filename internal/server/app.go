// Package server runs the development API server: the in-memory API from
// package apitest behind a real HTTP listener, with graceful shutdown. It
// lets the CLI be exercised end to end without the production backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/apitest"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	api    *apitest.Server
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	api := apitest.New(
		apitest.WithSecret([]byte(c.SecretKey)),
		apitest.WithTokenTTL(c.AccessTokenValidityDuration),
	)

	if c.HasSeedUser() {
		if _, err := api.CreateUser(c.SeedEmail, c.SeedUsername, c.SeedPassword, true); err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
	}

	return &App{config: c, logger: logger, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs the HTTP server on l until ctx is cancelled.
func (app *App) serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	app.logger.Info(ctx, "development API listening", "addr", l.Addr().String(), "base_path", apitest.BasePath)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	l, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := app.serve(ctx, l); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Stopped")
}
