/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: serve.go
Description: Serve command. Runs the HTTP API until interrupted.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kleascm/bletchley/pkg/api"
	"github.com/kleascm/bletchley/pkg/logging"
	"github.com/spf13/cobra"
)

// RunServe starts the HTTP API
func RunServe(cmd *cobra.Command, args []string) error {
	maxKeys, _ := cmd.Flags().GetInt("max-keys")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	a, err := s.newAPI(maxKeys)
	if err != nil {
		return err
	}
	if logging.LogLevel(s.settings.LogLevel) != logging.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              s.settings.Listen,
		Handler:           api.NewRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := s.log.GetLogger()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("listen", s.settings.Listen).Info("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newAPI builds the API on the session dictionary and sinks
func (s *session) newAPI(maxKeys int) (*api.API, error) {
	cfg := api.Config{
		Classifier: s.classifier,
		Words:      s.words,
		Results:    s.results,
		Workers:    s.settings.Workers,
		Tolerance:  s.settings.Tolerance,
		MaxKeys:    maxKeys,
		Logger:     s.log.GetLogger(),
	}
	if s.file != nil {
		cfg.Sink = s.file
	}
	return api.NewAPI(cfg)
}
