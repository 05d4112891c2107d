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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"duopet-backend/config"
	"duopet-backend/jobs"
	"duopet-backend/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the suspension scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bootstrap(); err != nil {
		return err
	}
	log := config.Log

	if config.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.InitDB(); err != nil {
		return err
	}
	defer config.CloseDB()

	if err := config.InitRedis(); err != nil {
		return err
	}
	defer config.CloseRedis()

	if err := config.InitMongoDB(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := config.CloseMongoDB(ctx); err != nil {
			log.WithError(err).Warn("mongodb disconnect failed")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	a, err := newApp(appDeps{
		DB:          config.DB,
		Redis:       config.Redis,
		LoginEvents: config.MongoLoginEvents,
		Registry:    registry,
		Log:         log,
	})
	if err != nil {
		return err
	}
	if a.memoryCodes != nil {
		go a.memoryCodes.RunSweeper(ctx, time.Minute)
	}

	job := jobs.NewSuspensionJob(config.DB, log.WithField("job", "suspension"), time.Now)
	scheduler, err := job.Schedule(config.SuspensionSchedule)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
