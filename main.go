package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papertrading/src/api"
	apicontrollers "papertrading/src/api/controllers"
	"papertrading/src/clients"
	"papertrading/src/config"
	"papertrading/src/database"
	"papertrading/src/utils"
	aws_handler "papertrading/src/utils/aws"
	"papertrading/src/worker"
	workercontrollers "papertrading/src/worker/controllers"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		logrus.WithError(err).Fatal("Error while loading config")
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.Service.LogLevel), os.Getenv("LOG_FILE"))

	if err := aws_handler.ApplySecrets(cfg); err != nil {
		logger.WithError(err).Fatal("Error while reading secrets")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = utils.WithLogger(ctx, logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Error while running")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	store, err := database.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	quoter, closeQuoter, err := clients.NewQuoter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQuoter()

	controller := apicontrollers.NewPaperTradingController(cfg, store, quoter)

	var httpServer *http.Server
	if cfg.Service.Type == config.WORKER {
		workerController := workercontrollers.NewController(controller.Valuations)
		if err := workerController.ScheduleRefresh(ctx, cfg.Worker.RefreshCron); err != nil {
			return err
		}
		defer workerController.StopScheduler()
		httpServer = worker.NewHTTPServer(worker.NewServer(cfg, workerController, logger))
	} else {
		httpServer = api.NewHTTPServer(api.NewServer(cfg, controller, logger))
	}

	errC := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"type": cfg.Service.Type,
			"port": cfg.Service.Port,
		}).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
