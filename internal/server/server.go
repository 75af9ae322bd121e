package server

import (
	"context"
	"fmt"

	"ocrweb/internal/config"
	"ocrweb/internal/ocr"
	"ocrweb/internal/server/handler"
	"ocrweb/internal/server/router"
	"ocrweb/internal/server/service"
	"ocrweb/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Run starts the HTTP server.
func Run() error {
	cfg := config.Load()

	log := logrus.New()
	if cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := ocr.EnsureRenderer(); err != nil {
		return err
	}

	store, err := buildStore(cfg, log)
	if err != nil {
		return err
	}

	// Build dependency chain
	pipeline := ocr.NewPipeline(ocr.NewTesseractEngine(), log)
	svc := service.NewTaskService(store, pipeline, service.Config{
		ResultsDir:    cfg.ResultsDir,
		Languages:     cfg.Languages,
		DPI:           cfg.DPI,
		TextThreshold: cfg.TextThreshold,
		Workers:       cfg.Workers,
		Timeout:       cfg.TaskTimeout,
	}, log)
	taskHandler := handler.NewTaskHandler(svc, cfg.MaxUploadBytes, log)

	r := router.New(cfg.APIKey, taskHandler)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("listening")
	return r.Run(addr)
}

func buildStore(cfg config.Settings, log *logrus.Logger) (task.Store, error) {
	if cfg.RedisAddr == "" {
		return task.NewMemoryStore(), nil
	}
	store, err := task.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("using redis task store")
	return store, nil
}
