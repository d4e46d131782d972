package main

import (
	"fmt"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/api"
	"github.com/framelab/train_go_server/internal/api/handler"
	"github.com/framelab/train_go_server/internal/database"
	"github.com/framelab/train_go_server/internal/pkg/cron"
	"github.com/framelab/train_go_server/internal/pkg/logger"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
	"github.com/framelab/train_go_server/internal/service"
)

func main() {
	logger.Init()
	log := logger.Get()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	taskQueue := queue.NewQueue(rdb, cfg.Queue.TrainingQueue)

	classifierRepo := repository.NewClassifierRepository(db)
	testSetRepo := repository.NewTestSetRepository(db)
	topicModelRepo := repository.NewTopicModelRepository(db)

	classifierService := service.NewClassifierService(classifierRepo, testSetRepo, taskQueue, cfg)
	topicModelService := service.NewTopicModelService(topicModelRepo, taskQueue, cfg)

	classifierHandler := handler.NewClassifierHandler(classifierService)
	topicModelHandler := handler.NewTopicModelHandler(topicModelService)

	cronService := cron.NewService(cfg.Upload.TempDir, cfg.Upload.ExpireHours)
	cronService.Start()
	defer cronService.Stop()

	router := api.NewRouter(classifierHandler, topicModelHandler, cfg)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := engine.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
