package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/database"
	"github.com/framelab/train_go_server/internal/pkg/email"
	"github.com/framelab/train_go_server/internal/pkg/logger"
	"github.com/framelab/train_go_server/internal/pkg/oss"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
	"github.com/framelab/train_go_server/internal/trainer"
	"github.com/framelab/train_go_server/internal/worker"
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

	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, using local download URLs")
			ossClient = nil
		} else {
			log.Info().Msg("OSS client initialized")
		}
	}

	taskQueue := queue.NewQueue(rdb, cfg.Queue.TrainingQueue)

	processor := worker.NewProcessor(
		repository.NewClassifierRepository(db),
		repository.NewTestSetRepository(db),
		repository.NewTopicModelRepository(db),
		trainer.NewTransformersTrainer(cfg.Training.PythonBin, cfg.Training.RunnerScript),
		trainer.NewMalletModeler(),
		email.NewService(&cfg.Email),
		ossClient,
		cfg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	log.Info().Int("max_workers", cfg.Queue.MaxWorkers).Msg("worker started")

	popTimeout := time.Duration(cfg.Queue.PopTimeout) * time.Second

	var wg sync.WaitGroup
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runLoop(ctx, workerID, taskQueue, processor, popTimeout)
		}(i)
	}

	wg.Wait()
	log.Info().Msg("worker shutdown complete")
}

func runLoop(ctx context.Context, workerID int, taskQueue *queue.Queue, processor *worker.Processor, popTimeout time.Duration) {
	log := logger.Get().With().Int("worker_id", workerID).Logger()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		default:
			task, err := taskQueue.Pop(ctx, popTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("failed to pop task")
				continue
			}
			if task == nil {
				continue // timed out, keep waiting
			}

			log.Info().Str("task_type", string(task.Type())).Msg("processing task")
			if err := processor.Process(ctx, task); err != nil {
				log.Error().Err(err).Msg("task failed")
			}
		}
	}
}
