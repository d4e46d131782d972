package worker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/model"
	"github.com/framelab/train_go_server/internal/pkg/email"
	"github.com/framelab/train_go_server/internal/pkg/logger"
	"github.com/framelab/train_go_server/internal/pkg/oss"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
	"github.com/framelab/train_go_server/internal/trainer"
)

// Processor executes one task at a time. Outcomes are recorded as
// monotonic flags on the owning records; the database write always
// happens before the notification, so a crash between the two can only
// lose an email, never a result.
type Processor struct {
	classifierRepo *repository.ClassifierRepository
	testSetRepo    *repository.TestSetRepository
	topicModelRepo *repository.TopicModelRepository
	clsfTrainer    trainer.ClassifierTrainer
	topicModeler   trainer.TopicModeler
	emailer        email.Sender
	ossClient      *oss.Client
	cfg            *config.Config
}

func NewProcessor(
	classifierRepo *repository.ClassifierRepository,
	testSetRepo *repository.TestSetRepository,
	topicModelRepo *repository.TopicModelRepository,
	clsfTrainer trainer.ClassifierTrainer,
	topicModeler trainer.TopicModeler,
	emailer email.Sender,
	ossClient *oss.Client,
	cfg *config.Config,
) *Processor {
	return &Processor{
		classifierRepo: classifierRepo,
		testSetRepo:    testSetRepo,
		topicModelRepo: topicModelRepo,
		clsfTrainer:    clsfTrainer,
		topicModeler:   topicModeler,
		emailer:        emailer,
		ossClient:      ossClient,
		cfg:            cfg,
	}
}

// Process dispatches on the task variant. The switch is exhaustive
// over the sealed TaskMessage set.
func (p *Processor) Process(ctx context.Context, task queue.TaskMessage) error {
	switch t := task.(type) {
	case *queue.TrainingTask:
		return p.processTraining(ctx, t)
	case *queue.PredictionTask:
		return p.processPrediction(ctx, t)
	case *queue.TopicModelTask:
		return p.processTopicModel(ctx, t)
	default:
		return fmt.Errorf("unhandled task type %q", task.Type())
	}
}

func (p *Processor) processTraining(ctx context.Context, task *queue.TrainingTask) error {
	log := logger.Get().With().Int64("classifier_id", task.ClassifierID).Logger()

	clsf, err := p.classifierRepo.GetByID(task.ClassifierID)
	if err != nil {
		return fmt.Errorf("failed to load classifier %d: %w", task.ClassifierID, err)
	}
	if clsf.TrainSet == nil || clsf.DevSet == nil {
		return fmt.Errorf("classifier %d has no attached train/dev sets", task.ClassifierID)
	}
	if clsf.TrainSet.Completed || clsf.TrainSet.ErrorEncountered {
		log.Warn().Msg("training task for already finished classifier, skipping")
		return nil
	}

	log.Info().Msg("starting classifier training")

	metrics, trainErr := p.clsfTrainer.TrainAndEvaluate(ctx, trainer.TrainRequest{
		Labels:         task.Labels,
		ModelPath:      task.ModelPath,
		TrainFile:      task.TrainFile,
		DevFile:        task.DevFile,
		CacheDir:       task.CacheDir,
		OutputDir:      task.OutputDir,
		NumTrainEpochs: task.NumTrainEpochs,
	})
	if trainErr != nil {
		clsf.TrainSet.ErrorEncountered = true
		clsf.DevSet.ErrorEncountered = true
		if err := p.saveLabeledSets(clsf.TrainSet, clsf.DevSet); err != nil {
			return errors.Join(trainErr, err)
		}
		return fmt.Errorf("classifier %d training failed: %w", task.ClassifierID, trainErr)
	}

	clsf.TrainSet.Completed = true
	clsf.DevSet.Completed = true
	clsf.DevSet.Metrics = metrics
	if err := p.saveLabeledSets(clsf.TrainSet, clsf.DevSet); err != nil {
		return err
	}

	log.Info().Msg("classifier training completed")

	if clsf.NotifyAtEmail != "" {
		if err := p.emailer.SendTrainingFinished(clsf.NotifyAtEmail, clsf.Name); err != nil {
			log.Error().Err(err).Msg("failed to send training notification")
		}
	}
	return nil
}

func (p *Processor) processPrediction(ctx context.Context, task *queue.PredictionTask) error {
	log := logger.Get().With().Int64("test_set_id", task.TestSetID).Logger()

	ts, err := p.testSetRepo.GetByID(task.TestSetID)
	if err != nil {
		return fmt.Errorf("failed to load test set %d: %w", task.TestSetID, err)
	}
	if !ts.InferenceBegan || ts.InferenceCompleted || ts.ErrorEncountered {
		log.Warn().Msg("prediction task for already finished test set, skipping")
		return nil
	}

	clsf, err := p.classifierRepo.GetByID(ts.ClassifierID)
	if err != nil {
		return fmt.Errorf("failed to load classifier %d: %w", ts.ClassifierID, err)
	}

	log.Info().Msg("starting prediction")

	predictErr := p.clsfTrainer.Predict(ctx, trainer.PredictRequest{
		Labels:     task.Labels,
		ModelPath:  task.ModelPath,
		CacheDir:   task.CacheDir,
		TestFile:   task.TestFile,
		OutputFile: task.TestOutputFile,
	})
	if predictErr != nil {
		ts.ErrorEncountered = true
		if err := p.testSetRepo.Update(ts); err != nil {
			return errors.Join(predictErr, err)
		}
		return fmt.Errorf("test set %d prediction failed: %w", task.TestSetID, predictErr)
	}

	ts.PredictionsURL = p.predictionsURL(ts, task.TestOutputFile)
	ts.InferenceCompleted = true
	if err := p.testSetRepo.Update(ts); err != nil {
		return err
	}

	log.Info().Msg("prediction completed")

	if ts.NotifyAtEmail != "" {
		if err := p.emailer.SendInferenceFinished(ts.NotifyAtEmail, clsf.Name, ts.PredictionsURL); err != nil {
			log.Error().Err(err).Msg("failed to send prediction notification")
		}
	}
	return nil
}

func (p *Processor) processTopicModel(ctx context.Context, task *queue.TopicModelTask) error {
	log := logger.Get().With().Int64("topic_model_id", task.TopicModelID).Logger()

	tm, err := p.topicModelRepo.GetByID(task.TopicModelID)
	if err != nil {
		return fmt.Errorf("failed to load topic model %d: %w", task.TopicModelID, err)
	}
	if tm.LDASet == nil {
		return fmt.Errorf("topic model %d has no attached LDA set", task.TopicModelID)
	}
	if tm.LDASet.LDACompleted || tm.LDASet.ErrorEncountered {
		log.Warn().Msg("training task for already finished topic model, skipping")
		return nil
	}

	log.Info().Msg("starting topic model training")

	trainErr := p.topicModeler.Train(ctx, trainer.TopicModelRequest{
		TrainingFile:       task.TrainingFile,
		ContentColumn:      p.cfg.TopicModel.ContentColumn,
		IDColumn:           p.cfg.TopicModel.IDColumn,
		MalletBinDirectory: task.MalletBinDirectory,
		Iterations:         task.Iterations,
		NumTopics:          task.NumTopics,
		KeywordsFile:       task.FnameKeywords,
		TopicsByDocFile:    task.FnameTopicsByDoc,
	})
	if trainErr != nil {
		tm.LDASet.ErrorEncountered = true
		if err := p.topicModelRepo.SaveLDASet(tm.LDASet); err != nil {
			return errors.Join(trainErr, err)
		}
		return fmt.Errorf("topic model %d training failed: %w", task.TopicModelID, trainErr)
	}

	tm.LDASet.PreviewURL = p.keywordsURL(tm, task.FnameKeywords)
	tm.LDASet.LDACompleted = true
	if err := p.topicModelRepo.SaveLDASet(tm.LDASet); err != nil {
		return err
	}

	log.Info().Msg("topic model training completed")

	if tm.NotifyAtEmail != "" {
		if err := p.emailer.SendTopicModelFinished(tm.NotifyAtEmail, tm.Name, tm.LDASet.PreviewURL); err != nil {
			log.Error().Err(err).Msg("failed to send topic model notification")
		}
	}
	return nil
}

func (p *Processor) saveLabeledSets(sets ...*model.LabeledSet) error {
	for _, set := range sets {
		if err := p.classifierRepo.SaveLabeledSet(set); err != nil {
			return fmt.Errorf("failed to save labeled set %d: %w", set.ID, err)
		}
	}
	return nil
}

// predictionsURL prefers OSS when configured, otherwise points at the
// API's local download endpoint.
func (p *Processor) predictionsURL(ts *model.TestSet, outputFile string) string {
	if p.ossClient != nil {
		data, err := os.ReadFile(outputFile)
		if err == nil {
			url, uploadErr := p.ossClient.UploadPredictions(ts.ClassifierID, ts.ID, data)
			if uploadErr == nil {
				return url
			}
			logger.Error(uploadErr, "failed to upload predictions, falling back to local URL")
		}
	}
	return fmt.Sprintf("%s/api/v1/classifiers/%d/test_sets/%d/predictions",
		p.cfg.Server.BaseURL, ts.ClassifierID, ts.ID)
}

func (p *Processor) keywordsURL(tm *model.TopicModel, keywordsFile string) string {
	if p.ossClient != nil {
		data, err := os.ReadFile(keywordsFile)
		if err == nil {
			url, uploadErr := p.ossClient.UploadTopicKeywords(tm.ID, data)
			if uploadErr == nil {
				return url
			}
			logger.Error(uploadErr, "failed to upload topic keywords, falling back to local URL")
		}
	}
	return fmt.Sprintf("%s/api/v1/topic_models/%d/keywords", p.cfg.Server.BaseURL, tm.ID)
}
