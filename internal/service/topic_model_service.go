package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/model"
	"github.com/framelab/train_go_server/internal/model/dto"
	"github.com/framelab/train_go_server/internal/pkg/files"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
)

var (
	ErrTopicModelNotFound = errors.New("topic model does not exist")
	ErrLDAAlreadyBegun    = errors.New("a training file has already been uploaded for this topic model")
	ErrTopicsNotReady     = errors.New("topic model results are not ready")
	ErrBadCorpus          = errors.New("training file must be a CSV with the configured content column and at least one row")
)

type TopicModelService struct {
	topicModelRepo *repository.TopicModelRepository
	taskQueue      TaskQueue
	layout         *files.Layout
	cfg            *config.Config
}

func NewTopicModelService(
	topicModelRepo *repository.TopicModelRepository,
	taskQueue TaskQueue,
	cfg *config.Config,
) *TopicModelService {
	return &TopicModelService{
		topicModelRepo: topicModelRepo,
		taskQueue:      taskQueue,
		layout:         files.NewLayout(cfg.Upload.DataDir),
		cfg:            cfg,
	}
}

func (s *TopicModelService) Create(req *dto.CreateTopicModelRequest) (*dto.TopicModelResponse, error) {
	numTopics := req.NumTopics
	if numTopics <= 0 {
		numTopics = s.cfg.TopicModel.DefaultNumTopics
	}

	tm := &model.TopicModel{
		Name:          req.Name,
		NumTopics:     numTopics,
		NotifyAtEmail: req.NotifyAtEmail,
	}
	if err := s.topicModelRepo.Create(tm); err != nil {
		return nil, err
	}

	tm.DirPath = s.layout.TopicModelDir(tm.ID)
	if err := files.EnsureDir(tm.DirPath); err != nil {
		return nil, fmt.Errorf("failed to create topic model directory: %w", err)
	}
	if err := s.topicModelRepo.Update(tm); err != nil {
		return nil, err
	}

	return dto.NewTopicModelResponse(tm), nil
}

func (s *TopicModelService) Get(id int64) (*dto.TopicModelResponse, error) {
	tm, err := s.topicModelRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicModelNotFound
		}
		return nil, err
	}
	return dto.NewTopicModelResponse(tm), nil
}

func (s *TopicModelService) List() ([]*dto.TopicModelResponse, error) {
	models, err := s.topicModelRepo.List()
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TopicModelResponse, len(models))
	for i, tm := range models {
		items[i] = dto.NewTopicModelResponse(tm)
	}
	return items, nil
}

// UploadTrainingFile stores the corpus and schedules LDA training. As
// with classifier training sets, at most one upload ever succeeds.
func (s *TopicModelService) UploadTrainingFile(ctx context.Context, topicModelID int64, upload io.Reader) (*dto.TopicModelResponse, error) {
	tm, err := s.topicModelRepo.GetByID(topicModelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicModelNotFound
		}
		return nil, err
	}
	if tm.LDASetID != nil {
		return nil, ErrLDAAlreadyBegun
	}

	if err := files.EnsureDir(s.layout.TopicModelDir(topicModelID)); err != nil {
		return nil, fmt.Errorf("failed to create topic model directory: %w", err)
	}

	trainingFile := s.layout.TopicModelTrainingFile(topicModelID)
	if err := saveUpload(trainingFile, upload); err != nil {
		return nil, fmt.Errorf("failed to save training file: %w", err)
	}
	if err := s.checkCorpusHeader(trainingFile); err != nil {
		os.Remove(trainingFile)
		return nil, err
	}

	keywordsFile := s.layout.TopicModelKeywordsFile(topicModelID)
	topicsByDocFile := s.layout.TopicModelTopicsByDocFile(topicModelID)

	tm, err = s.topicModelRepo.AttachLDASet(topicModelID, keywordsFile, topicsByDocFile)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrLDAAlreadyBegun
		}
		return nil, err
	}
	tm.TrainingFile = trainingFile
	if err := s.topicModelRepo.Update(tm); err != nil {
		return nil, err
	}

	task := &queue.TopicModelTask{
		TopicModelID:       topicModelID,
		TrainingFile:       trainingFile,
		MalletBinDirectory: s.cfg.TopicModel.MalletBinDir,
		Iterations:         s.cfg.TopicModel.Iterations,
		NumTopics:          tm.NumTopics,
		FnameKeywords:      keywordsFile,
		FnameTopicsByDoc:   topicsByDocFile,
	}
	if err := s.taskQueue.Push(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to schedule topic model training: %w", err)
	}

	return dto.NewTopicModelResponse(tm), nil
}

// KeywordsFile resolves the local per-topic keyword sheet for download.
func (s *TopicModelService) KeywordsFile(topicModelID int64) (string, error) {
	tm, err := s.topicModelRepo.GetByID(topicModelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTopicModelNotFound
		}
		return "", err
	}
	if tm.LDASet == nil || !tm.LDASet.LDACompleted || tm.LDASet.ErrorEncountered {
		return "", ErrTopicsNotReady
	}
	return tm.LDASet.KeywordsFile, nil
}

// checkCorpusHeader requires the configured content column and at
// least one data row. Looser than the classifier upload check on
// purpose; extra columns are passed through to the modeler.
func (s *TopicModelService) checkCorpusHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ErrBadCorpus
	}

	found := false
	for _, name := range header {
		if name == s.cfg.TopicModel.ContentColumn {
			found = true
			break
		}
	}
	if !found {
		return ErrBadCorpus
	}

	if _, err := reader.Read(); err != nil {
		return ErrBadCorpus
	}
	return nil
}

func saveUpload(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}
