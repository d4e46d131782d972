package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/dataset"
	"github.com/framelab/train_go_server/internal/model"
	"github.com/framelab/train_go_server/internal/model/dto"
	"github.com/framelab/train_go_server/internal/pkg/files"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
)

var (
	ErrClassifierNotFound   = errors.New("classifier does not exist")
	ErrTestSetNotFound      = errors.New("test set does not exist")
	ErrTooFewCategories     = errors.New("a classifier needs at least two categories")
	ErrInvalidCategoryName  = errors.New("category names must not contain commas")
	ErrTrainingAlreadyBegun = errors.New("a training set has already been uploaded for this classifier")
	ErrNotTrained           = errors.New("classifier training has not completed yet")
	ErrPredictionsNotReady  = errors.New("predictions are not ready for this test set")
)

// TaskQueue is the producer side of the job queue. The services only
// ever push; the worker binary owns the consuming side.
type TaskQueue interface {
	Push(ctx context.Context, task queue.TaskMessage) error
}

type ClassifierService struct {
	classifierRepo *repository.ClassifierRepository
	testSetRepo    *repository.TestSetRepository
	taskQueue      TaskQueue
	validator      *dataset.Validator
	layout         *files.Layout
	cfg            *config.Config
}

func NewClassifierService(
	classifierRepo *repository.ClassifierRepository,
	testSetRepo *repository.TestSetRepository,
	taskQueue TaskQueue,
	cfg *config.Config,
) *ClassifierService {
	return &ClassifierService{
		classifierRepo: classifierRepo,
		testSetRepo:    testSetRepo,
		taskQueue:      taskQueue,
		validator:      dataset.NewValidator(cfg.Dataset.DevSplit, cfg.Dataset.MinRows),
		layout:         files.NewLayout(cfg.Upload.DataDir),
		cfg:            cfg,
	}
}

// Create registers a classifier definition. Category names are fixed
// here; later uploads must match them exactly.
func (s *ClassifierService) Create(req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error) {
	if len(req.CategoryNames) < 2 {
		return nil, ErrTooFewCategories
	}
	for _, name := range req.CategoryNames {
		if strings.Contains(name, ",") {
			return nil, ErrInvalidCategoryName
		}
	}

	clsf := &model.Classifier{
		Name:              req.Name,
		CategoryNames:     req.CategoryNames,
		NotifyAtEmail:     req.NotifyAtEmail,
		TrainedByPlatform: true,
	}
	if err := s.classifierRepo.Create(clsf); err != nil {
		return nil, err
	}

	clsf.DirPath = s.layout.ClassifierDir(clsf.ID)
	if err := files.EnsureDir(clsf.DirPath); err != nil {
		return nil, fmt.Errorf("failed to create classifier directory: %w", err)
	}
	if err := s.classifierRepo.Update(clsf); err != nil {
		return nil, err
	}

	return dto.NewClassifierResponse(clsf), nil
}

func (s *ClassifierService) Get(id int64) (*dto.ClassifierResponse, error) {
	clsf, err := s.classifierRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassifierNotFound
		}
		return nil, err
	}
	return dto.NewClassifierResponse(clsf), nil
}

func (s *ClassifierService) List() ([]*dto.ClassifierResponse, error) {
	classifiers, err := s.classifierRepo.List()
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ClassifierResponse, len(classifiers))
	for i, clsf := range classifiers {
		items[i] = dto.NewClassifierResponse(clsf)
	}
	return items, nil
}

// UploadTrainingSet validates the uploaded table, performs the
// stratified train/dev split, persists both partitions, and schedules
// training. At most one upload per classifier ever succeeds; a
// concurrent second upload loses the compare-and-set in the repository
// and leaves the winner's state untouched.
func (s *ClassifierService) UploadTrainingSet(ctx context.Context, classifierID int64, upload io.Reader) (*dto.ClassifierResponse, error) {
	clsf, err := s.classifierRepo.GetByID(classifierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassifierNotFound
		}
		return nil, err
	}
	if clsf.TrainSetID != nil {
		return nil, ErrTrainingAlreadyBegun
	}

	table, err := dataset.ParseTable(upload)
	if err != nil {
		return nil, err
	}

	trainRows, devRows, err := s.validator.ValidateAndSplit(clsf.CategoryNames, table)
	if err != nil {
		return nil, err
	}

	trainFile := s.layout.TrainFile(classifierID)
	devFile := s.layout.DevFile(classifierID)
	if err := files.EnsureDir(s.layout.ClassifierDir(classifierID)); err != nil {
		return nil, fmt.Errorf("failed to create classifier directory: %w", err)
	}
	if err := dataset.WriteFile(trainFile, table.Header, trainRows); err != nil {
		return nil, fmt.Errorf("failed to write train split: %w", err)
	}
	if err := dataset.WriteFile(devFile, table.Header, devRows); err != nil {
		return nil, fmt.Errorf("failed to write dev split: %w", err)
	}

	clsf, err = s.classifierRepo.AttachTrainDevSets(classifierID, trainFile, devFile)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrTrainingAlreadyBegun
		}
		return nil, err
	}

	task := &queue.TrainingTask{
		ClassifierID:   classifierID,
		Labels:         clsf.CategoryNames,
		ModelPath:      s.cfg.Training.ModelPath,
		TrainFile:      trainFile,
		DevFile:        devFile,
		CacheDir:       s.cfg.Training.CacheDir,
		OutputDir:      s.layout.ClassifierOutputDir(classifierID),
		NumTrainEpochs: s.cfg.Training.NumTrainEpochs,
	}
	if err := s.taskQueue.Push(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to schedule training: %w", err)
	}

	return dto.NewClassifierResponse(clsf), nil
}

// CreateTestSet accepts a batch of unlabeled examples and schedules
// inference against the trained classifier.
func (s *ClassifierService) CreateTestSet(ctx context.Context, classifierID int64, req *dto.CreateTestSetRequest, upload io.Reader) (*dto.TestSetResponse, error) {
	clsf, err := s.classifierRepo.GetByID(classifierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassifierNotFound
		}
		return nil, err
	}
	if clsf.TrainingStatus() != model.StatusCompleted {
		return nil, ErrNotTrained
	}

	table, err := dataset.ParseUnlabeledTable(upload)
	if err != nil {
		return nil, err
	}

	ts := &model.TestSet{
		ClassifierID:  classifierID,
		Name:          req.Name,
		NotifyAtEmail: req.NotifyAtEmail,
	}
	if err := s.testSetRepo.Create(ts); err != nil {
		return nil, err
	}

	testFile := s.layout.TestSetFile(classifierID, ts.ID)
	outputFile := s.layout.TestSetOutputFile(classifierID, ts.ID)
	if err := files.EnsureDir(filepath.Dir(testFile)); err != nil {
		return nil, fmt.Errorf("failed to create test set directory: %w", err)
	}
	if err := dataset.WriteFile(testFile, table.Header, table.Rows); err != nil {
		return nil, fmt.Errorf("failed to write test set: %w", err)
	}

	// The in-flight flag goes up only after the input file is safely
	// on disk, and comes back down if the enqueue fails, so the row
	// never reads as predicting without a job behind it.
	ts.TestFile = testFile
	ts.OutputFile = outputFile
	ts.InferenceBegan = true
	if err := s.testSetRepo.Update(ts); err != nil {
		return nil, err
	}

	task := &queue.PredictionTask{
		TestSetID:      ts.ID,
		Labels:         clsf.CategoryNames,
		ModelPath:      s.layout.ClassifierOutputDir(classifierID),
		CacheDir:       s.cfg.Training.CacheDir,
		TestFile:       testFile,
		TestOutputFile: outputFile,
	}
	if err := s.taskQueue.Push(ctx, task); err != nil {
		ts.InferenceBegan = false
		if saveErr := s.testSetRepo.Update(ts); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, fmt.Errorf("failed to schedule prediction: %w", err)
	}

	return dto.NewTestSetResponse(ts), nil
}

func (s *ClassifierService) GetTestSet(classifierID, testSetID int64) (*dto.TestSetResponse, error) {
	ts, err := s.testSetRepo.GetByID(testSetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestSetNotFound
		}
		return nil, err
	}
	if ts.ClassifierID != classifierID {
		return nil, ErrTestSetNotFound
	}
	return dto.NewTestSetResponse(ts), nil
}

func (s *ClassifierService) ListTestSets(classifierID int64) ([]*dto.TestSetResponse, error) {
	if _, err := s.classifierRepo.GetByID(classifierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassifierNotFound
		}
		return nil, err
	}

	sets, err := s.testSetRepo.ListByClassifier(classifierID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TestSetResponse, len(sets))
	for i, ts := range sets {
		items[i] = dto.NewTestSetResponse(ts)
	}
	return items, nil
}

// PredictionsFile resolves the local predictions CSV for download.
// Only valid once inference completed without error.
func (s *ClassifierService) PredictionsFile(classifierID, testSetID int64) (string, error) {
	ts, err := s.testSetRepo.GetByID(testSetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTestSetNotFound
		}
		return "", err
	}
	if ts.ClassifierID != classifierID {
		return "", ErrTestSetNotFound
	}
	if !ts.InferenceCompleted || ts.ErrorEncountered {
		return "", ErrPredictionsNotReady
	}
	return ts.OutputFile, nil
}
