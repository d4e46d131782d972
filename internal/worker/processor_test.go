package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/repository"
	"github.com/framelab/train_go_server/internal/testutil"
	"github.com/framelab/train_go_server/internal/trainer"
	"gorm.io/gorm"
)

// fakeTrainer returns canned results instead of shelling out.
type fakeTrainer struct {
	metrics    map[string]float64
	trainErr   error
	predictErr error
}

func (f *fakeTrainer) TrainAndEvaluate(_ context.Context, _ trainer.TrainRequest) (map[string]float64, error) {
	if f.trainErr != nil {
		return nil, f.trainErr
	}
	return f.metrics, nil
}

func (f *fakeTrainer) Predict(_ context.Context, _ trainer.PredictRequest) error {
	return f.predictErr
}

type fakeModeler struct {
	trainErr error
}

func (f *fakeModeler) Train(_ context.Context, _ trainer.TopicModelRequest) error {
	return f.trainErr
}

// fakeSender records notifications and can fail every send.
type fakeSender struct {
	trainingFinished   []string
	inferenceFinished  []string
	topicModelFinished []string
	sendErr            error
}

func (f *fakeSender) SendTrainingFinished(to, _ string) error {
	f.trainingFinished = append(f.trainingFinished, to)
	return f.sendErr
}

func (f *fakeSender) SendInferenceFinished(to, _, _ string) error {
	f.inferenceFinished = append(f.inferenceFinished, to)
	return f.sendErr
}

func (f *fakeSender) SendTopicModelFinished(to, _, _ string) error {
	f.topicModelFinished = append(f.topicModelFinished, to)
	return f.sendErr
}

func setupProcessor(t *testing.T, db *gorm.DB, ft *fakeTrainer, fm *fakeModeler, fs *fakeSender) *Processor {
	t.Helper()

	cfg := &config.Config{
		Server:     config.ServerConfig{BaseURL: "http://localhost:8080"},
		TopicModel: config.TopicModelConfig{ContentColumn: "example", IDColumn: "id"},
	}

	return NewProcessor(
		repository.NewClassifierRepository(db),
		repository.NewTestSetRepository(db),
		repository.NewTopicModelRepository(db),
		ft,
		fm,
		fs,
		nil,
		cfg,
	)
}

func TestProcessor_Training_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	ft := &fakeTrainer{metrics: map[string]float64{"accuracy": 0.9, "macro_f1_score": 0.85}}
	p := setupProcessor(t, db, ft, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))

	err := p.Process(context.Background(), &queue.TrainingTask{
		ClassifierID: clsf.ID,
		Labels:       clsf.CategoryNames,
	})
	require.NoError(t, err)

	repo := repository.NewClassifierRepository(db)
	after, err := repo.GetByID(clsf.ID)
	require.NoError(t, err)

	assert.True(t, after.TrainSet.Completed)
	assert.False(t, after.TrainSet.ErrorEncountered)
	assert.True(t, after.DevSet.Completed)
	assert.InDelta(t, 0.9, after.DevSet.Metrics["accuracy"], 1e-9)
	assert.InDelta(t, 0.85, after.DevSet.Metrics["macro_f1_score"], 1e-9)

	assert.Equal(t, []string{clsf.NotifyAtEmail}, fs.trainingFinished)
}

func TestProcessor_Training_Failure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	ft := &fakeTrainer{trainErr: errors.New("cuda out of memory")}
	p := setupProcessor(t, db, ft, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))

	err := p.Process(context.Background(), &queue.TrainingTask{ClassifierID: clsf.ID})
	require.Error(t, err)

	repo := repository.NewClassifierRepository(db)
	after, err := repo.GetByID(clsf.ID)
	require.NoError(t, err)

	// The failure is recorded on both sets and nothing is marked done.
	assert.True(t, after.TrainSet.ErrorEncountered)
	assert.True(t, after.DevSet.ErrorEncountered)
	assert.False(t, after.TrainSet.Completed)
	assert.False(t, after.DevSet.Completed)

	// No notification goes out for a failed run.
	assert.Empty(t, fs.trainingFinished)
}

func TestProcessor_Training_NotificationFailureKeepsResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{sendErr: errors.New("smtp: connection refused")}
	ft := &fakeTrainer{metrics: map[string]float64{"accuracy": 0.9}}
	p := setupProcessor(t, db, ft, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))

	// A dead mail server must not fail the job or lose the outcome.
	err := p.Process(context.Background(), &queue.TrainingTask{ClassifierID: clsf.ID})
	require.NoError(t, err)

	repo := repository.NewClassifierRepository(db)
	after, err := repo.GetByID(clsf.ID)
	require.NoError(t, err)

	assert.True(t, after.TrainSet.Completed)
	assert.True(t, after.DevSet.Completed)
	assert.InDelta(t, 0.9, after.DevSet.Metrics["accuracy"], 1e-9)

	// Exactly one attempt; there is no retry.
	assert.Equal(t, []string{clsf.NotifyAtEmail}, fs.trainingFinished)
}

func TestProcessor_Training_AlreadyFinishedSkips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	p := setupProcessor(t, db, &fakeTrainer{metrics: map[string]float64{}}, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))
	clsf.TrainSet.Completed = true
	require.NoError(t, db.Save(clsf.TrainSet).Error)

	err := p.Process(context.Background(), &queue.TrainingTask{ClassifierID: clsf.ID})
	require.NoError(t, err)

	// A redelivered task is a no-op: no second notification.
	assert.Empty(t, fs.trainingFinished)
}

func TestProcessor_Prediction_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	p := setupProcessor(t, db, &fakeTrainer{}, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))
	ts := testutil.TestTestSet(t, db, clsf.ID)

	err := p.Process(context.Background(), &queue.PredictionTask{TestSetID: ts.ID})
	require.NoError(t, err)

	after, err := repository.NewTestSetRepository(db).GetByID(ts.ID)
	require.NoError(t, err)

	assert.True(t, after.InferenceCompleted)
	assert.False(t, after.ErrorEncountered)
	assert.Contains(t, after.PredictionsURL, "/predictions")

	assert.Equal(t, []string{ts.NotifyAtEmail}, fs.inferenceFinished)
}

func TestProcessor_Prediction_Failure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	ft := &fakeTrainer{predictErr: errors.New("model files corrupted")}
	p := setupProcessor(t, db, ft, &fakeModeler{}, fs)

	clsf := testutil.TestClassifier(t, db, testutil.WithTrainDevSets(t, db))
	ts := testutil.TestTestSet(t, db, clsf.ID)

	err := p.Process(context.Background(), &queue.PredictionTask{TestSetID: ts.ID})
	require.Error(t, err)

	after, err := repository.NewTestSetRepository(db).GetByID(ts.ID)
	require.NoError(t, err)

	assert.True(t, after.ErrorEncountered)
	assert.False(t, after.InferenceCompleted)
	assert.Empty(t, fs.inferenceFinished)
}

func TestProcessor_TopicModel_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	p := setupProcessor(t, db, &fakeTrainer{}, &fakeModeler{}, fs)

	tm := testutil.TestTopicModel(t, db)
	tmRepo := repository.NewTopicModelRepository(db)
	attached, err := tmRepo.AttachLDASet(tm.ID, "/tmp/keywords.csv", "/tmp/topics_by_doc.csv")
	require.NoError(t, err)

	err = p.Process(context.Background(), &queue.TopicModelTask{TopicModelID: tm.ID})
	require.NoError(t, err)

	set, err := tmRepo.GetLDASet(*attached.LDASetID)
	require.NoError(t, err)

	assert.True(t, set.LDACompleted)
	assert.False(t, set.ErrorEncountered)
	assert.Contains(t, set.PreviewURL, "/keywords")

	assert.Equal(t, []string{tm.NotifyAtEmail}, fs.topicModelFinished)
}

func TestProcessor_TopicModel_Failure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	fs := &fakeSender{}
	fm := &fakeModeler{trainErr: errors.New("mallet not found")}
	p := setupProcessor(t, db, &fakeTrainer{}, fm, fs)

	tm := testutil.TestTopicModel(t, db)
	tmRepo := repository.NewTopicModelRepository(db)
	attached, err := tmRepo.AttachLDASet(tm.ID, "/tmp/keywords.csv", "/tmp/topics_by_doc.csv")
	require.NoError(t, err)

	err = p.Process(context.Background(), &queue.TopicModelTask{TopicModelID: tm.ID})
	require.Error(t, err)

	set, err := tmRepo.GetLDASet(*attached.LDASetID)
	require.NoError(t, err)

	assert.True(t, set.ErrorEncountered)
	assert.False(t, set.LDACompleted)
	assert.Empty(t, fs.topicModelFinished)
}
