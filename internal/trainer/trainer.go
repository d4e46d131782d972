// Package trainer wraps the model-training routines the workers
// invoke. The routines themselves (transformers fine-tuning, Mallet
// LDA) are external programs consumed through these narrow interfaces;
// their numerics are not this codebase's business.
package trainer

import "context"

// TrainRequest carries everything classifier training needs.
type TrainRequest struct {
	Labels         []string
	ModelPath      string
	TrainFile      string
	DevFile        string
	CacheDir       string
	OutputDir      string
	NumTrainEpochs int
}

// PredictRequest carries everything a prediction run needs.
type PredictRequest struct {
	Labels     []string
	ModelPath  string
	CacheDir   string
	TestFile   string
	OutputFile string
}

// ClassifierTrainer is the opaque classifier routine. Any error is
// terminal for the job: the executor records it and never retries.
type ClassifierTrainer interface {
	// TrainAndEvaluate trains on the train file, evaluates on the dev
	// file, and returns the dev metrics (accuracy, f1, ...).
	TrainAndEvaluate(ctx context.Context, req TrainRequest) (map[string]float64, error)

	// Predict labels the test file and writes the predictions CSV.
	Predict(ctx context.Context, req PredictRequest) error
}

// TopicModelRequest carries everything LDA training needs.
type TopicModelRequest struct {
	TrainingFile       string
	ContentColumn      string
	IDColumn           string
	MalletBinDirectory string
	Iterations         int
	NumTopics          int
	KeywordsFile       string
	TopicsByDocFile    string
}

// TopicModeler is the opaque topic-model routine. On success the
// keyword and per-document topic files named in the request exist.
type TopicModeler interface {
	Train(ctx context.Context, req TopicModelRequest) error
}
