// Package files defines the on-disk layout of per-resource working
// directories. Everything is namespaced by resource id so concurrent
// jobs for different resources never touch the same paths.
package files

import (
	"fmt"
	"os"
	"path/filepath"
)

type Layout struct {
	dataDir string
}

func NewLayout(dataDir string) *Layout {
	return &Layout{dataDir: dataDir}
}

func (l *Layout) ClassifierDir(classifierID int64) string {
	return filepath.Join(l.dataDir, "classifiers", fmt.Sprintf("%d", classifierID))
}

func (l *Layout) TrainFile(classifierID int64) string {
	return filepath.Join(l.ClassifierDir(classifierID), "train.csv")
}

func (l *Layout) DevFile(classifierID int64) string {
	return filepath.Join(l.ClassifierDir(classifierID), "dev.csv")
}

func (l *Layout) ClassifierOutputDir(classifierID int64) string {
	return filepath.Join(l.ClassifierDir(classifierID), "trained_model")
}

func (l *Layout) TestSetFile(classifierID, testSetID int64) string {
	return filepath.Join(l.ClassifierDir(classifierID), "test_sets", fmt.Sprintf("%d.csv", testSetID))
}

func (l *Layout) TestSetOutputFile(classifierID, testSetID int64) string {
	return filepath.Join(l.ClassifierDir(classifierID), "test_sets", fmt.Sprintf("%d_predictions.csv", testSetID))
}

func (l *Layout) TopicModelDir(topicModelID int64) string {
	return filepath.Join(l.dataDir, "topic_models", fmt.Sprintf("%d", topicModelID))
}

func (l *Layout) TopicModelTrainingFile(topicModelID int64) string {
	return filepath.Join(l.TopicModelDir(topicModelID), "training.csv")
}

func (l *Layout) TopicModelKeywordsFile(topicModelID int64) string {
	return filepath.Join(l.TopicModelDir(topicModelID), "keywords.csv")
}

func (l *Layout) TopicModelTopicsByDocFile(topicModelID int64) string {
	return filepath.Join(l.TopicModelDir(topicModelID), "topics_by_doc.csv")
}

// EnsureDir creates a directory (and parents) if missing.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
