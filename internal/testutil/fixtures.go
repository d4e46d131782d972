package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/framelab/train_go_server/internal/model"
)

// TestClassifier creates a classifier row for tests.
func TestClassifier(t *testing.T, db *gorm.DB, opts ...func(*model.Classifier)) *model.Classifier {
	t.Helper()

	clsf := &model.Classifier{
		Name:              fmt.Sprintf("classifier_%d", time.Now().UnixNano()%100000),
		CategoryNames:     model.StringArray{"pos", "neg"},
		NotifyAtEmail:     "owner@example.com",
		TrainedByPlatform: true,
	}

	for _, opt := range opts {
		opt(clsf)
	}

	if err := db.Create(clsf).Error; err != nil {
		t.Fatalf("Failed to create test classifier: %v", err)
	}

	return clsf
}

// WithCategories sets the declared category names.
func WithCategories(names ...string) func(*model.Classifier) {
	return func(c *model.Classifier) {
		c.CategoryNames = names
	}
}

// WithTrainDevSets attaches fresh train/dev labeled sets.
func WithTrainDevSets(t *testing.T, db *gorm.DB) func(*model.Classifier) {
	return func(c *model.Classifier) {
		trainSet := &model.LabeledSet{}
		devSet := &model.LabeledSet{}
		if err := db.Create(trainSet).Error; err != nil {
			t.Fatalf("Failed to create train set: %v", err)
		}
		if err := db.Create(devSet).Error; err != nil {
			t.Fatalf("Failed to create dev set: %v", err)
		}
		c.TrainSetID = &trainSet.ID
		c.DevSetID = &devSet.ID
		c.TrainSet = trainSet
		c.DevSet = devSet
	}
}

// TestTopicModel creates a topic model row for tests.
func TestTopicModel(t *testing.T, db *gorm.DB, opts ...func(*model.TopicModel)) *model.TopicModel {
	t.Helper()

	tm := &model.TopicModel{
		Name:          fmt.Sprintf("topic_model_%d", time.Now().UnixNano()%100000),
		NumTopics:     10,
		NotifyAtEmail: "owner@example.com",
	}

	for _, opt := range opts {
		opt(tm)
	}

	if err := db.Create(tm).Error; err != nil {
		t.Fatalf("Failed to create test topic model: %v", err)
	}

	return tm
}

// TestTestSet creates a test set row for tests.
func TestTestSet(t *testing.T, db *gorm.DB, classifierID int64, opts ...func(*model.TestSet)) *model.TestSet {
	t.Helper()

	ts := &model.TestSet{
		ClassifierID:   classifierID,
		Name:           "batch",
		NotifyAtEmail:  "owner@example.com",
		InferenceBegan: true,
	}

	for _, opt := range opts {
		opt(ts)
	}

	if err := db.Create(ts).Error; err != nil {
		t.Fatalf("Failed to create test set: %v", err)
	}

	return ts
}
