package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_TrainingStatus(t *testing.T) {
	t.Run("no train set means not begun", func(t *testing.T) {
		clsf := &Classifier{}
		assert.Equal(t, StatusNotBegun, clsf.TrainingStatus())
	})

	t.Run("train set exists but incomplete means training", func(t *testing.T) {
		id := int64(1)
		clsf := &Classifier{
			TrainSetID: &id,
			TrainSet:   &LabeledSet{ID: id},
		}
		assert.Equal(t, StatusTraining, clsf.TrainingStatus())
	})

	t.Run("errored train set still reads as training", func(t *testing.T) {
		// The three-value status hides error_encountered; callers that
		// need it read the flag off the record itself.
		id := int64(1)
		clsf := &Classifier{
			TrainSetID: &id,
			TrainSet:   &LabeledSet{ID: id, ErrorEncountered: true},
		}
		assert.Equal(t, StatusTraining, clsf.TrainingStatus())
	})

	t.Run("completed train set means completed", func(t *testing.T) {
		id := int64(1)
		clsf := &Classifier{
			TrainSetID: &id,
			TrainSet:   &LabeledSet{ID: id, Completed: true},
		}
		assert.Equal(t, StatusCompleted, clsf.TrainingStatus())
	})

	t.Run("projection is idempotent", func(t *testing.T) {
		id := int64(7)
		clsf := &Classifier{
			TrainSetID: &id,
			TrainSet:   &LabeledSet{ID: id, Completed: true},
		}
		first := clsf.TrainingStatus()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, clsf.TrainingStatus())
		}
	})
}

func TestTopicModel_TrainingStatus(t *testing.T) {
	id := int64(3)

	assert.Equal(t, StatusNotBegun, (&TopicModel{}).TrainingStatus())
	assert.Equal(t, StatusTraining, (&TopicModel{LDASetID: &id, LDASet: &LDASet{ID: id}}).TrainingStatus())
	assert.Equal(t, StatusCompleted, (&TopicModel{LDASetID: &id, LDASet: &LDASet{ID: id, LDACompleted: true}}).TrainingStatus())
}

func TestTestSet_Status(t *testing.T) {
	assert.Equal(t, InferenceNotBegun, (&TestSet{}).Status())
	assert.Equal(t, InferencePredicting, (&TestSet{InferenceBegan: true}).Status())
	assert.Equal(t, InferenceCompleted, (&TestSet{InferenceBegan: true, InferenceCompleted: true}).Status())
}
