package model

// TrainingStatus is the externally visible lifecycle of a trainable
// resource. It is projected from persisted record state; there is no
// separately stored status column to drift out of sync.
type TrainingStatus string

const (
	StatusNotBegun  TrainingStatus = "not_begun"
	StatusTraining  TrainingStatus = "training"
	StatusCompleted TrainingStatus = "completed"
)

// TrainingStatus projects the classifier's training lifecycle from its
// train set. Expects TrainSet to be preloaded when TrainSetID is set.
func (c *Classifier) TrainingStatus() TrainingStatus {
	if c.TrainSetID == nil {
		return StatusNotBegun
	}
	if c.TrainSet != nil && c.TrainSet.Completed {
		return StatusCompleted
	}
	return StatusTraining
}

// TrainingStatus projects the topic model's lifecycle from its LDA set.
func (t *TopicModel) TrainingStatus() TrainingStatus {
	if t.LDASetID == nil {
		return StatusNotBegun
	}
	if t.LDASet != nil && t.LDASet.LDACompleted {
		return StatusCompleted
	}
	return StatusTraining
}

// InferenceStatus is the test-set equivalent of TrainingStatus.
type InferenceStatus string

const (
	InferenceNotBegun   InferenceStatus = "not_begun"
	InferencePredicting InferenceStatus = "predicting"
	InferenceCompleted  InferenceStatus = "completed"
)

func (ts *TestSet) Status() InferenceStatus {
	if !ts.InferenceBegan {
		return InferenceNotBegun
	}
	if ts.InferenceCompleted {
		return InferenceCompleted
	}
	return InferencePredicting
}
