package dto

import "github.com/framelab/train_go_server/internal/model"

type CreateClassifierRequest struct {
	Name          string   `json:"name" binding:"required"`
	CategoryNames []string `json:"category_names" binding:"required"`
	NotifyAtEmail string   `json:"notify_at_email" binding:"required,email"`
}

// ClassifierResponse is the API shape of a classifier, with the
// training status projected rather than stored.
type ClassifierResponse struct {
	ClassifierID      int64                `json:"classifier_id"`
	Name              string               `json:"name"`
	TrainedByPlatform bool                 `json:"trained_by_platform"`
	CategoryNames     []string             `json:"category_names"`
	TrainingStatus    model.TrainingStatus `json:"training_status"`
	ErrorEncountered  bool                 `json:"error_encountered"`
	Metrics           map[string]float64   `json:"metrics,omitempty"`
}

func NewClassifierResponse(clsf *model.Classifier) *ClassifierResponse {
	resp := &ClassifierResponse{
		ClassifierID:      clsf.ID,
		Name:              clsf.Name,
		TrainedByPlatform: clsf.TrainedByPlatform,
		CategoryNames:     clsf.CategoryNames,
		TrainingStatus:    clsf.TrainingStatus(),
	}
	if clsf.TrainSet != nil {
		resp.ErrorEncountered = clsf.TrainSet.ErrorEncountered
	}
	if clsf.DevSet != nil && clsf.DevSet.Metrics != nil {
		resp.Metrics = clsf.DevSet.Metrics
	}
	return resp
}

type CreateTestSetRequest struct {
	Name          string `json:"name" binding:"required"`
	NotifyAtEmail string `json:"notify_at_email" binding:"required,email"`
}

type TestSetResponse struct {
	TestSetID        int64                 `json:"test_set_id"`
	ClassifierID     int64                 `json:"classifier_id"`
	Name             string                `json:"name"`
	Status           model.InferenceStatus `json:"status"`
	ErrorEncountered bool                  `json:"error_encountered"`
	PredictionsURL   string                `json:"predictions_url,omitempty"`
}

func NewTestSetResponse(ts *model.TestSet) *TestSetResponse {
	return &TestSetResponse{
		TestSetID:        ts.ID,
		ClassifierID:     ts.ClassifierID,
		Name:             ts.Name,
		Status:           ts.Status(),
		ErrorEncountered: ts.ErrorEncountered,
		PredictionsURL:   ts.PredictionsURL,
	}
}
