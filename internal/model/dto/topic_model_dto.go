package dto

import "github.com/framelab/train_go_server/internal/model"

type CreateTopicModelRequest struct {
	Name          string `json:"name" binding:"required"`
	NumTopics     int    `json:"num_topics"`
	NotifyAtEmail string `json:"notify_at_email" binding:"required,email"`
}

type TopicModelResponse struct {
	TopicModelID     int64                `json:"topic_model_id"`
	Name             string               `json:"name"`
	NumTopics        int                  `json:"num_topics"`
	TrainingStatus   model.TrainingStatus `json:"training_status"`
	ErrorEncountered bool                 `json:"error_encountered"`
	PreviewURL       string               `json:"preview_url,omitempty"`
}

func NewTopicModelResponse(tm *model.TopicModel) *TopicModelResponse {
	resp := &TopicModelResponse{
		TopicModelID:   tm.ID,
		Name:           tm.Name,
		NumTopics:      tm.NumTopics,
		TrainingStatus: tm.TrainingStatus(),
	}
	if tm.LDASet != nil {
		resp.ErrorEncountered = tm.LDASet.ErrorEncountered
		resp.PreviewURL = tm.LDASet.PreviewURL
	}
	return resp
}
