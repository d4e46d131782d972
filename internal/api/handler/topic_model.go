package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/framelab/train_go_server/internal/model/dto"
	"github.com/framelab/train_go_server/internal/pkg/response"
	"github.com/framelab/train_go_server/internal/service"
)

type TopicModelHandler struct {
	topicModelService *service.TopicModelService
}

func NewTopicModelHandler(topicModelService *service.TopicModelService) *TopicModelHandler {
	return &TopicModelHandler{
		topicModelService: topicModelService,
	}
}

// Create registers a topic model
// POST /api/v1/topic_models
func (h *TopicModelHandler) Create(c *gin.Context) {
	var req dto.CreateTopicModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.topicModelService.Create(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// List lists all topic models
// GET /api/v1/topic_models
func (h *TopicModelHandler) List(c *gin.Context) {
	items, err := h.topicModelService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Get returns one topic model with its projected training status
// GET /api/v1/topic_models/:id
func (h *TopicModelHandler) Get(c *gin.Context) {
	topicModelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid topic model id")
		return
	}

	resp, err := h.topicModelService.Get(topicModelID)
	if err != nil {
		if errors.Is(err, service.ErrTopicModelNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// UploadTrainingFile accepts the corpus CSV and schedules LDA training
// POST /api/v1/topic_models/:id/training_file
func (h *TopicModelHandler) UploadTrainingFile(c *gin.Context) {
	topicModelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid topic model id")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "missing file upload")
		return
	}
	defer file.Close()

	resp, err := h.topicModelService.UploadTrainingFile(c.Request.Context(), topicModelID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicModelNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrLDAAlreadyBegun):
			response.AlreadyExistsError(c, err.Error())
		case errors.Is(err, service.ErrBadCorpus):
			response.UnprocessableError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// DownloadKeywords streams the per-topic keyword sheet
// GET /api/v1/topic_models/:id/keywords
func (h *TopicModelHandler) DownloadKeywords(c *gin.Context) {
	topicModelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid topic model id")
		return
	}

	path, err := h.topicModelService.KeywordsFile(topicModelID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicModelNotFound),
			errors.Is(err, service.ErrTopicsNotReady):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.FileAttachment(path, "keywords.csv")
}
