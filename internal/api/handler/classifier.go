package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/framelab/train_go_server/internal/dataset"
	"github.com/framelab/train_go_server/internal/model/dto"
	"github.com/framelab/train_go_server/internal/pkg/response"
	"github.com/framelab/train_go_server/internal/service"
)

type ClassifierHandler struct {
	classifierService *service.ClassifierService
}

func NewClassifierHandler(classifierService *service.ClassifierService) *ClassifierHandler {
	return &ClassifierHandler{
		classifierService: classifierService,
	}
}

// Create registers a classifier
// POST /api/v1/classifiers
func (h *ClassifierHandler) Create(c *gin.Context) {
	var req dto.CreateClassifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.classifierService.Create(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooFewCategories),
			errors.Is(err, service.ErrInvalidCategoryName):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// List lists all classifiers
// GET /api/v1/classifiers
func (h *ClassifierHandler) List(c *gin.Context) {
	items, err := h.classifierService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Get returns one classifier with its projected training status
// GET /api/v1/classifiers/:id
func (h *ClassifierHandler) Get(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}

	resp, err := h.classifierService.Get(classifierID)
	if err != nil {
		if errors.Is(err, service.ErrClassifierNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// UploadTrainingSet accepts the labelled CSV and schedules training
// POST /api/v1/classifiers/:id/training_set
func (h *ClassifierHandler) UploadTrainingSet(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "missing file upload")
		return
	}
	defer file.Close()

	resp, err := h.classifierService.UploadTrainingSet(c.Request.Context(), classifierID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassifierNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrTrainingAlreadyBegun):
			response.AlreadyExistsError(c, err.Error())
		case errors.Is(err, dataset.ErrBadSchema),
			errors.Is(err, dataset.ErrTooFewRows),
			errors.Is(err, dataset.ErrCategoryMismatch):
			response.UnprocessableError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// CreateTestSet accepts an unlabeled CSV and schedules inference
// POST /api/v1/classifiers/:id/test_sets
func (h *ClassifierHandler) CreateTestSet(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}

	req := dto.CreateTestSetRequest{
		Name:          c.PostForm("test_set_name"),
		NotifyAtEmail: c.PostForm("notify_at_email"),
	}
	if req.Name == "" || req.NotifyAtEmail == "" {
		response.ParamError(c, "test_set_name and notify_at_email are required")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "missing file upload")
		return
	}
	defer file.Close()

	resp, err := h.classifierService.CreateTestSet(c.Request.Context(), classifierID, &req, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassifierNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotTrained),
			errors.Is(err, dataset.ErrBadTestSchema):
			response.UnprocessableError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ListTestSets lists a classifier's test sets
// GET /api/v1/classifiers/:id/test_sets
func (h *ClassifierHandler) ListTestSets(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}

	items, err := h.classifierService.ListTestSets(classifierID)
	if err != nil {
		if errors.Is(err, service.ErrClassifierNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, items)
}

// GetTestSet returns one test set with its projected inference status
// GET /api/v1/classifiers/:id/test_sets/:test_set_id
func (h *ClassifierHandler) GetTestSet(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}
	testSetID, err := strconv.ParseInt(c.Param("test_set_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid test set id")
		return
	}

	resp, err := h.classifierService.GetTestSet(classifierID, testSetID)
	if err != nil {
		if errors.Is(err, service.ErrTestSetNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// DownloadPredictions streams the finished predictions CSV
// GET /api/v1/classifiers/:id/test_sets/:test_set_id/predictions
func (h *ClassifierHandler) DownloadPredictions(c *gin.Context) {
	classifierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid classifier id")
		return
	}
	testSetID, err := strconv.ParseInt(c.Param("test_set_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid test set id")
		return
	}

	path, err := h.classifierService.PredictionsFile(classifierID, testSetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestSetNotFound),
			errors.Is(err, service.ErrPredictionsNotReady):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.FileAttachment(path, "predictions.csv")
}
