package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/pkg/queue"
	"github.com/framelab/train_go_server/internal/pkg/response"
	"github.com/framelab/train_go_server/internal/repository"
	"github.com/framelab/train_go_server/internal/service"
	"github.com/framelab/train_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testContext struct {
	DB    *gorm.DB
	Queue *recordingQueue
}

type recordingQueue struct {
	tasks []queue.TaskMessage
}

func (r *recordingQueue) Push(_ context.Context, task queue.TaskMessage) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func setupClassifierHandler(t *testing.T) (*ClassifierHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rq := &recordingQueue{}

	cfg := &config.Config{
		Dataset: config.DatasetConfig{DevSplit: 0.2},
		Upload:  config.UploadConfig{DataDir: t.TempDir()},
	}

	classifierService := service.NewClassifierService(
		repository.NewClassifierRepository(db),
		repository.NewTestSetRepository(db),
		rq,
		cfg,
	)
	handler := NewClassifierHandler(classifierService)

	ctx := &testContext{DB: db, Queue: rq}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, ctx, cleanup
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestClassifierHandler_Create_Success(t *testing.T) {
	handler, _, cleanup := setupClassifierHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/classifiers", handler.Create)

	body := `{"name":"sentiment","category_names":["pos","neg"],"notify_at_email":"owner@example.com"}`
	req := httptest.NewRequest("POST", "/classifiers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sentiment", data["name"])
	assert.Equal(t, "not_begun", data["training_status"])
}

func TestClassifierHandler_Create_SingleCategory(t *testing.T) {
	handler, _, cleanup := setupClassifierHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/classifiers", handler.Create)

	body := `{"name":"lonely","category_names":["only"],"notify_at_email":"owner@example.com"}`
	req := httptest.NewRequest("POST", "/classifiers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestClassifierHandler_Get_NotFound(t *testing.T) {
	handler, _, cleanup := setupClassifierHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/classifiers/:id", handler.Get)

	req := httptest.NewRequest("GET", "/classifiers/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestClassifierHandler_UploadTrainingSet_Success(t *testing.T) {
	handler, ctx, cleanup := setupClassifierHandler(t)
	defer cleanup()

	clsf := testutil.TestClassifier(t, ctx.DB)

	router := gin.New()
	router.POST("/classifiers/:id/training_set", handler.UploadTrainingSet)

	var csv strings.Builder
	csv.WriteString("example,category\n")
	for i := 0; i < 10; i++ {
		csv.WriteString("great stuff,pos\n")
		csv.WriteString("awful stuff,neg\n")
	}
	buf, contentType := multipartCSV(t, csv.String())

	req := httptest.NewRequest("POST", fmt.Sprintf("/classifiers/%d/training_set", clsf.ID), buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "training", data["training_status"])

	require.Len(t, ctx.Queue.tasks, 1)
	task, ok := ctx.Queue.tasks[0].(*queue.TrainingTask)
	require.True(t, ok)
	assert.Equal(t, clsf.ID, task.ClassifierID)
}

func TestClassifierHandler_UploadTrainingSet_SecondUploadForbidden(t *testing.T) {
	handler, ctx, cleanup := setupClassifierHandler(t)
	defer cleanup()

	testutil.TestClassifier(t, ctx.DB)

	router := gin.New()
	router.POST("/classifiers/:id/training_set", handler.UploadTrainingSet)

	var csv strings.Builder
	csv.WriteString("example,category\n")
	for i := 0; i < 10; i++ {
		csv.WriteString("great stuff,pos\n")
		csv.WriteString("awful stuff,neg\n")
	}

	buf, contentType := multipartCSV(t, csv.String())
	req := httptest.NewRequest("POST", "/classifiers/1/training_set", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	buf, contentType = multipartCSV(t, csv.String())
	req = httptest.NewRequest("POST", "/classifiers/1/training_set", buf)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.CodeAlreadyExists, resp.Code)
	assert.Len(t, ctx.Queue.tasks, 1)
}

func TestClassifierHandler_UploadTrainingSet_BadSchema(t *testing.T) {
	handler, ctx, cleanup := setupClassifierHandler(t)
	defer cleanup()

	testutil.TestClassifier(t, ctx.DB)

	router := gin.New()
	router.POST("/classifiers/:id/training_set", handler.UploadTrainingSet)

	buf, contentType := multipartCSV(t, "wrong,header\nfoo,bar\n")
	req := httptest.NewRequest("POST", "/classifiers/1/training_set", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, response.CodeUnprocessable, resp.Code)
	assert.Empty(t, ctx.Queue.tasks)
}
