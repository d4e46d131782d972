package api

import (
	"github.com/gin-gonic/gin"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/api/handler"
	"github.com/framelab/train_go_server/internal/api/middleware"
)

type Router struct {
	classifierHandler *handler.ClassifierHandler
	topicModelHandler *handler.TopicModelHandler
	cfg               *config.Config
}

func NewRouter(
	classifierHandler *handler.ClassifierHandler,
	topicModelHandler *handler.TopicModelHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		classifierHandler: classifierHandler,
		topicModelHandler: topicModelHandler,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		classifiers := api.Group("/classifiers")
		{
			classifiers.POST("", r.classifierHandler.Create)
			classifiers.GET("", r.classifierHandler.List)
			classifiers.GET("/:id", r.classifierHandler.Get)
			classifiers.POST("/:id/training_set", r.classifierHandler.UploadTrainingSet)
			classifiers.POST("/:id/test_sets", r.classifierHandler.CreateTestSet)
			classifiers.GET("/:id/test_sets", r.classifierHandler.ListTestSets)
			classifiers.GET("/:id/test_sets/:test_set_id", r.classifierHandler.GetTestSet)
			classifiers.GET("/:id/test_sets/:test_set_id/predictions", r.classifierHandler.DownloadPredictions)
		}

		topicModels := api.Group("/topic_models")
		{
			topicModels.POST("", r.topicModelHandler.Create)
			topicModels.GET("", r.topicModelHandler.List)
			topicModels.GET("/:id", r.topicModelHandler.Get)
			topicModels.POST("/:id/training_file", r.topicModelHandler.UploadTrainingFile)
			topicModels.GET("/:id/keywords", r.topicModelHandler.DownloadKeywords)
		}
	}

	return engine
}
