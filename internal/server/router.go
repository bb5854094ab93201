package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aiig/deliverables-backend/internal/http/handlers"
)

type RouterConfig struct {
	CORSOrigins []string

	HealthHandler      *handlers.HealthHandler
	ManagerHandler     *handlers.ManagerHandler
	ProjectHandler     *handlers.ProjectHandler
	DeliverableHandler *handlers.DeliverableHandler
	UploadHandler      *handlers.UploadHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api/v1")
	{
		managers := api.Group("/managers")
		{
			managers.GET("", cfg.ManagerHandler.List)
			managers.GET("/:id", cfg.ManagerHandler.Get)
			managers.POST("", cfg.ManagerHandler.Create)
			managers.PUT("/:id", cfg.ManagerHandler.Update)
			managers.DELETE("/:id", cfg.ManagerHandler.Delete)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", cfg.ProjectHandler.List)
			projects.GET("/search", cfg.ProjectHandler.Search)
			projects.GET("/:id", cfg.ProjectHandler.Get)
			projects.GET("/:id/deliverables", cfg.ProjectHandler.ListDeliverables)
			projects.POST("", cfg.ProjectHandler.Create)
			projects.PUT("/:id", cfg.ProjectHandler.Update)
			projects.DELETE("/:id", cfg.ProjectHandler.Delete)
		}

		deliverables := api.Group("/deliverables")
		{
			deliverables.GET("", cfg.DeliverableHandler.List)
			deliverables.GET("/upcoming", cfg.DeliverableHandler.Upcoming)
			deliverables.GET("/overdue", cfg.DeliverableHandler.Overdue)
			deliverables.GET("/summary", cfg.DeliverableHandler.Summary)
			deliverables.POST("/filter", cfg.DeliverableHandler.Filter)
			deliverables.GET("/:id", cfg.DeliverableHandler.Get)
			deliverables.POST("", cfg.DeliverableHandler.Create)
			deliverables.PUT("/:id", cfg.DeliverableHandler.Update)
			deliverables.POST("/:id/complete", cfg.DeliverableHandler.Complete)
			deliverables.DELETE("/:id", cfg.DeliverableHandler.Delete)
		}

		upload := api.Group("/upload")
		{
			upload.POST("/preview", cfg.UploadHandler.Preview)
			upload.POST("/import", cfg.UploadHandler.Import)
			upload.GET("/runs", cfg.UploadHandler.Runs)
			upload.GET("/template", cfg.UploadHandler.Template)
		}
	}

	return router
}
