package app

import (
	"github.com/gin-gonic/gin"

	"github.com/aiig/deliverables-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		CORSOrigins:        cfg.CORSOrigins,
		HealthHandler:      handlerset.Health,
		ManagerHandler:     handlerset.Manager,
		ProjectHandler:     handlerset.Project,
		DeliverableHandler: handlerset.Deliverable,
		UploadHandler:      handlerset.Upload,
	})
}
