package app

import (
	httpH "github.com/aiig/deliverables-backend/internal/http/handlers"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Manager     *httpH.ManagerHandler
	Project     *httpH.ProjectHandler
	Deliverable *httpH.DeliverableHandler
	Upload      *httpH.UploadHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Manager:     httpH.NewManagerHandler(log, serviceset.Manager),
		Project:     httpH.NewProjectHandler(log, serviceset.Project, serviceset.Deliverable),
		Deliverable: httpH.NewDeliverableHandler(log, serviceset.Deliverable),
		Upload:      httpH.NewUploadHandler(log, serviceset.Importer, cfg.MaxUploadBytes()),
	}
}
