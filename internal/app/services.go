package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/ingestion"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
	"github.com/aiig/deliverables-backend/internal/services"
)

type Services struct {
	Manager      services.ManagerService
	Project      services.ProjectService
	Deliverable  services.DeliverableService
	SummaryCache *services.SummaryCache
	Importer     *ingestion.Importer
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos) Services {
	log.Info("Wiring services...")

	summaryCache := services.NewSummaryCache(context.Background(), log)

	managerSvc := services.NewManagerService(db, log, reposet.Manager)
	projectSvc := services.NewProjectService(db, log, reposet.Project, reposet.Deliverable, managerSvc)
	deliverableSvc := services.NewDeliverableService(db, log, reposet.Deliverable, projectSvc, summaryCache)

	importer := ingestion.NewImporter(db, log, managerSvc, projectSvc, reposet.Deliverable, reposet.ImportRun)

	return Services{
		Manager:      managerSvc,
		Project:      projectSvc,
		Deliverable:  deliverableSvc,
		SummaryCache: summaryCache,
		Importer:     importer,
	}
}
