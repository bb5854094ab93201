package app

import (
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type Repos struct {
	Manager     repos.ManagerRepo
	Project     repos.ProjectRepo
	Deliverable repos.DeliverableRepo
	ImportRun   repos.ImportRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Manager:     repos.NewManagerRepo(db, log),
		Project:     repos.NewProjectRepo(db, log),
		Deliverable: repos.NewDeliverableRepo(db, log),
		ImportRun:   repos.NewImportRunRepo(db, log),
	}
}
