package repos

import (
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos/tracker"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type ManagerRepo = tracker.ManagerRepo
type ProjectRepo = tracker.ProjectRepo
type DeliverableRepo = tracker.DeliverableRepo
type ImportRunRepo = tracker.ImportRunRepo

type ManagerCounts = tracker.ManagerCounts
type ProjectStats = tracker.ProjectStats

func NewManagerRepo(db *gorm.DB, log *logger.Logger) ManagerRepo {
	return tracker.NewManagerRepo(db, log)
}

func NewProjectRepo(db *gorm.DB, log *logger.Logger) ProjectRepo {
	return tracker.NewProjectRepo(db, log)
}

func NewDeliverableRepo(db *gorm.DB, log *logger.Logger) DeliverableRepo {
	return tracker.NewDeliverableRepo(db, log)
}

func NewImportRunRepo(db *gorm.DB, log *logger.Logger) ImportRunRepo {
	return tracker.NewImportRunRepo(db, log)
}
