package tracker

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

// ManagerCounts carries per-manager aggregate counts for list/detail views.
type ManagerCounts struct {
	Projects     int64
	Deliverables int64
}

type ManagerRepo interface {
	Create(dbc dbctx.Context, managers []*domain.ProjectManager) ([]*domain.ProjectManager, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ProjectManager, error)
	GetByName(dbc dbctx.Context, name string) (*domain.ProjectManager, error)
	List(dbc dbctx.Context) ([]*domain.ProjectManager, error)
	Update(dbc dbctx.Context, manager *domain.ProjectManager) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	CountsByManagerIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]ManagerCounts, error)
}

type managerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManagerRepo(db *gorm.DB, baseLog *logger.Logger) ManagerRepo {
	return &managerRepo{db: db, log: baseLog.With("repo", "ManagerRepo")}
}

func (r *managerRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *managerRepo) Create(dbc dbctx.Context, managers []*domain.ProjectManager) ([]*domain.ProjectManager, error) {
	if len(managers) == 0 {
		return []*domain.ProjectManager{}, nil
	}
	if err := r.handle(dbc).Create(&managers).Error; err != nil {
		return nil, err
	}
	return managers, nil
}

func (r *managerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ProjectManager, error) {
	var row domain.ProjectManager
	err := r.handle(dbc).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *managerRepo) GetByName(dbc dbctx.Context, name string) (*domain.ProjectManager, error) {
	var row domain.ProjectManager
	err := r.handle(dbc).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *managerRepo) List(dbc dbctx.Context) ([]*domain.ProjectManager, error) {
	var rows []*domain.ProjectManager
	if err := r.handle(dbc).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *managerRepo) Update(dbc dbctx.Context, manager *domain.ProjectManager) error {
	return r.handle(dbc).Save(manager).Error
}

func (r *managerRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).Where("id IN ?", ids).Delete(&domain.ProjectManager{}).Error
}

func (r *managerRepo) CountsByManagerIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]ManagerCounts, error) {
	out := make(map[uuid.UUID]ManagerCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	type countRow struct {
		ManagerID uuid.UUID
		Cnt       int64
	}

	var projectCounts []countRow
	if err := r.handle(dbc).Model(&domain.Project{}).
		Select("manager_id, count(*) as cnt").
		Where("manager_id IN ?", ids).
		Group("manager_id").
		Scan(&projectCounts).Error; err != nil {
		return nil, err
	}
	for _, row := range projectCounts {
		c := out[row.ManagerID]
		c.Projects = row.Cnt
		out[row.ManagerID] = c
	}

	var deliverableCounts []countRow
	if err := r.handle(dbc).Model(&domain.Deliverable{}).
		Select("projects.manager_id as manager_id, count(*) as cnt").
		Joins("JOIN projects ON projects.id = deliverables.project_id AND projects.deleted_at IS NULL").
		Where("projects.manager_id IN ?", ids).
		Group("projects.manager_id").
		Scan(&deliverableCounts).Error; err != nil {
		return nil, err
	}
	for _, row := range deliverableCounts {
		c := out[row.ManagerID]
		c.Deliverables = row.Cnt
		out[row.ManagerID] = c
	}

	return out, nil
}
