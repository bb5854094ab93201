package tracker

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

// ProjectStats carries per-project deliverable aggregates for list/detail views.
type ProjectStats struct {
	Total         int64
	Pending       int64
	Overdue       int64
	Upcoming7Days int64
}

type ProjectRepo interface {
	Create(dbc dbctx.Context, projects []*domain.Project) ([]*domain.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Project, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Project, error)
	List(dbc dbctx.Context) ([]*domain.Project, error)
	Search(dbc dbctx.Context, query string, limit int) ([]*domain.Project, error)
	Update(dbc dbctx.Context, project *domain.Project) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	StatsByProjectIDs(dbc dbctx.Context, ids []uuid.UUID, today time.Time) (map[uuid.UUID]ProjectStats, error)
	DeliverableCountsByProjectIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *projectRepo) Create(dbc dbctx.Context, projects []*domain.Project) ([]*domain.Project, error) {
	if len(projects) == 0 {
		return []*domain.Project{}, nil
	}
	if err := r.handle(dbc).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Project, error) {
	var row domain.Project
	err := r.handle(dbc).Preload("Manager").Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *projectRepo) GetByName(dbc dbctx.Context, name string) (*domain.Project, error) {
	var row domain.Project
	err := r.handle(dbc).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *projectRepo) List(dbc dbctx.Context) ([]*domain.Project, error) {
	var rows []*domain.Project
	if err := r.handle(dbc).Preload("Manager").Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches project names case-insensitively on a partial string.
func (r *projectRepo) Search(dbc dbctx.Context, query string, limit int) ([]*domain.Project, error) {
	var rows []*domain.Project
	if err := r.handle(dbc).Preload("Manager").
		Where("name ILIKE ?", "%"+query+"%").
		Order("name").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *projectRepo) Update(dbc dbctx.Context, project *domain.Project) error {
	return r.handle(dbc).Save(project).Error
}

func (r *projectRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).Where("id IN ?", ids).Delete(&domain.Project{}).Error
}

func (r *projectRepo) StatsByProjectIDs(dbc dbctx.Context, ids []uuid.UUID, today time.Time) (map[uuid.UUID]ProjectStats, error) {
	out := make(map[uuid.UUID]ProjectStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	weekFromNow := today.AddDate(0, 0, 7)

	type statsRow struct {
		ProjectID uuid.UUID
		Total     int64
		Pending   int64
		Overdue   int64
		Upcoming  int64
	}
	var rows []statsRow
	if err := r.handle(dbc).Model(&domain.Deliverable{}).
		Select(`project_id,
			count(*) as total,
			count(case when status = ? then 1 end) as pending,
			count(case when status <> ? and due_date < ? then 1 end) as overdue,
			count(case when status <> ? and due_date >= ? and due_date <= ? then 1 end) as upcoming`,
			domain.StatusPending,
			domain.StatusCompleted, today,
			domain.StatusCompleted, today, weekFromNow).
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ProjectID] = ProjectStats{
			Total:         row.Total,
			Pending:       row.Pending,
			Overdue:       row.Overdue,
			Upcoming7Days: row.Upcoming,
		}
	}
	return out, nil
}

func (r *projectRepo) DeliverableCountsByProjectIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	type countRow struct {
		ProjectID uuid.UUID
		Cnt       int64
	}
	var rows []countRow
	if err := r.handle(dbc).Model(&domain.Deliverable{}).
		Select("project_id, count(*) as cnt").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProjectID] = row.Cnt
	}
	return out, nil
}
