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

type DeliverableRepo interface {
	Create(dbc dbctx.Context, deliverables []*domain.Deliverable) ([]*domain.Deliverable, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Deliverable, error)
	List(dbc dbctx.Context, includeCompleted bool) ([]*domain.Deliverable, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, includeCompleted bool, limit int) ([]*domain.Deliverable, error)
	ListUpcoming(dbc dbctx.Context, from, to time.Time, projectID, managerID *uuid.UUID, includeOverdue bool) ([]*domain.Deliverable, error)
	ListOverdue(dbc dbctx.Context, before time.Time, projectID, managerID *uuid.UUID) ([]*domain.Deliverable, error)
	Filter(dbc dbctx.Context, f domain.DeliverableFilter) ([]*domain.Deliverable, error)
	FindDuplicate(dbc dbctx.Context, projectID uuid.UUID, dueDate time.Time, frequency domain.Frequency, description string) (*domain.Deliverable, error)
	Update(dbc dbctx.Context, deliverable *domain.Deliverable) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	SoftDeleteByProjectIDs(dbc dbctx.Context, projectIDs []uuid.UUID) error
	Summary(dbc dbctx.Context, today time.Time, projectID, managerID *uuid.UUID) (*domain.DeliverableSummary, error)
}

type deliverableRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeliverableRepo(db *gorm.DB, baseLog *logger.Logger) DeliverableRepo {
	return &deliverableRepo{db: db, log: baseLog.With("repo", "DeliverableRepo")}
}

func (r *deliverableRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *deliverableRepo) withProject(q *gorm.DB) *gorm.DB {
	return q.Preload("Project").Preload("Project.Manager")
}

// joinManager narrows a deliverable query to projects owned by one manager.
func joinManager(q *gorm.DB, managerID uuid.UUID) *gorm.DB {
	return q.Joins("JOIN projects ON projects.id = deliverables.project_id AND projects.deleted_at IS NULL").
		Where("projects.manager_id = ?", managerID)
}

func (r *deliverableRepo) Create(dbc dbctx.Context, deliverables []*domain.Deliverable) ([]*domain.Deliverable, error) {
	if len(deliverables) == 0 {
		return []*domain.Deliverable{}, nil
	}
	if err := r.handle(dbc).Create(&deliverables).Error; err != nil {
		return nil, err
	}
	return deliverables, nil
}

func (r *deliverableRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Deliverable, error) {
	var row domain.Deliverable
	err := r.withProject(r.handle(dbc)).Where("deliverables.id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *deliverableRepo) List(dbc dbctx.Context, includeCompleted bool) ([]*domain.Deliverable, error) {
	q := r.withProject(r.handle(dbc))
	if !includeCompleted {
		q = q.Where("status <> ?", domain.StatusCompleted)
	}
	var rows []*domain.Deliverable
	if err := q.Order("due_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *deliverableRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, includeCompleted bool, limit int) ([]*domain.Deliverable, error) {
	q := r.withProject(r.handle(dbc)).Where("project_id = ?", projectID)
	if !includeCompleted {
		q = q.Where("status <> ?", domain.StatusCompleted)
	}
	q = q.Order("due_date")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*domain.Deliverable
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUpcoming returns non-completed deliverables due inside [from, to].
// With includeOverdue and a project filter, rows already past due are kept
// so the project view shows everything still owed.
func (r *deliverableRepo) ListUpcoming(dbc dbctx.Context, from, to time.Time, projectID, managerID *uuid.UUID, includeOverdue bool) ([]*domain.Deliverable, error) {
	q := r.withProject(r.handle(dbc)).Where("status <> ?", domain.StatusCompleted)

	if includeOverdue && projectID != nil {
		q = q.Where("due_date <= ?", to)
	} else {
		q = q.Where("due_date >= ? AND due_date <= ?", from, to)
	}
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	if managerID != nil {
		q = joinManager(q, *managerID)
	}

	var rows []*domain.Deliverable
	if err := q.Order("due_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *deliverableRepo) ListOverdue(dbc dbctx.Context, before time.Time, projectID, managerID *uuid.UUID) ([]*domain.Deliverable, error) {
	q := r.withProject(r.handle(dbc)).
		Where("status <> ?", domain.StatusCompleted).
		Where("due_date < ?", before)

	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	if managerID != nil {
		q = joinManager(q, *managerID)
	}

	var rows []*domain.Deliverable
	if err := q.Order("due_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *deliverableRepo) Filter(dbc dbctx.Context, f domain.DeliverableFilter) ([]*domain.Deliverable, error) {
	q := r.withProject(r.handle(dbc))

	needsProjectJoin := f.ProjectName != "" || f.ManagerID != nil
	if needsProjectJoin {
		q = q.Joins("JOIN projects ON projects.id = deliverables.project_id AND projects.deleted_at IS NULL")
	}

	if f.ProjectID != nil {
		q = q.Where("deliverables.project_id = ?", *f.ProjectID)
	}
	if f.ProjectName != "" {
		q = q.Where("projects.name ILIKE ?", "%"+f.ProjectName+"%")
	}
	if f.ManagerID != nil {
		q = q.Where("projects.manager_id = ?", *f.ManagerID)
	}
	if f.Status != nil {
		q = q.Where("deliverables.status = ?", *f.Status)
	}
	if f.Frequency != nil {
		q = q.Where("deliverables.frequency = ?", *f.Frequency)
	}
	if f.DueBefore != nil {
		q = q.Where("deliverables.due_date <= ?", *f.DueBefore)
	}
	if f.DueAfter != nil {
		q = q.Where("deliverables.due_date >= ?", *f.DueAfter)
	}
	if !f.IncludeCompleted {
		q = q.Where("deliverables.status <> ?", domain.StatusCompleted)
	}
	if f.Search != "" {
		q = q.Where("deliverables.description ILIKE ?", "%"+f.Search+"%")
	}

	var rows []*domain.Deliverable
	if err := q.Order("due_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindDuplicate matches the natural key exactly; description equality is on
// the cleaned string the caller passes in.
func (r *deliverableRepo) FindDuplicate(dbc dbctx.Context, projectID uuid.UUID, dueDate time.Time, frequency domain.Frequency, description string) (*domain.Deliverable, error) {
	var row domain.Deliverable
	err := r.handle(dbc).
		Where("project_id = ?", projectID).
		Where("due_date = ?", domain.DateOnly(dueDate)).
		Where("frequency = ?", frequency).
		Where("description = ?", description).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *deliverableRepo) Update(dbc dbctx.Context, deliverable *domain.Deliverable) error {
	return r.handle(dbc).Save(deliverable).Error
}

func (r *deliverableRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).Where("id IN ?", ids).Delete(&domain.Deliverable{}).Error
}

func (r *deliverableRepo) SoftDeleteByProjectIDs(dbc dbctx.Context, projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}
	return r.handle(dbc).Where("project_id IN ?", projectIDs).Delete(&domain.Deliverable{}).Error
}

func (r *deliverableRepo) Summary(dbc dbctx.Context, today time.Time, projectID, managerID *uuid.UUID) (*domain.DeliverableSummary, error) {
	weekFromNow := today.AddDate(0, 0, 7)
	monthFromNow := today.AddDate(0, 0, 30)

	q := r.handle(dbc).Model(&domain.Deliverable{}).
		Where("deliverables.status <> ?", domain.StatusCompleted)

	if projectID != nil {
		q = q.Where("deliverables.project_id = ?", *projectID)
	}
	if managerID != nil {
		q = joinManager(q, *managerID)
	}

	var summary domain.DeliverableSummary
	if err := q.Select(`count(*) as total,
		count(case when due_date < ? then 1 end) as overdue,
		count(case when due_date = ? then 1 end) as due_today,
		count(case when due_date >= ? and due_date <= ? then 1 end) as due_this_week,
		count(case when due_date >= ? and due_date <= ? then 1 end) as due_this_month`,
		today, today, today, weekFromNow, today, monthFromNow).
		Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
