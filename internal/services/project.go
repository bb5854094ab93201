package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

// ErrManagerRequired is programmer-facing misuse: create called with neither
// a manager id nor a resolvable manager name.
var ErrManagerRequired = errors.New("either manager_id or manager_name must be provided")

type ProjectWithStats struct {
	ID                   uuid.UUID              `json:"id"`
	Name                 string                 `json:"name"`
	Description          *string                `json:"description,omitempty"`
	ManagerID            uuid.UUID              `json:"manager_id"`
	Manager              *domain.ProjectManager `json:"manager,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	TotalDeliverables    int64                  `json:"total_deliverables"`
	PendingDeliverables  int64                  `json:"pending_deliverables"`
	OverdueDeliverables  int64                  `json:"overdue_deliverables"`
	Upcoming7Days        int64                  `json:"upcoming_7_days"`
}

type ProjectSearchResult struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ManagerName      string    `json:"manager_name"`
	DeliverableCount int64     `json:"deliverable_count"`
}

type CreateProjectInput struct {
	Name        string
	Description *string
	ManagerID   *uuid.UUID
	ManagerName string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	ManagerID   *uuid.UUID
}

type ProjectService interface {
	List(dbc dbctx.Context) ([]*ProjectWithStats, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*ProjectWithStats, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Project, error)
	Search(dbc dbctx.Context, query string, limit int) ([]*ProjectSearchResult, error)
	GetOrCreate(dbc dbctx.Context, name, managerName string) (*domain.Project, bool, error)
	Create(dbc dbctx.Context, in CreateProjectInput) (*domain.Project, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateProjectInput) (*domain.Project, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type projectService struct {
	db           *gorm.DB
	log          *logger.Logger
	projects     repos.ProjectRepo
	deliverables repos.DeliverableRepo
	managerSvc   ManagerService
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	deliverables repos.DeliverableRepo,
	managerSvc ManagerService,
) ProjectService {
	return &projectService{
		db:           db,
		log:          baseLog.With("service", "ProjectService"),
		projects:     projects,
		deliverables: deliverables,
		managerSvc:   managerSvc,
	}
}

func (s *projectService) List(dbc dbctx.Context) ([]*ProjectWithStats, error) {
	rows, err := s.projects.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(rows) == 0 {
		return []*ProjectWithStats{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, p := range rows {
		ids[i] = p.ID
	}
	stats, err := s.projects.StatsByProjectIDs(dbc, ids, domain.UTCToday())
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}

	out := make([]*ProjectWithStats, len(rows))
	for i, p := range rows {
		out[i] = projectView(p, stats[p.ID])
	}
	return out, nil
}

func (s *projectService) Get(dbc dbctx.Context, id uuid.UUID) (*ProjectWithStats, error) {
	p, err := s.projects.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	stats, err := s.projects.StatsByProjectIDs(dbc, []uuid.UUID{id}, domain.UTCToday())
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}
	return projectView(p, stats[id]), nil
}

func (s *projectService) GetByName(dbc dbctx.Context, name string) (*domain.Project, error) {
	return s.projects.GetByName(dbc, name)
}

func (s *projectService) Search(dbc dbctx.Context, query string, limit int) ([]*ProjectSearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.projects.Search(dbc, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search projects: %w", err)
	}
	if len(rows) == 0 {
		return []*ProjectSearchResult{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, p := range rows {
		ids[i] = p.ID
	}
	counts, err := s.projects.DeliverableCountsByProjectIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("deliverable counts: %w", err)
	}

	out := make([]*ProjectSearchResult, len(rows))
	for i, p := range rows {
		managerName := ""
		if p.Manager != nil {
			managerName = p.Manager.Name
		}
		out[i] = &ProjectSearchResult{
			ID:               p.ID,
			Name:             p.Name,
			ManagerName:      managerName,
			DeliverableCount: counts[p.ID],
		}
	}
	return out, nil
}

// GetOrCreate looks a project up by exact name; on miss it resolves (or
// creates) the manager first, then stages the new project. Flushed, not
// committed.
func (s *projectService) GetOrCreate(dbc dbctx.Context, name, managerName string) (*domain.Project, bool, error) {
	p, err := s.projects.GetByName(dbc, name)
	if err != nil {
		return nil, false, fmt.Errorf("lookup project %q: %w", name, err)
	}
	if p != nil {
		return p, false, nil
	}

	manager, _, err := s.managerSvc.GetOrCreate(dbc, managerName)
	if err != nil {
		return nil, false, err
	}

	p = &domain.Project{
		ID:        uuid.New(),
		Name:      name,
		ManagerID: manager.ID,
	}
	if _, err := s.projects.Create(dbc, []*domain.Project{p}); err != nil {
		return nil, false, fmt.Errorf("create project %q: %w", name, err)
	}
	return p, true, nil
}

func (s *projectService) Create(dbc dbctx.Context, in CreateProjectInput) (*domain.Project, error) {
	var managerID uuid.UUID
	switch {
	case in.ManagerID != nil:
		managerID = *in.ManagerID
	case in.ManagerName != "":
		manager, _, err := s.managerSvc.GetOrCreate(dbc, in.ManagerName)
		if err != nil {
			return nil, err
		}
		managerID = manager.ID
	default:
		return nil, ErrManagerRequired
	}

	p := &domain.Project{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		ManagerID:   managerID,
	}
	if _, err := s.projects.Create(dbc, []*domain.Project{p}); err != nil {
		s.log.Error("Create project failed", "error", err, "name", in.Name)
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *projectService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateProjectInput) (*domain.Project, error) {
	p, err := s.projects.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, nil
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.ManagerID != nil {
		p.ManagerID = *in.ManagerID
	}
	p.UpdatedAt = time.Now().UTC()
	p.Manager = nil

	if err := s.projects.Update(dbc, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes the project and all of its deliverables in one transaction.
func (s *projectService) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	p, err := s.projects.GetByID(dbc, id)
	if err != nil {
		return false, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return false, nil
	}

	handle := dbc.Tx
	if handle == nil {
		handle = s.db
	}
	err = handle.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if err := s.deliverables.SoftDeleteByProjectIDs(txc, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.projects.SoftDeleteByIDs(txc, []uuid.UUID{id})
	})
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return true, nil
}

func projectView(p *domain.Project, stats repos.ProjectStats) *ProjectWithStats {
	return &ProjectWithStats{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		ManagerID:           p.ManagerID,
		Manager:             p.Manager,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		TotalDeliverables:   stats.Total,
		PendingDeliverables: stats.Pending,
		OverdueDeliverables: stats.Overdue,
		Upcoming7Days:       stats.Upcoming7Days,
	}
}
