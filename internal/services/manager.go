package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type ManagerWithStats struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            *string   `json:"email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ProjectCount     int64     `json:"project_count"`
	DeliverableCount int64     `json:"deliverable_count"`
}

type CreateManagerInput struct {
	Name  string
	Email *string
}

type UpdateManagerInput struct {
	Name  *string
	Email *string
}

type ManagerService interface {
	List(dbc dbctx.Context) ([]*ManagerWithStats, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*ManagerWithStats, error)
	GetByName(dbc dbctx.Context, name string) (*domain.ProjectManager, error)
	GetOrCreate(dbc dbctx.Context, name string) (*domain.ProjectManager, bool, error)
	Create(dbc dbctx.Context, in CreateManagerInput) (*domain.ProjectManager, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateManagerInput) (*domain.ProjectManager, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type managerService struct {
	db       *gorm.DB
	log      *logger.Logger
	managers repos.ManagerRepo
}

func NewManagerService(db *gorm.DB, baseLog *logger.Logger, managers repos.ManagerRepo) ManagerService {
	return &managerService{
		db:       db,
		log:      baseLog.With("service", "ManagerService"),
		managers: managers,
	}
}

func (s *managerService) List(dbc dbctx.Context) ([]*ManagerWithStats, error) {
	rows, err := s.managers.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	if len(rows) == 0 {
		return []*ManagerWithStats{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, m := range rows {
		ids[i] = m.ID
	}
	counts, err := s.managers.CountsByManagerIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("manager counts: %w", err)
	}

	out := make([]*ManagerWithStats, len(rows))
	for i, m := range rows {
		out[i] = managerView(m, counts[m.ID])
	}
	return out, nil
}

func (s *managerService) Get(dbc dbctx.Context, id uuid.UUID) (*ManagerWithStats, error) {
	m, err := s.managers.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get manager: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	counts, err := s.managers.CountsByManagerIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("manager counts: %w", err)
	}
	return managerView(m, counts[id]), nil
}

func (s *managerService) GetByName(dbc dbctx.Context, name string) (*domain.ProjectManager, error) {
	return s.managers.GetByName(dbc, name)
}

// GetOrCreate looks a manager up by exact name and stages a new row on miss.
// The insert is flushed, not committed, so callers inside a transaction see
// it immediately.
func (s *managerService) GetOrCreate(dbc dbctx.Context, name string) (*domain.ProjectManager, bool, error) {
	m, err := s.managers.GetByName(dbc, name)
	if err != nil {
		return nil, false, fmt.Errorf("lookup manager %q: %w", name, err)
	}
	if m != nil {
		return m, false, nil
	}

	m = &domain.ProjectManager{
		ID:   uuid.New(),
		Name: name,
	}
	if _, err := s.managers.Create(dbc, []*domain.ProjectManager{m}); err != nil {
		return nil, false, fmt.Errorf("create manager %q: %w", name, err)
	}
	return m, true, nil
}

func (s *managerService) Create(dbc dbctx.Context, in CreateManagerInput) (*domain.ProjectManager, error) {
	m := &domain.ProjectManager{
		ID:    uuid.New(),
		Name:  in.Name,
		Email: in.Email,
	}
	if _, err := s.managers.Create(dbc, []*domain.ProjectManager{m}); err != nil {
		s.log.Error("Create manager failed", "error", err, "name", in.Name)
		return nil, fmt.Errorf("create manager: %w", err)
	}
	return m, nil
}

func (s *managerService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateManagerInput) (*domain.ProjectManager, error) {
	m, err := s.managers.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get manager: %w", err)
	}
	if m == nil {
		return nil, nil
	}

	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Email != nil {
		m.Email = in.Email
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.managers.Update(dbc, m); err != nil {
		return nil, fmt.Errorf("update manager: %w", err)
	}
	return m, nil
}

func (s *managerService) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	m, err := s.managers.GetByID(dbc, id)
	if err != nil {
		return false, fmt.Errorf("get manager: %w", err)
	}
	if m == nil {
		return false, nil
	}
	if err := s.managers.FullDeleteByIDs(dbc, []uuid.UUID{id}); err != nil {
		return false, fmt.Errorf("delete manager: %w", err)
	}
	return true, nil
}

func managerView(m *domain.ProjectManager, c repos.ManagerCounts) *ManagerWithStats {
	return &ManagerWithStats{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		ProjectCount:     c.Projects,
		DeliverableCount: c.Deliverables,
	}
}
