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

// ErrDuplicateDeliverable means a non-deleted deliverable with the same
// project, due date, frequency, and description already exists.
var ErrDuplicateDeliverable = errors.New("duplicate deliverable")

// ErrProjectRequired is misuse: create called with neither a project id nor
// a project name.
var ErrProjectRequired = errors.New("either project_id or project_name must be provided")

// DeliverableWithProject is the read view: the row plus denormalized project
// and manager names and the derived date fields.
type DeliverableWithProject struct {
	ID               uuid.UUID                `json:"id"`
	ProjectID        uuid.UUID                `json:"project_id"`
	ProjectName      string                   `json:"project_name"`
	ManagerName      string                   `json:"manager_name"`
	Description      string                   `json:"description"`
	DueDate          string                   `json:"due_date"`
	Frequency        domain.Frequency         `json:"frequency"`
	FrequencyDisplay string                   `json:"frequency_display"`
	Status           domain.DeliverableStatus `json:"status"`
	Notes            *string                  `json:"notes,omitempty"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
	DaysUntilDue     int                      `json:"days_until_due"`
	IsOverdue        bool                     `json:"is_overdue"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

type CreateDeliverableInput struct {
	ProjectID   *uuid.UUID
	ProjectName string
	ManagerName string
	Description string
	DueDate     time.Time
	Frequency   domain.Frequency
	Notes       *string
}

type UpdateDeliverableInput struct {
	Description *string
	DueDate     *time.Time
	Frequency   *domain.Frequency
	Status      *domain.DeliverableStatus
	Notes       *string
}

type UpcomingQuery struct {
	Days           int
	ProjectID      *uuid.UUID
	ManagerID      *uuid.UUID
	IncludeOverdue bool
}

type DeliverableService interface {
	List(dbc dbctx.Context, includeCompleted bool) ([]*DeliverableWithProject, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*DeliverableWithProject, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, includeCompleted bool, limit int) ([]*DeliverableWithProject, error)
	Upcoming(dbc dbctx.Context, q UpcomingQuery) ([]*DeliverableWithProject, error)
	Overdue(dbc dbctx.Context, projectID, managerID *uuid.UUID) ([]*DeliverableWithProject, error)
	Summary(dbc dbctx.Context, projectID, managerID *uuid.UUID) (*domain.DeliverableSummary, error)
	Filter(dbc dbctx.Context, f domain.DeliverableFilter) ([]*DeliverableWithProject, error)
	Create(dbc dbctx.Context, in CreateDeliverableInput) (*DeliverableWithProject, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateDeliverableInput) (*DeliverableWithProject, error)
	MarkComplete(dbc dbctx.Context, id uuid.UUID) (*DeliverableWithProject, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type deliverableService struct {
	db           *gorm.DB
	log          *logger.Logger
	deliverables repos.DeliverableRepo
	projectSvc   ProjectService
	cache        *SummaryCache
}

func NewDeliverableService(
	db *gorm.DB,
	baseLog *logger.Logger,
	deliverables repos.DeliverableRepo,
	projectSvc ProjectService,
	cache *SummaryCache,
) DeliverableService {
	return &deliverableService{
		db:           db,
		log:          baseLog.With("service", "DeliverableService"),
		deliverables: deliverables,
		projectSvc:   projectSvc,
		cache:        cache,
	}
}

func (s *deliverableService) List(dbc dbctx.Context, includeCompleted bool) ([]*DeliverableWithProject, error) {
	rows, err := s.deliverables.List(dbc, includeCompleted)
	if err != nil {
		return nil, fmt.Errorf("list deliverables: %w", err)
	}
	return deliverableViews(rows), nil
}

func (s *deliverableService) Get(dbc dbctx.Context, id uuid.UUID) (*DeliverableWithProject, error) {
	d, err := s.deliverables.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get deliverable: %w", err)
	}
	if d == nil {
		return nil, nil
	}
	return deliverableView(d, domain.UTCToday()), nil
}

func (s *deliverableService) ListByProject(dbc dbctx.Context, projectID uuid.UUID, includeCompleted bool, limit int) ([]*DeliverableWithProject, error) {
	rows, err := s.deliverables.ListByProject(dbc, projectID, includeCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliverables by project: %w", err)
	}
	return deliverableViews(rows), nil
}

func (s *deliverableService) Upcoming(dbc dbctx.Context, q UpcomingQuery) ([]*DeliverableWithProject, error) {
	days := q.Days
	if days <= 0 {
		days = 30
	}
	today := domain.UTCToday()
	rows, err := s.deliverables.ListUpcoming(dbc, today, today.AddDate(0, 0, days), q.ProjectID, q.ManagerID, q.IncludeOverdue)
	if err != nil {
		return nil, fmt.Errorf("list upcoming deliverables: %w", err)
	}
	return deliverableViews(rows), nil
}

func (s *deliverableService) Overdue(dbc dbctx.Context, projectID, managerID *uuid.UUID) ([]*DeliverableWithProject, error) {
	rows, err := s.deliverables.ListOverdue(dbc, domain.UTCToday(), projectID, managerID)
	if err != nil {
		return nil, fmt.Errorf("list overdue deliverables: %w", err)
	}
	return deliverableViews(rows), nil
}

func (s *deliverableService) Summary(dbc dbctx.Context, projectID, managerID *uuid.UUID) (*domain.DeliverableSummary, error) {
	key := summaryKey(projectID, managerID)
	if cached, ok := s.cache.Get(dbc.Ctx, key); ok {
		return cached, nil
	}

	summary, err := s.deliverables.Summary(dbc, domain.UTCToday(), projectID, managerID)
	if err != nil {
		return nil, fmt.Errorf("deliverable summary: %w", err)
	}
	s.cache.Set(dbc.Ctx, key, summary)
	return summary, nil
}

func (s *deliverableService) Filter(dbc dbctx.Context, f domain.DeliverableFilter) ([]*DeliverableWithProject, error) {
	rows, err := s.deliverables.Filter(dbc, f)
	if err != nil {
		return nil, fmt.Errorf("filter deliverables: %w", err)
	}
	return deliverableViews(rows), nil
}

func (s *deliverableService) Create(dbc dbctx.Context, in CreateDeliverableInput) (*DeliverableWithProject, error) {
	var projectID uuid.UUID
	switch {
	case in.ProjectID != nil:
		projectID = *in.ProjectID
	case in.ProjectName != "":
		p, _, err := s.projectSvc.GetOrCreate(dbc, in.ProjectName, in.ManagerName)
		if err != nil {
			return nil, err
		}
		projectID = p.ID
	default:
		return nil, ErrProjectRequired
	}

	dup, err := s.deliverables.FindDuplicate(dbc, projectID, in.DueDate, in.Frequency, in.Description)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if dup != nil {
		return nil, ErrDuplicateDeliverable
	}

	d := &domain.Deliverable{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Description: in.Description,
		DueDate:     domain.DateOnly(in.DueDate),
		Frequency:   in.Frequency,
		Status:      domain.StatusPending,
		Notes:       in.Notes,
	}
	if _, err := s.deliverables.Create(dbc, []*domain.Deliverable{d}); err != nil {
		s.log.Error("Create deliverable failed", "error", err, "project_id", projectID)
		return nil, fmt.Errorf("create deliverable: %w", err)
	}
	s.cache.Invalidate(dbc.Ctx)

	return s.Get(dbc, d.ID)
}

func (s *deliverableService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateDeliverableInput) (*DeliverableWithProject, error) {
	d, err := s.deliverables.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get deliverable: %w", err)
	}
	if d == nil {
		return nil, nil
	}

	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.DueDate != nil {
		d.DueDate = domain.DateOnly(*in.DueDate)
	}
	if in.Frequency != nil {
		d.Frequency = *in.Frequency
	}
	if in.Status != nil {
		d.Status = *in.Status
		if *in.Status == domain.StatusCompleted && d.CompletedAt == nil {
			now := time.Now().UTC()
			d.CompletedAt = &now
		}
		if *in.Status != domain.StatusCompleted {
			d.CompletedAt = nil
		}
	}
	if in.Notes != nil {
		d.Notes = in.Notes
	}
	d.UpdatedAt = time.Now().UTC()
	d.Project = nil

	if err := s.deliverables.Update(dbc, d); err != nil {
		return nil, fmt.Errorf("update deliverable: %w", err)
	}
	s.cache.Invalidate(dbc.Ctx)

	return s.Get(dbc, d.ID)
}

func (s *deliverableService) MarkComplete(dbc dbctx.Context, id uuid.UUID) (*DeliverableWithProject, error) {
	status := domain.StatusCompleted
	return s.Update(dbc, id, UpdateDeliverableInput{Status: &status})
}

func (s *deliverableService) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	d, err := s.deliverables.GetByID(dbc, id)
	if err != nil {
		return false, fmt.Errorf("get deliverable: %w", err)
	}
	if d == nil {
		return false, nil
	}
	if err := s.deliverables.SoftDeleteByIDs(dbc, []uuid.UUID{id}); err != nil {
		return false, fmt.Errorf("delete deliverable: %w", err)
	}
	s.cache.Invalidate(dbc.Ctx)
	return true, nil
}

func summaryKey(projectID, managerID *uuid.UUID) string {
	key := "summary:all"
	if projectID != nil {
		key = "summary:project:" + projectID.String()
	}
	if managerID != nil {
		key += ":manager:" + managerID.String()
	}
	return key
}

func deliverableViews(rows []*domain.Deliverable) []*DeliverableWithProject {
	today := domain.UTCToday()
	out := make([]*DeliverableWithProject, len(rows))
	for i, d := range rows {
		out[i] = deliverableView(d, today)
	}
	return out
}

func deliverableView(d *domain.Deliverable, today time.Time) *DeliverableWithProject {
	projectName := ""
	managerName := ""
	if d.Project != nil {
		projectName = d.Project.Name
		if d.Project.Manager != nil {
			managerName = d.Project.Manager.Name
		}
	}
	return &DeliverableWithProject{
		ID:               d.ID,
		ProjectID:        d.ProjectID,
		ProjectName:      projectName,
		ManagerName:      managerName,
		Description:      d.Description,
		DueDate:          domain.DateOnly(d.DueDate).Format("2006-01-02"),
		Frequency:        d.Frequency,
		FrequencyDisplay: d.Frequency.Display(),
		Status:           d.Status,
		Notes:            d.Notes,
		CompletedAt:      d.CompletedAt,
		DaysUntilDue:     d.DaysUntilDue(today),
		IsOverdue:        d.IsOverdue(today),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
