package ingestion

import (
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/services"
)

// resolver maps cleaned manager and project names to entities for one run.
// The caches are run-scoped: each name is resolved at most once per file, and
// entities created mid-run stay visible to later rows because everything runs
// inside the same transaction.
type resolver struct {
	managerSvc services.ManagerService
	projectSvc services.ProjectService

	managers map[string]*domain.ProjectManager
	projects map[string]*domain.Project

	managersCreated int
	projectsCreated int
}

func newResolver(managerSvc services.ManagerService, projectSvc services.ProjectService) *resolver {
	return &resolver{
		managerSvc: managerSvc,
		projectSvc: projectSvc,
		managers:   make(map[string]*domain.ProjectManager),
		projects:   make(map[string]*domain.Project),
	}
}

func (r *resolver) resolveManager(dbc dbctx.Context, name string) (*domain.ProjectManager, error) {
	if m, ok := r.managers[name]; ok {
		return m, nil
	}
	m, created, err := r.managerSvc.GetOrCreate(dbc, name)
	if err != nil {
		return nil, err
	}
	r.managers[name] = m
	if created {
		r.managersCreated++
	}
	return m, nil
}

func (r *resolver) resolveProject(dbc dbctx.Context, name, managerName string) (*domain.Project, error) {
	if p, ok := r.projects[name]; ok {
		return p, nil
	}
	p, created, err := r.projectSvc.GetOrCreate(dbc, name, managerName)
	if err != nil {
		return nil, err
	}
	r.projects[name] = p
	if created {
		r.projectsCreated++
	}
	return p, nil
}
