package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/data/repos/testutil"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/services"
)

type serviceFixture struct {
	dbc          dbctx.Context
	managers     services.ManagerService
	projects     services.ProjectService
	deliverables services.DeliverableService
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)

	managerRepo := repos.NewManagerRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	deliverableRepo := repos.NewDeliverableRepo(db, log)

	managerSvc := services.NewManagerService(db, log, managerRepo)
	projectSvc := services.NewProjectService(db, log, projectRepo, deliverableRepo, managerSvc)
	// nil cache: summary queries go straight to the database.
	deliverableSvc := services.NewDeliverableService(db, log, deliverableRepo, projectSvc, nil)

	return serviceFixture{
		dbc:          dbctx.Context{Ctx: context.Background(), Tx: tx},
		managers:     managerSvc,
		projects:     projectSvc,
		deliverables: deliverableSvc,
	}
}

func TestDeliverableCreateByProjectName(t *testing.T) {
	f := newServiceFixture(t)

	d, err := f.deliverables.Create(f.dbc, services.CreateDeliverableInput{
		ProjectName: "Hospital",
		ManagerName: "Jane Doe",
		Description: "Monthly report",
		DueDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Frequency:   domain.FrequencyMonthly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ProjectName != "Hospital" || d.ManagerName != "Jane Doe" {
		t.Fatalf("view: %+v", d)
	}
	if d.DueDate != "2025-01-31" {
		t.Fatalf("due date: %q", d.DueDate)
	}
	if d.FrequencyDisplay != "Monthly" {
		t.Fatalf("frequency display: %q", d.FrequencyDisplay)
	}
	if d.Status != domain.StatusPending {
		t.Fatalf("status: %q", d.Status)
	}
}

func TestDeliverableCreateDuplicate(t *testing.T) {
	f := newServiceFixture(t)

	in := services.CreateDeliverableInput{
		ProjectName: "Hospital",
		ManagerName: "Jane Doe",
		Description: "Monthly report",
		DueDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Frequency:   domain.FrequencyMonthly,
	}
	if _, err := f.deliverables.Create(f.dbc, in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := f.deliverables.Create(f.dbc, in)
	if !errors.Is(err, services.ErrDuplicateDeliverable) {
		t.Fatalf("want ErrDuplicateDeliverable, got %v", err)
	}
}

func TestDeliverableCreateRequiresProject(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.deliverables.Create(f.dbc, services.CreateDeliverableInput{
		Description: "Orphan",
		DueDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Frequency:   domain.FrequencyOneTime,
	})
	if !errors.Is(err, services.ErrProjectRequired) {
		t.Fatalf("want ErrProjectRequired, got %v", err)
	}
}

func TestDeliverableMarkComplete(t *testing.T) {
	f := newServiceFixture(t)

	d, err := f.deliverables.Create(f.dbc, services.CreateDeliverableInput{
		ProjectName: "Hospital",
		ManagerName: "Jane Doe",
		Description: "Overdue report",
		DueDate:     time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		Frequency:   domain.FrequencyOneTime,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !d.IsOverdue {
		t.Fatal("expected overdue before completion")
	}

	done, err := f.deliverables.MarkComplete(f.dbc, d.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.StatusCompleted {
		t.Fatalf("status: %q", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}
	// Completed deliverables are never overdue, past due date or not.
	if done.IsOverdue {
		t.Fatal("completed deliverable reported overdue")
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	f := newServiceFixture(t)

	d, err := f.deliverables.Create(f.dbc, services.CreateDeliverableInput{
		ProjectName: "Hospital",
		ManagerName: "Jane Doe",
		Description: "Monthly report",
		DueDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Frequency:   domain.FrequencyMonthly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := f.projects.Delete(f.dbc, d.ProjectID)
	if err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if !found {
		t.Fatal("project not found")
	}

	gone, err := f.deliverables.Get(f.dbc, d.ID)
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if gone != nil {
		t.Fatalf("deliverable survived project delete: %+v", gone)
	}

	// The manager is untouched.
	m, err := f.managers.GetByName(f.dbc, "Jane Doe")
	if err != nil || m == nil {
		t.Fatalf("manager lookup: m=%v err=%v", m, err)
	}
}

func TestDeliverableSummaryService(t *testing.T) {
	f := newServiceFixture(t)

	for _, due := range []time.Time{
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		domain.UTCToday().AddDate(0, 0, 3),
	} {
		if _, err := f.deliverables.Create(f.dbc, services.CreateDeliverableInput{
			ProjectName: "Hospital",
			ManagerName: "Jane Doe",
			Description: "Report due " + due.Format("2006-01-02"),
			DueDate:     due,
			Frequency:   domain.FrequencyOneTime,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	s, err := f.deliverables.Summary(f.dbc, nil, nil)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Total != 2 || s.Overdue != 1 || s.DueThisWeek != 1 {
		t.Fatalf("summary: %+v", s)
	}
}
