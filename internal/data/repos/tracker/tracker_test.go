package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aiig/deliverables-backend/internal/data/repos/testutil"
	"github.com/aiig/deliverables-backend/internal/data/repos/tracker"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
)

func fixture(t *testing.T) (dbctx.Context, tracker.ManagerRepo, tracker.ProjectRepo, tracker.DeliverableRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	return dbc,
		tracker.NewManagerRepo(db, log),
		tracker.NewProjectRepo(db, log),
		tracker.NewDeliverableRepo(db, log)
}

func seedProject(t *testing.T, dbc dbctx.Context, managers tracker.ManagerRepo, projects tracker.ProjectRepo, name string) *domain.Project {
	t.Helper()
	m := &domain.ProjectManager{ID: uuid.New(), Name: name + " manager"}
	if _, err := managers.Create(dbc, []*domain.ProjectManager{m}); err != nil {
		t.Fatalf("create manager: %v", err)
	}
	p := &domain.Project{ID: uuid.New(), Name: name, ManagerID: m.ID}
	if _, err := projects.Create(dbc, []*domain.Project{p}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestManagerRepoGetByName(t *testing.T) {
	dbc, managers, _, _ := fixture(t)

	m := &domain.ProjectManager{ID: uuid.New(), Name: "Jane Doe"}
	if _, err := managers.Create(dbc, []*domain.ProjectManager{m}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := managers.GetByName(dbc, "Jane Doe")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got == nil || got.ID != m.ID {
		t.Fatalf("got=%+v", got)
	}

	// Name matching is exact.
	miss, err := managers.GetByName(dbc, "jane doe")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected nil for case mismatch, got=%+v", miss)
	}
}

func TestManagerRepoCounts(t *testing.T) {
	dbc, managers, projects, deliverables := fixture(t)

	p := seedProject(t, dbc, managers, projects, "Hospital")
	d := &domain.Deliverable{
		ID:          uuid.New(),
		ProjectID:   p.ID,
		Description: "Report",
		DueDate:     date(2025, 1, 31),
		Frequency:   domain.FrequencyMonthly,
		Status:      domain.StatusPending,
	}
	if _, err := deliverables.Create(dbc, []*domain.Deliverable{d}); err != nil {
		t.Fatalf("create deliverable: %v", err)
	}

	counts, err := managers.CountsByManagerIDs(dbc, []uuid.UUID{p.ManagerID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	c := counts[p.ManagerID]
	if c.Projects != 1 || c.Deliverables != 1 {
		t.Fatalf("counts: %+v", c)
	}

	// Soft-deleting the project removes it (and its deliverables) from the
	// counts.
	if err := deliverables.SoftDeleteByProjectIDs(dbc, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("soft delete deliverables: %v", err)
	}
	if err := projects.SoftDeleteByIDs(dbc, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("soft delete project: %v", err)
	}
	counts, err = managers.CountsByManagerIDs(dbc, []uuid.UUID{p.ManagerID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	c = counts[p.ManagerID]
	if c.Projects != 0 || c.Deliverables != 0 {
		t.Fatalf("counts after delete: %+v", c)
	}
}

func TestProjectRepoSearch(t *testing.T) {
	dbc, managers, projects, _ := fixture(t)

	seedProject(t, dbc, managers, projects, "New Toronto Hospital")
	seedProject(t, dbc, managers, projects, "Gardiner Bridge")

	rows, err := projects.Search(dbc, "hosp", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "New Toronto Hospital" {
		t.Fatalf("search result: %+v", rows)
	}
	if rows[0].Manager == nil {
		t.Fatal("manager not preloaded")
	}
}

func TestProjectRepoStats(t *testing.T) {
	dbc, managers, projects, deliverables := fixture(t)

	p := seedProject(t, dbc, managers, projects, "Hospital")
	today := date(2025, 6, 15)
	completed := time.Now().UTC()

	batch := []*domain.Deliverable{
		{ID: uuid.New(), ProjectID: p.ID, Description: "Overdue one", DueDate: date(2025, 6, 1), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Due soon", DueDate: date(2025, 6, 18), Frequency: domain.FrequencyMonthly, Status: domain.StatusInProgress},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Far out", DueDate: date(2025, 9, 1), Frequency: domain.FrequencyAnnual, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Done", DueDate: date(2025, 5, 1), Frequency: domain.FrequencyOneTime, Status: domain.StatusCompleted, CompletedAt: &completed},
	}
	if _, err := deliverables.Create(dbc, batch); err != nil {
		t.Fatalf("create deliverables: %v", err)
	}

	stats, err := projects.StatsByProjectIDs(dbc, []uuid.UUID{p.ID}, today)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	s := stats[p.ID]
	if s.Total != 4 || s.Pending != 2 || s.Overdue != 1 || s.Upcoming7Days != 1 {
		t.Fatalf("stats: %+v", s)
	}
}

func TestDeliverableRepoFindDuplicate(t *testing.T) {
	dbc, managers, projects, deliverables := fixture(t)

	p := seedProject(t, dbc, managers, projects, "Hospital")
	d := &domain.Deliverable{
		ID:          uuid.New(),
		ProjectID:   p.ID,
		Description: "Monthly report",
		DueDate:     date(2025, 1, 31),
		Frequency:   domain.FrequencyMonthly,
		Status:      domain.StatusPending,
	}
	if _, err := deliverables.Create(dbc, []*domain.Deliverable{d}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := deliverables.FindDuplicate(dbc, p.ID, date(2025, 1, 31), domain.FrequencyMonthly, "Monthly report")
	if err != nil {
		t.Fatalf("find duplicate: %v", err)
	}
	if got == nil || got.ID != d.ID {
		t.Fatalf("got=%+v", got)
	}

	// Any field off the natural key is a miss.
	for name, probe := range map[string]func() (*domain.Deliverable, error){
		"date": func() (*domain.Deliverable, error) {
			return deliverables.FindDuplicate(dbc, p.ID, date(2025, 2, 28), domain.FrequencyMonthly, "Monthly report")
		},
		"frequency": func() (*domain.Deliverable, error) {
			return deliverables.FindDuplicate(dbc, p.ID, date(2025, 1, 31), domain.FrequencyQuarterly, "Monthly report")
		},
		"description": func() (*domain.Deliverable, error) {
			return deliverables.FindDuplicate(dbc, p.ID, date(2025, 1, 31), domain.FrequencyMonthly, "monthly report")
		},
	} {
		got, err := probe()
		if err != nil {
			t.Fatalf("probe %s: %v", name, err)
		}
		if got != nil {
			t.Fatalf("probe %s matched: %+v", name, got)
		}
	}
}

func TestDeliverableRepoListUpcomingAndOverdue(t *testing.T) {
	dbc, managers, projects, deliverables := fixture(t)

	p := seedProject(t, dbc, managers, projects, "Hospital")
	today := date(2025, 6, 15)

	batch := []*domain.Deliverable{
		{ID: uuid.New(), ProjectID: p.ID, Description: "Past", DueDate: date(2025, 6, 1), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Soon", DueDate: date(2025, 6, 20), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Later", DueDate: date(2025, 8, 20), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
	}
	if _, err := deliverables.Create(dbc, batch); err != nil {
		t.Fatalf("create: %v", err)
	}

	upcoming, err := deliverables.ListUpcoming(dbc, today, today.AddDate(0, 0, 30), nil, nil, false)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Description != "Soon" {
		t.Fatalf("upcoming: %+v", upcoming)
	}

	// With include_overdue and a project filter, past-due rows are kept.
	all, err := deliverables.ListUpcoming(dbc, today, today.AddDate(0, 0, 30), &p.ID, nil, true)
	if err != nil {
		t.Fatalf("upcoming incl overdue: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("upcoming incl overdue: %+v", all)
	}

	overdue, err := deliverables.ListOverdue(dbc, today, nil, nil)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].Description != "Past" {
		t.Fatalf("overdue: %+v", overdue)
	}
}

func TestDeliverableRepoSummary(t *testing.T) {
	dbc, managers, projects, deliverables := fixture(t)

	p := seedProject(t, dbc, managers, projects, "Hospital")
	today := date(2025, 6, 15)

	batch := []*domain.Deliverable{
		{ID: uuid.New(), ProjectID: p.ID, Description: "Overdue", DueDate: date(2025, 6, 1), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "Today", DueDate: today, Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "This week", DueDate: date(2025, 6, 20), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
		{ID: uuid.New(), ProjectID: p.ID, Description: "This month", DueDate: date(2025, 7, 10), Frequency: domain.FrequencyMonthly, Status: domain.StatusPending},
	}
	if _, err := deliverables.Create(dbc, batch); err != nil {
		t.Fatalf("create: %v", err)
	}

	s, err := deliverables.Summary(dbc, today, nil, nil)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Total != 4 || s.Overdue != 1 || s.DueToday != 1 {
		t.Fatalf("summary: %+v", s)
	}
	// Week and month windows include today.
	if s.DueThisWeek != 2 || s.DueThisMonth != 3 {
		t.Fatalf("summary windows: %+v", s)
	}
}
