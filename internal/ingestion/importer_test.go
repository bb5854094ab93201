package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/data/repos/testutil"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/services"
)

// importerFixture wires an importer against a per-test transaction; the run
// transaction nests as a savepoint and everything rolls back on cleanup.
func importerFixture(t *testing.T) (*Importer, dbctx.Context, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)

	managerRepo := repos.NewManagerRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	deliverableRepo := repos.NewDeliverableRepo(db, log)
	importRunRepo := repos.NewImportRunRepo(db, log)

	managerSvc := services.NewManagerService(db, log, managerRepo)
	projectSvc := services.NewProjectService(db, log, projectRepo, deliverableRepo, managerSvc)

	im := NewImporter(db, log, managerSvc, projectSvc, deliverableRepo, importRunRepo)
	return im, dbctx.Context{Ctx: context.Background(), Tx: tx}, tx
}

const validCSV = "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
	"Hospital,Monthly report,2025-01-31,M,Jane Doe\n" +
	"Hospital,Quarterly audit,2025-03-31,Q,Jane Doe\n" +
	"Bridge,Inspection,2025-02-15,OT,John Smith\n"

func TestImportHappyPath(t *testing.T) {
	im, dbc, tx := importerFixture(t)

	result := im.Import(dbc, strings.NewReader(validCSV), "deliverables.csv", true)
	if !result.Success {
		t.Fatalf("success=false, errors=%v", result.Errors)
	}
	if result.TotalRows != 3 || result.ImportedRows != 3 || result.SkippedRows != 0 {
		t.Fatalf("counts: total=%d imported=%d skipped=%d", result.TotalRows, result.ImportedRows, result.SkippedRows)
	}
	if result.ManagersCreated != 2 || result.ProjectsCreated != 2 || result.DeliverablesCreated != 3 {
		t.Fatalf("created: managers=%d projects=%d deliverables=%d",
			result.ManagersCreated, result.ProjectsCreated, result.DeliverablesCreated)
	}

	var count int64
	if err := tx.Model(&domain.Deliverable{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("persisted deliverables: got=%d want=3", count)
	}

	var run domain.ImportRun
	if err := tx.Order("created_at DESC").First(&run).Error; err != nil {
		t.Fatalf("import run: %v", err)
	}
	if !run.Success || run.ImportedRows != 3 {
		t.Fatalf("import run record: %+v", run)
	}
}

func TestImportDuplicateWithinFile(t *testing.T) {
	im, dbc, _ := importerFixture(t)

	csv := "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
		"Hospital,Monthly report,2025-01-31,M,Jane Doe\n" +
		"Hospital,  Monthly   report ,2025-01-31,MONTHLY,Jane Doe\n"

	result := im.Import(dbc, strings.NewReader(csv), "dup.csv", true)
	if !result.Success {
		t.Fatalf("success=false, errors=%v", result.Errors)
	}
	if result.ImportedRows != 1 || result.SkippedRows != 1 {
		t.Fatalf("imported=%d skipped=%d", result.ImportedRows, result.SkippedRows)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors: %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Row != 3 || e.Column != "deliverable" {
		t.Fatalf("duplicate error: %+v", e)
	}
	if e.Error != "Duplicate deliverable (same project, due date, frequency, and description)" {
		t.Fatalf("duplicate message: %q", e.Error)
	}
	// The offending value is the cleaned description.
	if e.Value == nil || *e.Value != "Monthly report" {
		t.Fatalf("duplicate value: %v", e.Value)
	}
}

func TestImportReusesEntitiesAcrossRows(t *testing.T) {
	im, dbc, tx := importerFixture(t)

	csv := "Project,Deliverable,Due Date,Project Manager\n" +
		"Hospital,Report A,2025-01-31,Jane Doe\n" +
		"Hospital,Report B,2025-02-28,Jane Doe\n" +
		"Hospital,Report C,2025-03-31,Jane Doe\n"

	result := im.Import(dbc, strings.NewReader(csv), "reuse.csv", true)
	if !result.Success || result.ImportedRows != 3 {
		t.Fatalf("result: %+v", result)
	}
	if result.ManagersCreated != 1 || result.ProjectsCreated != 1 {
		t.Fatalf("created: managers=%d projects=%d", result.ManagersCreated, result.ProjectsCreated)
	}

	var projects int64
	if err := tx.Model(&domain.Project{}).Where("name = ?", "Hospital").Count(&projects).Error; err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if projects != 1 {
		t.Fatalf("projects named Hospital: got=%d want=1", projects)
	}
}

func TestImportAgainstExistingRows(t *testing.T) {
	im, dbc, _ := importerFixture(t)

	csv := "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
		"Hospital,Monthly report,2025-01-31,M,Jane Doe\n"

	first := im.Import(dbc, strings.NewReader(csv), "first.csv", true)
	if !first.Success || first.ImportedRows != 1 {
		t.Fatalf("first import: %+v", first)
	}

	// Same row again: existing persisted deliverable is a duplicate, and no
	// new entities are created.
	second := im.Import(dbc, strings.NewReader(csv), "second.csv", true)
	if !second.Success {
		t.Fatalf("second import: %+v", second)
	}
	if second.ImportedRows != 0 || second.SkippedRows != 1 {
		t.Fatalf("second counts: imported=%d skipped=%d", second.ImportedRows, second.SkippedRows)
	}
	if second.ManagersCreated != 0 || second.ProjectsCreated != 0 {
		t.Fatalf("second created: %+v", second)
	}
}

func TestImportMissingColumns(t *testing.T) {
	im, dbc, _ := importerFixture(t)

	csv := "Project,Deliverable,Frequency\nHospital,Report,M\n"
	result := im.Import(dbc, strings.NewReader(csv), "missing.csv", true)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ImportedRows != 0 || result.SkippedRows != result.TotalRows {
		t.Fatalf("counts: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors: %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Row != 0 || e.Column != "columns" {
		t.Fatalf("error shape: %+v", e)
	}
	if e.Error != "Missing required columns: [due_date, project_manager]" {
		t.Fatalf("message: %q", e.Error)
	}
}

func TestImportSkipInvalid(t *testing.T) {
	im, dbc, _ := importerFixture(t)

	csv := "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
		"Hospital,Report A,2025-01-31,M,Jane Doe\n" +
		",Report B,2025-02-28,M,Jane Doe\n" +
		"Hospital,Report C,not-a-date,M,Jane Doe\n" +
		"Hospital,Report D,2025-04-30,M,Jane Doe\n"

	result := im.Import(dbc, strings.NewReader(csv), "mixed.csv", true)
	if !result.Success {
		t.Fatalf("success=false: %v", result.Errors)
	}
	if result.ImportedRows != 2 || result.SkippedRows != 2 {
		t.Fatalf("imported=%d skipped=%d", result.ImportedRows, result.SkippedRows)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors: %v", result.Errors)
	}
}

func TestImportFailFast(t *testing.T) {
	im, dbc, tx := importerFixture(t)

	csv := "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
		"Hospital,Report A,2025-01-31,M,Jane Doe\n" +
		",Report B,2025-02-28,M,Jane Doe\n" +
		"Hospital,Report C,2025-03-31,M,Jane Doe\n"

	result := im.Import(dbc, strings.NewReader(csv), "failfast.csv", false)
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ImportedRows != 0 {
		t.Fatalf("imported=%d want=0", result.ImportedRows)
	}
	// Skipped reports how far the run got: the 0-based index of the
	// failing row.
	if result.SkippedRows != 1 {
		t.Fatalf("skipped=%d want=1", result.SkippedRows)
	}
	if result.ManagersCreated != 0 || result.ProjectsCreated != 0 || result.DeliverablesCreated != 0 {
		t.Fatalf("created counts must be zero: %+v", result)
	}

	// The first row's staged work rolled back with the run.
	var count int64
	if err := tx.Model(&domain.Deliverable{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("persisted deliverables after rollback: got=%d want=0", count)
	}
}

// rejectingDeliverableRepo fails the insert for one description, standing in
// for a storage error mid-row.
type rejectingDeliverableRepo struct {
	repos.DeliverableRepo
	rejectDescription string
}

func (r *rejectingDeliverableRepo) Create(dbc dbctx.Context, deliverables []*domain.Deliverable) ([]*domain.Deliverable, error) {
	for _, d := range deliverables {
		if d.Description == r.rejectDescription {
			return nil, errors.New("insert rejected")
		}
	}
	return r.DeliverableRepo.Create(dbc, deliverables)
}

func TestImportProcessingErrorContinues(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	managerRepo := repos.NewManagerRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	deliverableRepo := repos.NewDeliverableRepo(db, log)
	importRunRepo := repos.NewImportRunRepo(db, log)

	managerSvc := services.NewManagerService(db, log, managerRepo)
	projectSvc := services.NewProjectService(db, log, projectRepo, deliverableRepo, managerSvc)

	flaky := &rejectingDeliverableRepo{DeliverableRepo: deliverableRepo, rejectDescription: "Report B"}
	im := NewImporter(db, log, managerSvc, projectSvc, flaky, importRunRepo)

	csv := "Project,Deliverable,Due Date,Frequency,Project Manager\n" +
		"Hospital,Report A,2025-01-31,M,Jane Doe\n" +
		"Hospital,Report B,2025-02-28,M,Jane Doe\n" +
		"Hospital,Report C,2025-03-31,M,Jane Doe\n"

	result := im.Import(dbc, strings.NewReader(csv), "flaky.csv", true)

	// A storage failure mid-row is recorded and skipped; the rest of the
	// file still imports.
	if !result.Success {
		t.Fatalf("success=false: %v", result.Errors)
	}
	if result.ImportedRows != 2 || result.SkippedRows != 1 {
		t.Fatalf("imported=%d skipped=%d", result.ImportedRows, result.SkippedRows)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors: %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Row != 3 || e.Column != "processing" {
		t.Fatalf("error shape: %+v", e)
	}
	if !strings.HasPrefix(e.Error, "Error processing row:") {
		t.Fatalf("message: %q", e.Error)
	}

	var descriptions []string
	if err := tx.Model(&domain.Deliverable{}).Order("due_date").Pluck("description", &descriptions).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(descriptions) != 2 || descriptions[0] != "Report A" || descriptions[1] != "Report C" {
		t.Fatalf("persisted rows: %v", descriptions)
	}
}

func TestImportUnreadableFile(t *testing.T) {
	im, dbc, _ := importerFixture(t)

	result := im.Import(dbc, strings.NewReader("not a workbook"), "upload.xlsx", true)
	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Errors) != 1 || result.Errors[0].Column != "file" {
		t.Fatalf("errors: %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0].Error, "Failed to read file:") {
		t.Fatalf("message: %q", result.Errors[0].Error)
	}
}

func TestPreviewReadOnly(t *testing.T) {
	im, _, tx := importerFixture(t)

	csv := "Project Name,Deliverable,Due Date,Frequency,PM\n" +
		"  Hospital  ,Monthly   report,44927,monthly,Jane Doe\n" +
		",Report B,2025-02-28,M,Jane Doe\n"

	result := im.Preview(strings.NewReader(csv), "preview.csv")
	if result.TotalRows != 2 || result.ValidRows != 1 || result.InvalidRows != 1 {
		t.Fatalf("counts: %+v", result)
	}
	if result.ColumnMapping[FieldManager] != "PM" {
		t.Fatalf("column mapping: %v", result.ColumnMapping)
	}

	row := result.PreviewData[0]
	if row.RowNumber != 2 || !row.IsValid {
		t.Fatalf("row: %+v", row)
	}
	if row.Project != "Hospital" || row.Deliverable != "Monthly report" {
		t.Fatalf("cleaned values: %+v", row)
	}
	// Due date shows the raw cell, serials included.
	if row.DueDate != "44927" {
		t.Fatalf("due date display: %q", row.DueDate)
	}

	bad := result.PreviewData[1]
	if bad.IsValid || len(bad.ValidationErrors) != 1 {
		t.Fatalf("invalid row: %+v", bad)
	}
	if bad.ValidationErrors[0] != "Required field 'project' is empty" {
		t.Fatalf("error message: %q", bad.ValidationErrors[0])
	}

	// No writes of any kind.
	var count int64
	if err := tx.Model(&domain.ProjectManager{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("preview must not create entities: got=%d", count)
	}
}

func TestPreviewUnreadableFile(t *testing.T) {
	im, _, _ := importerFixture(t)

	result := im.Preview(strings.NewReader("garbage"), "upload.xlsx")
	if result.TotalRows != 0 || len(result.PreviewData) != 0 {
		t.Fatalf("expected empty preview: %+v", result)
	}
}
