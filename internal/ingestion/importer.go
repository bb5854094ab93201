package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/data/repos"
	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
	"github.com/aiig/deliverables-backend/internal/services"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Success             bool              `json:"success"`
	Filename            string            `json:"filename"`
	TotalRows           int               `json:"total_rows"`
	ImportedRows        int               `json:"imported_rows"`
	SkippedRows         int               `json:"skipped_rows"`
	Errors              []ValidationError `json:"errors"`
	ManagersCreated     int               `json:"managers_created"`
	ProjectsCreated     int               `json:"projects_created"`
	DeliverablesCreated int               `json:"deliverables_created"`
}

// PreviewRow is one row of a dry-run, with cleaned display values and the
// human-readable reasons it would be rejected.
type PreviewRow struct {
	RowNumber        int      `json:"row_number"`
	Project          string   `json:"project"`
	Deliverable      string   `json:"deliverable"`
	DueDate          string   `json:"due_date"`
	Frequency        string   `json:"frequency"`
	ProjectManager   string   `json:"project_manager"`
	IsValid          bool     `json:"is_valid"`
	ValidationErrors []string `json:"validation_errors"`
}

type PreviewResult struct {
	Filename      string            `json:"filename"`
	TotalRows     int               `json:"total_rows"`
	ValidRows     int               `json:"valid_rows"`
	InvalidRows   int               `json:"invalid_rows"`
	PreviewData   []PreviewRow      `json:"preview_data"`
	ColumnMapping map[string]string `json:"column_mapping"`
}

// errAborted signals the transaction closure to roll back after a fail-fast
// abort; the result is already populated when it fires.
var errAborted = errors.New("import aborted")

// Importer runs the ingestion pipeline: read, normalize, then per row
// validate, clean, resolve, dedup, stage. One transaction per run.
type Importer struct {
	db           *gorm.DB
	log          *logger.Logger
	managerSvc   services.ManagerService
	projectSvc   services.ProjectService
	deliverables repos.DeliverableRepo
	importRuns   repos.ImportRunRepo
}

func NewImporter(
	db *gorm.DB,
	baseLog *logger.Logger,
	managerSvc services.ManagerService,
	projectSvc services.ProjectService,
	deliverables repos.DeliverableRepo,
	importRuns repos.ImportRunRepo,
) *Importer {
	return &Importer{
		db:           db,
		log:          baseLog.With("component", "Importer"),
		managerSvc:   managerSvc,
		projectSvc:   projectSvc,
		deliverables: deliverables,
		importRuns:   importRuns,
	}
}

// Import parses the upload and loads it into the database. With skipInvalid,
// bad rows are recorded and skipped; without it, the first invalid row rolls
// back the whole run. All failure modes land in the result, never in an
// error return.
func (im *Importer) Import(dbc dbctx.Context, r io.Reader, filename string, skipInvalid bool) *ImportResult {
	result := &ImportResult{Filename: filename, Errors: []ValidationError{}}
	// Every attempt leaves an audit record, aborted ones included.
	defer im.recordRun(dbc, result, skipInvalid)

	table, err := ReadTable(r, filename)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Row:    0,
			Column: "file",
			Error:  fmt.Sprintf("Failed to read file: %v", err),
		})
		return result
	}
	result.TotalRows = len(table.Rows)

	fieldIndex, _ := NormalizeColumns(table.Headers)
	if missing := MissingRequiredColumns(fieldIndex); len(missing) > 0 {
		result.SkippedRows = result.TotalRows
		result.Errors = append(result.Errors, ValidationError{
			Row:    0,
			Column: "columns",
			Error:  fmt.Sprintf("Missing required columns: [%s]", strings.Join(missing, ", ")),
		})
		return result
	}

	handle := im.db
	if dbc.Tx != nil {
		handle = dbc.Tx
	}
	txErr := handle.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		return im.runRows(txc, table, fieldIndex, skipInvalid, result)
	})

	switch {
	case txErr == nil:
		result.Success = true
	case errors.Is(txErr, errAborted):
		// Fail-fast abort: runRows already shaped the result.
	default:
		// Commit or storage failure: everything staged is gone.
		*result = ImportResult{
			Filename:    filename,
			TotalRows:   len(table.Rows),
			SkippedRows: len(table.Rows),
			Errors: []ValidationError{{
				Row:    0,
				Column: "database",
				Error:  fmt.Sprintf("Database error: %v", txErr),
			}},
		}
	}

	return result
}

// runRows drives the per-row loop inside the run's transaction. Returning
// errAborted rolls everything back.
func (im *Importer) runRows(dbc dbctx.Context, table *Table, fieldIndex map[string]int, skipInvalid bool, result *ImportResult) error {
	res := newResolver(im.managerSvc, im.projectSvc)

	cell := func(row []string, field string) string {
		i, ok := fieldIndex[field]
		if !ok {
			return ""
		}
		return Cell(row, i)
	}

	for idx, row := range table.Rows {
		rowNum := idx + 2

		valid, rowErrs := validateRow(fieldIndex, row, rowNum)
		if !valid {
			result.Errors = append(result.Errors, rowErrs...)
			if skipInvalid {
				result.SkippedRows++
				continue
			}
			errs := result.Errors
			*result = ImportResult{
				Filename:    result.Filename,
				TotalRows:   result.TotalRows,
				SkippedRows: idx,
				Errors:      errs,
			}
			return errAborted
		}

		managerName := CleanString(cell(row, FieldManager))
		projectName := CleanString(cell(row, FieldProject))
		description := CleanString(cell(row, FieldDeliverable))
		dueDate, _ := ParseDate(cell(row, FieldDueDate))
		frequency := ParseFrequency(cell(row, FieldFrequency))

		duplicate, err := im.loadRow(dbc, res, projectName, managerName, description, dueDate, frequency)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Row:    rowNum,
				Column: "processing",
				Error:  fmt.Sprintf("Error processing row: %v", err),
			})
			result.SkippedRows++
			continue
		}
		if duplicate {
			result.Errors = append(result.Errors, ValidationError{
				Row:    rowNum,
				Column: "deliverable",
				Value:  strPtr(description),
				Error:  "Duplicate deliverable (same project, due date, frequency, and description)",
			})
			result.SkippedRows++
			continue
		}

		result.DeliverablesCreated++
		result.ImportedRows++
	}

	result.ManagersCreated = res.managersCreated
	result.ProjectsCreated = res.projectsCreated
	return nil
}

// loadRow resolves entities, checks the natural key, and stages the new
// deliverable. duplicate=true means the row was skipped without staging.
func (im *Importer) loadRow(
	dbc dbctx.Context,
	res *resolver,
	projectName, managerName, description string,
	dueDate time.Time,
	frequency domain.Frequency,
) (duplicate bool, err error) {
	if _, err := res.resolveManager(dbc, managerName); err != nil {
		return false, err
	}
	project, err := res.resolveProject(dbc, projectName, managerName)
	if err != nil {
		return false, err
	}

	existing, err := im.deliverables.FindDuplicate(dbc, project.ID, dueDate, frequency, description)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return true, nil
	}

	d := &domain.Deliverable{
		ProjectID:   project.ID,
		Description: description,
		DueDate:     domain.DateOnly(dueDate),
		Frequency:   frequency,
		Status:      domain.StatusPending,
	}
	if _, err := im.deliverables.Create(dbc, []*domain.Deliverable{d}); err != nil {
		return false, err
	}
	return false, nil
}

// recordRun persists the run's audit record. Best effort: a failure here is
// logged and never surfaces to the caller.
func (im *Importer) recordRun(dbc dbctx.Context, result *ImportResult, skipInvalid bool) {
	raw, err := json.Marshal(result.Errors)
	if err != nil {
		raw = []byte("[]")
	}
	run := &domain.ImportRun{
		Filename:            result.Filename,
		Success:             result.Success,
		SkipInvalid:         skipInvalid,
		TotalRows:           result.TotalRows,
		ImportedRows:        result.ImportedRows,
		SkippedRows:         result.SkippedRows,
		ManagersCreated:     result.ManagersCreated,
		ProjectsCreated:     result.ProjectsCreated,
		DeliverablesCreated: result.DeliverablesCreated,
		Errors:              raw,
	}
	if _, err := im.importRuns.Create(dbc, run); err != nil {
		im.log.Warn("Failed to record import run", "filename", result.Filename, "error", err)
	}
}

// Preview runs read-only validation over the upload: no entity resolution,
// no duplicate checks, no writes. An unreadable file yields an empty result.
func (im *Importer) Preview(r io.Reader, filename string) *PreviewResult {
	result := &PreviewResult{
		Filename:      filename,
		PreviewData:   []PreviewRow{},
		ColumnMapping: map[string]string{},
	}

	table, err := ReadTable(r, filename)
	if err != nil {
		return result
	}

	fieldIndex, mapping := NormalizeColumns(table.Headers)
	result.ColumnMapping = mapping
	result.TotalRows = len(table.Rows)

	cell := func(row []string, field string) string {
		i, ok := fieldIndex[field]
		if !ok {
			return ""
		}
		return Cell(row, i)
	}

	for idx, row := range table.Rows {
		rowNum := idx + 2
		valid, rowErrs := validateRow(fieldIndex, row, rowNum)
		if valid {
			result.ValidRows++
		}

		messages := make([]string, len(rowErrs))
		for i, e := range rowErrs {
			messages[i] = e.Error
		}

		result.PreviewData = append(result.PreviewData, PreviewRow{
			RowNumber:      rowNum,
			Project:        CleanString(cell(row, FieldProject)),
			Deliverable:    CleanString(cell(row, FieldDeliverable)),
			// The raw cell is shown so the user sees what the file says,
			// serial numbers included.
			DueDate:          cell(row, FieldDueDate),
			Frequency:        CleanString(cell(row, FieldFrequency)),
			ProjectManager:   CleanString(cell(row, FieldManager)),
			IsValid:          valid,
			ValidationErrors: messages,
		})
	}
	result.InvalidRows = result.TotalRows - result.ValidRows
	return result
}

// ListRuns returns recent import audit records, newest first.
func (im *Importer) ListRuns(dbc dbctx.Context, limit int) ([]*domain.ImportRun, error) {
	return im.importRuns.List(dbc, limit)
}
