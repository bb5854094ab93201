package ingestion

import (
	"strings"
	"testing"
)

func testFieldIndex() map[string]int {
	fieldIndex, _ := NormalizeColumns([]string{"Project", "Deliverable", "Due Date", "Frequency", "Project Manager"})
	return fieldIndex
}

func TestValidateRowValid(t *testing.T) {
	fi := testFieldIndex()
	valid, errs := validateRow(fi, []string{"Hospital", "Monthly report", "2025-01-31", "M", "Jane Doe"}, 2)
	if !valid || len(errs) != 0 {
		t.Fatalf("expected valid row, got errs=%v", errs)
	}

	// Frequency is optional.
	valid, errs = validateRow(fi, []string{"Hospital", "Monthly report", "2025-01-31", "", "Jane Doe"}, 2)
	if !valid || len(errs) != 0 {
		t.Fatalf("blank frequency should be valid, got errs=%v", errs)
	}
}

func TestValidateRowRequiredFields(t *testing.T) {
	fi := testFieldIndex()
	valid, errs := validateRow(fi, []string{"", "Monthly report", "2025-01-31", "M", "  "}, 5)
	if valid {
		t.Fatal("expected invalid row")
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Column != FieldProject || errs[0].Error != "Required field 'project' is empty" {
		t.Fatalf("first error: %+v", errs[0])
	}
	if errs[1].Column != FieldManager {
		t.Fatalf("second error: %+v", errs[1])
	}
	for _, e := range errs {
		if e.Row != 5 {
			t.Fatalf("row number: got=%d want=5", e.Row)
		}
	}
}

func TestValidateRowShortRow(t *testing.T) {
	// Rows shorter than the header set read as empty cells, with a nil
	// offending value.
	fi := testFieldIndex()
	valid, errs := validateRow(fi, []string{"Hospital"}, 3)
	if valid {
		t.Fatal("expected invalid row")
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
}

func TestValidateRowInvalidFrequency(t *testing.T) {
	fi := testFieldIndex()
	valid, errs := validateRow(fi, []string{"Hospital", "Report", "2025-01-31", "weekly", "Jane"}, 2)
	if valid || len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	e := errs[0]
	if e.Column != FieldFrequency {
		t.Fatalf("column: got=%q", e.Column)
	}
	if !strings.Contains(e.Error, "Invalid frequency 'weekly'") {
		t.Fatalf("message: got=%q", e.Error)
	}
	if e.Value == nil || *e.Value != "weekly" {
		t.Fatalf("value: got=%v", e.Value)
	}
}

func TestValidateRowInvalidDate(t *testing.T) {
	fi := testFieldIndex()
	valid, errs := validateRow(fi, []string{"Hospital", "Report", "not-a-date", "M", "Jane"}, 2)
	if valid || len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Error != "Invalid date format: 'not-a-date'" {
		t.Fatalf("message: got=%q", errs[0].Error)
	}

	// Serial dates pass validation.
	valid, errs = validateRow(fi, []string{"Hospital", "Report", "44927", "M", "Jane"}, 2)
	if !valid {
		t.Fatalf("serial date should validate, got %v", errs)
	}
}
