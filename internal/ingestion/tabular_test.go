package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	csv := "Project,Deliverable,Due Date,Project Manager\nHospital,Report,2025-01-31,Jane\nBridge,Inspection,2025-02-15\n"
	table, err := ReadTable(strings.NewReader(csv), "upload.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Headers) != 4 {
		t.Fatalf("headers: got=%v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got=%d", len(table.Rows))
	}
	// Ragged rows are allowed; short cells read as empty.
	if got := Cell(table.Rows[1], 3); got != "" {
		t.Fatalf("short row cell: got=%q", got)
	}
	if got := Cell(table.Rows[0], 3); got != "Jane" {
		t.Fatalf("cell: got=%q", got)
	}
}

func TestReadTableCSVMalformed(t *testing.T) {
	// Unterminated quote is a parse error, surfaced as a file-level failure.
	if _, err := ReadTable(strings.NewReader("a,\"b\nc,d"), "bad.csv"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Project", "Deliverable", "Due Date", "Project Manager"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"Hospital", "Report", 44927, "Jane"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	table, err := ReadTable(&buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows: got=%d", len(table.Rows))
	}
	// Raw cell mode keeps the serial number as text.
	if got := Cell(table.Rows[0], 2); got != "44927" {
		t.Fatalf("serial cell: got=%q", got)
	}
}

func TestReadTableXLSXGarbage(t *testing.T) {
	if _, err := ReadTable(strings.NewReader("this is not a zip archive"), "upload.xlsx"); err == nil {
		t.Fatal("expected error for non-xlsx bytes")
	}
}

func TestCellBounds(t *testing.T) {
	row := []string{"a", "b"}
	if Cell(row, -1) != "" || Cell(row, 2) != "" {
		t.Fatal("out-of-range cells must read as empty")
	}
	if Cell(row, 1) != "b" {
		t.Fatal("in-range cell")
	}
}
