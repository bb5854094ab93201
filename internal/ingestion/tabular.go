package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a rectangular view of an uploaded file: one header row and zero
// or more data rows. Short rows are not padded here; lookups pad on read.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable parses an uploaded spreadsheet into a Table. The filename
// extension picks the parser: .csv gets a CSV reader, everything else goes
// through the xlsx reader. Cell values come back raw (unformatted) so serial
// dates survive as their numeric text.
func ReadTable(r io.Reader, filename string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		return readCSV(r)
	}
	return readXLSX(r)
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{Headers: []string{}, Rows: [][]string{}}, nil
	}
	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

func readXLSX(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{Headers: []string{}, Rows: [][]string{}}, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{Headers: []string{}, Rows: [][]string{}}, nil
	}
	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// Cell returns row[i] or "" when the row is shorter than the header set.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
