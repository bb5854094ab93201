package ingestion

import (
	"fmt"
	"strings"
)

// ValidationError is one structured error record in an import or preview
// result. Row 0 marks file-level errors (unreadable file, missing columns,
// commit failure).
type ValidationError struct {
	Row    int     `json:"row"`
	Column string  `json:"column"`
	Value  *string `json:"value,omitempty"`
	Error  string  `json:"error"`
}

func strPtr(s string) *string { return &s }

// validateRow checks one data row against the canonical fields. The row is
// valid when all four required fields are non-blank, any frequency resolves,
// and the due date parses. Errors are data, not failures.
func validateRow(fieldIndex map[string]int, row []string, rowNum int) (bool, []ValidationError) {
	var errs []ValidationError

	cell := func(field string) (string, bool) {
		i, ok := fieldIndex[field]
		if !ok {
			return "", false
		}
		return Cell(row, i), true
	}

	for _, field := range RequiredFields {
		raw, present := cell(field)
		if !present || strings.TrimSpace(raw) == "" {
			var value *string
			if present {
				value = strPtr(raw)
			}
			errs = append(errs, ValidationError{
				Row:    rowNum,
				Column: field,
				Value:  value,
				Error:  fmt.Sprintf("Required field '%s' is empty", field),
			})
		}
	}

	if raw, present := cell(FieldFrequency); present && strings.TrimSpace(raw) != "" {
		if _, ok := ResolveFrequency(raw); !ok {
			errs = append(errs, ValidationError{
				Row:    rowNum,
				Column: FieldFrequency,
				Value:  strPtr(raw),
				Error:  fmt.Sprintf("Invalid frequency '%s'. Must be one of: M, Q, SA, A, OT", raw),
			})
		}
	}

	if raw, present := cell(FieldDueDate); present && strings.TrimSpace(raw) != "" {
		if _, ok := ParseDate(raw); !ok {
			errs = append(errs, ValidationError{
				Row:    rowNum,
				Column: FieldDueDate,
				Value:  strPtr(raw),
				Error:  fmt.Sprintf("Invalid date format: '%s'", raw),
			})
		}
	}

	return len(errs) == 0, errs
}
