package ingestion

// Canonical field names the pipeline works with downstream.
const (
	FieldProject     = "project"
	FieldDeliverable = "deliverable"
	FieldDueDate     = "due_date"
	FieldFrequency   = "frequency"
	FieldManager     = "project_manager"
)

// RequiredFields must all resolve to a header for an import to proceed.
// frequency is optional and defaults to one-time.
var RequiredFields = []string{FieldProject, FieldDeliverable, FieldDueDate, FieldManager}

type fieldAliases struct {
	field   string
	aliases []string
}

// Header matching is case-sensitive and exact; the first alias present in
// the header row wins for each field.
var columnAliases = []fieldAliases{
	{FieldProject, []string{"Project", "project", "PROJECT", "Project Name", "project_name"}},
	{FieldDeliverable, []string{"Deliverable", "deliverable", "DELIVERABLE", "Description", "description"}},
	{FieldDueDate, []string{"Due Date", "due_date", "DUE DATE", "Due date", "DueDate", "Deadline"}},
	{FieldFrequency, []string{"Frequency", "frequency", "FREQUENCY", "Freq"}},
	{FieldManager, []string{"Project Manager", "project_manager", "PROJECT MANAGER", "Manager", "PM"}},
}

// NormalizeColumns maps the file's headers onto canonical fields. It returns
// the header index per resolved field and the canonical-name → original-header
// mapping reported back to the caller. Unmatched fields are simply absent.
func NormalizeColumns(headers []string) (map[string]int, map[string]string) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	fieldIndex := make(map[string]int, len(columnAliases))
	mapping := make(map[string]string, len(columnAliases))
	for _, fa := range columnAliases {
		for _, alias := range fa.aliases {
			if i, ok := index[alias]; ok {
				fieldIndex[fa.field] = i
				mapping[fa.field] = alias
				break
			}
		}
	}
	return fieldIndex, mapping
}

// MissingRequiredColumns lists required fields absent from a normalized
// header set, in canonical order.
func MissingRequiredColumns(fieldIndex map[string]int) []string {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := fieldIndex[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
