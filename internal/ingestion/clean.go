package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aiig/deliverables-backend/internal/domain"
)

// serialEpoch is day zero of the legacy spreadsheet serial-date system.
// Serial day N maps to 1899-12-30 + N days; the two-day offset from
// 1900-01-01 reproduces the format's phantom 1900 leap day on purpose.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDay is 9999-12-31, the last date the serial system can express.
const maxSerialDay = 2958465

// CleanString trims and collapses internal whitespace runs to single spaces.
// Idempotent.
func CleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate coerces a raw cell into a calendar date. Numeric values are
// serial day counts from the 1899-12-30 epoch (raw xlsx cells arrive as
// numeric text). String values are tried against common layouts, ISO first.
// Unparseable input returns ok=false, never an error.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		// ParseFloat also accepts NaN/Inf spellings, which some CSV
		// exporters emit for blank cells. Those and out-of-range serials
		// are not dates.
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n > maxSerialDay {
			return time.Time{}, false
		}
		// Fractional part is time-of-day; truncated.
		return serialEpoch.AddDate(0, 0, int(n)), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOnly(t), true
		}
	}
	return time.Time{}, false
}

var frequencyAliases = map[string]domain.Frequency{
	"M":           domain.FrequencyMonthly,
	"MONTHLY":     domain.FrequencyMonthly,
	"Q":           domain.FrequencyQuarterly,
	"QUARTERLY":   domain.FrequencyQuarterly,
	"SA":          domain.FrequencySemiAnnual,
	"SEMI-ANNUAL": domain.FrequencySemiAnnual,
	"SEMIANNUAL":  domain.FrequencySemiAnnual,
	"A":           domain.FrequencyAnnual,
	"ANNUAL":      domain.FrequencyAnnual,
	"ANNUALLY":    domain.FrequencyAnnual,
	"YEARLY":      domain.FrequencyAnnual,
	"OT":          domain.FrequencyOneTime,
	"ONE-TIME":    domain.FrequencyOneTime,
	"ONETIME":     domain.FrequencyOneTime,
}

// ResolveFrequency maps a raw frequency value to its canonical code after
// upper-casing and trimming. ok=false when the value resolves to nothing.
func ResolveFrequency(raw string) (domain.Frequency, bool) {
	f, ok := frequencyAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return f, ok
}

// ParseFrequency is the lenient load-time coercion: empty or unresolvable
// values fall back to one-time. Validation flags unresolvable values before
// this runs, so the fallback only fires in skip-invalid flows.
func ParseFrequency(raw string) domain.Frequency {
	if strings.TrimSpace(raw) == "" {
		return domain.FrequencyOneTime
	}
	if f, ok := ResolveFrequency(raw); ok {
		return f
	}
	return domain.FrequencyOneTime
}
