// Package leaderboard holds the entry store, its persisted wire format and the
// derived (filtered, searched, sorted) views computed from it.
package leaderboard

import (
	"fmt"
	"strings"
	"time"
)

// Categories is the fixed, ordered list of category labels.
var Categories = []string{
	"Foundation Models",
	"Open Source Models",
	"Code Generation",
	"Multimodal Capabilities",
	"Search/Knowledge Integration",
	"Enterprise Adoption",
	"Speed/Latency",
	"Accuracy/Evaluation Benchmarks",
	"Tool Ecosystem",
	"Safety & Alignment",
}

// DefaultCategory is assigned to new entries.
func DefaultCategory() string { return Categories[0] }

// IsCategory reports whether label is one of Categories.
func IsCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Entry is one row of the leaderboard.
type Entry struct {
	ID       string
	Date     time.Time
	Category string
	Leader   string
	RunnerUp string
	Notes    string
}

// Field names an editable Entry column. Values match the persisted JSON keys.
type Field string

const (
	FieldDate     Field = "date"
	FieldCategory Field = "category"
	FieldLeader   Field = "leader"
	FieldRunnerUp Field = "runnerUp"
	FieldNotes    Field = "notes"
)

// Fields lists the editable columns in display order.
var Fields = []Field{FieldDate, FieldCategory, FieldLeader, FieldRunnerUp, FieldNotes}

// ParseField accepts the wire name or a case-insensitive alias ("runner-up", "runner_up").
func ParseField(s string) (Field, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "").Replace(norm)
	for _, f := range Fields {
		if strings.ToLower(string(f)) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// IsToolField reports whether values of f are tool names.
func (f Field) IsToolField() bool {
	return f == FieldLeader || f == FieldRunnerUp
}

// Value returns the text form of field f on e. Dates use layout.
func (e Entry) Value(f Field, layout string) string {
	switch f {
	case FieldDate:
		return e.Date.Format(layout)
	case FieldCategory:
		return e.Category
	case FieldLeader:
		return e.Leader
	case FieldRunnerUp:
		return e.RunnerUp
	case FieldNotes:
		return e.Notes
	}
	return ""
}

// dateLayouts are tried in order when parsing user or persisted date text.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses ISO-8601 text. Values without a zone are read as UTC, so a bare
// "2024-01-01" is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, time.UTC)
}

// ParseDateIn is ParseDate with zone-less values read in loc, so a bare date is
// midnight where the user is. A nil loc means UTC.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
