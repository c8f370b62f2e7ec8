// Package resource is the generic CRUD contract shared by every admin screen:
// a declarative description of each backend collection plus the screen state
// machine that lists, creates, edits, toggles, deletes and acts on records.
package resource

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// ColumnKind selects how a list cell is rendered.
type ColumnKind string

const (
	CellText   ColumnKind = "text"
	CellMoney  ColumnKind = "money"
	CellBool   ColumnKind = "bool"
	CellBadge  ColumnKind = "badge"
	CellDate   ColumnKind = "date"
	CellImage  ColumnKind = "image"
	CellStatus ColumnKind = "status"
)

// Column is one list table column. Path may be dotted ("user.fullName").
type Column struct {
	Label string
	Path  string
	Kind  ColumnKind
}

// Action is a single-field update sent to a dedicated endpoint, such as an
// order's status or payment status.
type Action struct {
	Name    string
	Label   string
	Field   string
	Suffix  string
	Options []Option
}

// Allows reports whether value is one of the action's options.
func (a Action) Allows(value string) bool {
	for _, o := range a.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Status is the label and tone of a record's status badge.
type Status struct {
	Label string
	Tone  string
}

// Definition describes one backend collection.
type Definition struct {
	// Slug is the URL segment the admin serves the screen under.
	Slug string
	// Title is the plural display name.
	Title string
	// Singular is used in toasts ("Product created successfully").
	Singular string
	// Path is the backend collection path.
	Path string
	// ListKey names the array in the list response.
	ListKey string

	Columns []Column
	Fields  []Field
	Search  []string
	Actions []Action

	CanCreate bool
	CanUpdate bool
	CanDelete bool
	// ToggleField, when set, is flipped by the toggle operation.
	ToggleField string
	// UploadField, when set, can be filled from an uploaded image.
	UploadField string
	// StatusFunc overrides the default active/inactive badge.
	StatusFunc func(rec fetanapi.Record, now time.Time) Status
}

// CanToggle reports whether the screen offers the toggle operation.
func (d *Definition) CanToggle() bool { return d.ToggleField != "" }

// Action returns the named action.
func (d *Definition) Action(name string) (Action, bool) {
	for _, a := range d.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// FormFields returns the fields shown on the create or edit form.
func (d *Definition) FormFields(creating bool) []Field {
	out := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.CreateOnly && !creating {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Status returns the badge shown for rec.
func (d *Definition) Status(rec fetanapi.Record, now time.Time) Status {
	if d.StatusFunc != nil {
		return d.StatusFunc(rec, now)
	}
	return activeStatus(rec)
}

func activeStatus(rec fetanapi.Record) Status {
	if Truthy(rec["isActive"]) {
		return Status{Label: "Active", Tone: "success"}
	}
	return Status{Label: "Inactive", Tone: "muted"}
}

// Lookup walks a dotted path through nested objects.
func Lookup(rec map[string]any, path string) any {
	var cur any = rec
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if r, isRec := cur.(fetanapi.Record); isRec {
				m = r
			} else {
				return nil
			}
		}
		cur = m[key]
	}
	return cur
}

// Display renders a JSON value as plain text.
func Display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, Display(it))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if name, ok := t["name"]; ok {
			return Display(name)
		}
		if name, ok := t["fullName"]; ok {
			return Display(name)
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+Display(t[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Float reads a numeric JSON value; anything else is 0.
func Float(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := ParseFloat(t)
		return f
	default:
		return 0
	}
}

// Money formats an amount with two decimals.
func Money(v any) string {
	return strconv.FormatFloat(Float(v), 'f', 2, 64)
}

// ParseTime reads the timestamp formats the backend emits.
func ParseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Filter keeps the records where any search path contains term,
// case-insensitively. An empty term keeps everything.
func Filter(records []fetanapi.Record, paths []string, term string) []fetanapi.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]fetanapi.Record, 0, len(records))
	for _, rec := range records {
		for _, p := range paths {
			if strings.Contains(strings.ToLower(Display(Lookup(rec, p))), term) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
