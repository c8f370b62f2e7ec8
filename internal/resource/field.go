package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// FieldType decides how a form value is rendered and coerced.
type FieldType string

const (
	Text     FieldType = "text"
	Textarea FieldType = "textarea"
	Email    FieldType = "email"
	URL      FieldType = "url"
	Password FieldType = "password"
	Select   FieldType = "select"
	Date     FieldType = "date"
	Number   FieldType = "number"
	Integer  FieldType = "integer"
	List     FieldType = "list"
	Bool     FieldType = "bool"
)

// InputType is the HTML input type used for the field.
func (f Field) InputType() string {
	switch f.Type {
	case Number, Integer:
		return "number"
	case Email, URL, Password, Date:
		return string(f.Type)
	default:
		return "text"
	}
}

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one editable field of a resource.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Options     []Option
	Required    bool
	Placeholder string
	// Default prefills the create form.
	Default string
	// CreateOnly fields are sent on create and omitted on update.
	CreateOnly bool
	// Nullable numeric and date fields submit null instead of a zero value
	// when the input is empty, zero or malformed.
	Nullable bool
}

// boolOptions is the select used by every Bool field.
var boolOptions = []Option{{Value: "true", Label: "Active"}, {Value: "false", Label: "Inactive"}}

// Choices returns the options to render for the field.
func (f Field) Choices() []Option {
	if f.Type == Bool && len(f.Options) == 0 {
		return boolOptions
	}
	return f.Options
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseFloat reads the leading decimal number of s, ignoring surrounding
// whitespace and trailing garbage ("12.5kg" is 12.5).
func ParseFloat(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseInt reads the leading integer of s ("12abc" is 12, "3.9" is 3).
func ParseInt(s string) (int64, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitList turns comma separated text into a trimmed list without empty
// entries. Empty input yields an empty, non-nil list.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Coerce converts one raw form value into the value submitted for the field.
// Malformed numbers never fail: they become 0, or nil for Nullable fields.
func (f Field) Coerce(raw string) any {
	switch f.Type {
	case Number:
		if v, ok := ParseFloat(raw); ok && !(f.Nullable && v == 0) {
			return v
		}
		return f.zero()
	case Integer:
		if v, ok := ParseInt(raw); ok && !(f.Nullable && v == 0) {
			return v
		}
		return f.zero()
	case List:
		return SplitList(raw)
	case Bool:
		return raw == "true"
	case Date:
		if f.Nullable && strings.TrimSpace(raw) == "" {
			return nil
		}
		return raw
	default:
		return raw
	}
}

func (f Field) zero() any {
	if f.Nullable {
		return nil
	}
	if f.Type == Integer {
		return int64(0)
	}
	return float64(0)
}

// FormValue renders a record's value as the text a form input starts with.
// A nil record yields the create form default.
func (f Field) FormValue(rec map[string]any) string {
	v, ok := rec[f.Name]
	if !ok || v == nil {
		if f.Default != "" {
			return f.Default
		}
		if f.Type == Bool {
			return "false"
		}
		return ""
	}
	switch f.Type {
	case Bool:
		return strconv.FormatBool(Truthy(v))
	case List:
		if items, ok := v.([]any); ok {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, fmt.Sprint(it))
			}
			return strings.Join(parts, ", ")
		}
	case Date:
		if s, ok := v.(string); ok && len(s) >= 10 {
			return s[:10]
		}
	case Password:
		return ""
	}
	return Display(v)
}

// ValidationError lists required fields that were left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// BuildPayload validates required-field presence and coerces every field the
// operation sends. creating selects whether CreateOnly fields are included.
func BuildPayload(fields []Field, values url.Values, creating bool) (map[string]any, error) {
	payload := make(map[string]any, len(fields))
	var missing []string
	for _, f := range fields {
		if f.CreateOnly && !creating {
			continue
		}
		raw := values.Get(f.Name)
		if f.Required && strings.TrimSpace(raw) == "" {
			missing = append(missing, f.Label)
			continue
		}
		payload[f.Name] = f.Coerce(raw)
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	return payload, nil
}

// Truthy interprets a JSON value as a boolean flag.
func Truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0
	case float64:
		return b != 0
	default:
		return false
	}
}
