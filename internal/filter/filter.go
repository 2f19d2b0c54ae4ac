// Package filter evaluates user-authored predicates against leads: the
// ad hoc rule builder (field/operator/value triples ANDed together) plus
// the free-text search box, and the named saved views that persist rule
// sets between sessions.
package filter

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/luminacrm/lumina/internal/entity"
)

type Operator string

const (
	OpContains Operator = "contains"
	OpEquals   Operator = "equals"
	OpGT       Operator = "gt"
	OpLT       Operator = "lt"
)

type FieldType string

const (
	TypeText   FieldType = "text"
	TypeEnum   FieldType = "enum"
	TypeNumber FieldType = "number"
)

// Field describes one filterable lead attribute.
type Field struct {
	Name    string
	Label   string
	Type    FieldType
	Options []string // enum fields only
}

// Fields is the whitelist of filterable attributes, in menu order.
var Fields = []Field{
	{Name: "status", Label: "Status", Type: TypeEnum, Options: statusOptions()},
	{Name: "source", Label: "Source", Type: TypeEnum, Options: sourceOptions()},
	{Name: "value", Label: "Value", Type: TypeNumber},
	{Name: "company", Label: "Company", Type: TypeText},
	{Name: "name", Label: "Name", Type: TypeText},
}

func statusOptions() []string {
	out := make([]string, len(entity.Statuses))
	for i, s := range entity.Statuses {
		out[i] = s.String()
	}
	return out
}

func sourceOptions() []string {
	out := make([]string, len(entity.Sources))
	for i, s := range entity.Sources {
		out[i] = s.String()
	}
	return out
}

// FieldByName returns the whitelist entry, or false for anything outside
// the whitelist.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// OperatorsFor lists the operators compatible with a field type, first
// entry being the default.
func OperatorsFor(t FieldType) []Operator {
	switch t {
	case TypeEnum:
		return []Operator{OpEquals}
	case TypeNumber:
		return []Operator{OpGT, OpLT, OpEquals}
	default:
		return []Operator{OpContains, OpEquals}
	}
}

// Rule is a single user-authored predicate. Value is always carried as a
// string and coerced at evaluation time.
type Rule struct {
	ID       string   `yaml:"id" json:"id"`
	Field    string   `yaml:"field" json:"field"`
	Operator Operator `yaml:"operator" json:"operator"`
	Value    string   `yaml:"value" json:"value"`
}

// NewRule returns the builder's default rule: status equals New.
func NewRule() Rule {
	return Rule{
		ID:       uuid.New().String(),
		Field:    "status",
		Operator: OpEquals,
		Value:    entity.StatusNew.String(),
	}
}

// SetField switches the rule to another field. The operator resets to
// the new type's default and the value to "" (or the first enum option),
// so a stale operator/value pair can never survive a field change.
func (r *Rule) SetField(name string) {
	f, ok := FieldByName(name)
	if !ok {
		return
	}
	r.Field = f.Name
	r.Operator = OperatorsFor(f.Type)[0]
	r.Value = ""
	if f.Type == TypeEnum && len(f.Options) > 0 {
		r.Value = f.Options[0]
	}
}

// Matches reports whether a single lead satisfies the rule. Unknown
// fields and operator/value pairs that do not coerce are non-matches,
// never errors.
func (r Rule) Matches(l entity.Lead) bool {
	f, ok := FieldByName(r.Field)
	if !ok {
		return false
	}

	fieldVal := leadField(l, f.Name)
	switch r.Operator {
	case OpEquals:
		if f.Type == TypeNumber {
			return numericCompare(fieldVal, r.Value, func(a, b float64) bool { return a == b })
		}
		return strings.EqualFold(strings.TrimSpace(fieldVal), strings.TrimSpace(r.Value))
	case OpContains:
		return strings.Contains(strings.ToLower(fieldVal), strings.ToLower(r.Value))
	case OpGT:
		return numericCompare(fieldVal, r.Value, func(a, b float64) bool { return a > b })
	case OpLT:
		return numericCompare(fieldVal, r.Value, func(a, b float64) bool { return a < b })
	}
	return false
}

func leadField(l entity.Lead, name string) string {
	switch name {
	case "status":
		return l.Status.String()
	case "source":
		return l.Source.String()
	case "value":
		return strconv.FormatFloat(l.Value, 'f', -1, 64)
	case "company":
		return l.Company
	case "name":
		return l.Name
	}
	return ""
}

// numericCompare parses both sides; either side failing to parse is a
// non-match rather than an error.
func numericCompare(a, b string, cmp func(a, b float64) bool) bool {
	fa, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return false
	}
	fb, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return false
	}
	return cmp(fa, fb)
}

// MatchesSearch is the free-text search: case-insensitive substring over
// name, email and company. An empty query matches everything.
func MatchesSearch(l entity.Lead, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Email), q) ||
		strings.Contains(strings.ToLower(l.Company), q)
}

// Match combines the rule list (AND) with the search query (AND).
func Match(l entity.Lead, rules []Rule, query string) bool {
	for _, r := range rules {
		if !r.Matches(l) {
			return false
		}
	}
	return MatchesSearch(l, query)
}

// Apply filters a snapshot, preserving its order.
func Apply(leads []entity.Lead, rules []Rule, query string) []entity.Lead {
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if Match(l, rules, query) {
			out = append(out, l)
		}
	}
	return out
}
