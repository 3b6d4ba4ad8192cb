package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType is the underlying value type of a column.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeBool   ValueType = "bool"
)

// Valid reports whether t is a known value type. The empty type is treated
// as string.
func (t ValueType) Valid() bool {
	switch t {
	case "", TypeString, TypeNumber, TypeBool:
		return true
	}
	return false
}

// Column describes one column of the grid.
type Column struct {
	ID     string
	Header string
	Type   ValueType

	// Editable is the static editability flag. EditableFunc, when set,
	// takes precedence and is consulted per row.
	Editable     bool
	EditableFunc func(row *Row) bool

	// ClickToEdit overrides the grid-wide click count that starts editing.
	// 0 means "use the grid default".
	ClickToEdit int

	Validation Validation

	// Index is the column's position in display order.
	Index int
}

// IsEditable reports whether the column allows editing for the given row.
// Group and tree-data rules are layered on top of this by the editing
// service.
func (c *Column) IsEditable(row *Row) bool {
	if c == nil {
		return false
	}
	if c.EditableFunc != nil {
		return c.EditableFunc(row)
	}
	return c.Editable
}

// Title returns the header text, falling back to the column ID.
func (c *Column) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

// Coerce converts v to the column's underlying type. Values that cannot be
// represented (a non-numeric string in a number column) become nil.
func (c *Column) Coerce(v any) any {
	if v == nil {
		return nil
	}

	switch c.Type {
	case TypeNumber:
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) {
			return nil
		}
		return f
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b
		case string:
			parsed, err := parseBool(b)
			if err != nil {
				return nil
			}
			return parsed
		}
		return nil
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

// Parse converts text typed into an editor into a column value. Empty
// text parses to nil.
func (c *Column) Parse(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	switch c.Type {
	case TypeNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", text)
		}
		return f, nil
	case TypeBool:
		b, err := parseBool(text)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return text, nil
	}
}

// Format renders a column value as editor/display text.
func (c *Column) Format(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// Validate runs the column's validation rules against a value.
func (c *Column) Validate(v any) []string {
	if c == nil {
		return nil
	}
	return c.Validation.Check(c, v)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
