package grid

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation holds the validation rules for a column's values.
type Validation struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Min       *float64
	Max       *float64
}

// Check validates a value against the rules and returns the failure
// messages. A nil or empty result means the value is valid.
func (v Validation) Check(col *Column, value any) []string {
	if value == nil || value == "" {
		if v.Required {
			return []string{"required"}
		}
		return nil
	}

	var msgs []string

	if s, ok := value.(string); ok {
		n := utf8.RuneCountInString(s)
		if v.MinLength > 0 && n < v.MinLength {
			msgs = append(msgs, fmt.Sprintf("minimum %d characters", v.MinLength))
		}
		if v.MaxLength > 0 && n > v.MaxLength {
			msgs = append(msgs, fmt.Sprintf("maximum %d characters", v.MaxLength))
		}
		if v.Pattern != nil && !v.Pattern.MatchString(s) {
			msgs = append(msgs, fmt.Sprintf("must match pattern: %s", v.Pattern.String()))
		}
	}

	if col != nil && col.Type == TypeNumber {
		f, ok := toFloat(value)
		if !ok {
			return append(msgs, "must be a number")
		}
		if v.Min != nil && f < *v.Min {
			msgs = append(msgs, fmt.Sprintf("must be at least %s", col.Format(*v.Min)))
		}
		if v.Max != nil && f > *v.Max {
			msgs = append(msgs, fmt.Sprintf("must be at most %s", col.Format(*v.Max)))
		}
	}

	return msgs
}
