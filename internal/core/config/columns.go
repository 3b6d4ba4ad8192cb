package config

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/gridedit/internal/core/grid"
)

// Matches reports whether the rule applies to a column ID.
func (r ColumnRule) Matches(columnID string) bool {
	ok, err := doublestar.Match(r.Match, columnID)
	return err == nil && ok
}

// ApplyColumns layers the column rules over a dataset's columns. Rules are
// applied in order so later matches override earlier ones. Patterns are
// assumed valid; run ValidateDeep first.
func (c *Config) ApplyColumns(ds *grid.Dataset) {
	for _, col := range ds.Columns() {
		for _, rule := range c.Columns {
			if !rule.Matches(col.ID) {
				continue
			}
			rule.apply(col)
		}
	}
}

func (r ColumnRule) apply(col *grid.Column) {
	if r.Editable != nil {
		col.Editable = *r.Editable
	}
	if r.SingleClickEdit != nil {
		if *r.SingleClickEdit {
			col.ClickToEdit = 1
		} else {
			col.ClickToEdit = 2
		}
	}
	if r.Type != "" {
		col.Type = grid.ValueType(r.Type)
	}

	v := &col.Validation
	if r.Required {
		v.Required = true
	}
	if r.MinLength > 0 {
		v.MinLength = r.MinLength
	}
	if r.MaxLength > 0 {
		v.MaxLength = r.MaxLength
	}
	if r.Pattern != "" {
		if re, err := regexp.Compile(r.Pattern); err == nil {
			v.Pattern = re
		}
	}
	if r.Min != nil {
		minV := *r.Min
		v.Min = &minV
	}
	if r.Max != nil {
		maxV := *r.Max
		v.Max = &maxV
	}
}
