// Package grid holds the row and column entities the editor works on and
// the YAML-backed dataset that owns them.
package grid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	ErrRowNotFound    = errors.New("row not found")
	ErrColumnNotFound = errors.New("column not found")
)

// Dataset is an ordered set of columns, pinned rows and body rows.
type Dataset struct {
	columns []*Column
	pinned  []*Row
	rows    []*Row

	rowsByID map[string]*Row
	colsByID map[string]*Column
}

// New builds a dataset from columns and body rows. Rows without an ID get
// a generated one.
func New(columns []*Column, rows []*Row) *Dataset {
	ds := &Dataset{columns: columns, rows: rows}
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
	}
	ds.reindex()
	return ds
}

// Pin adds a pinned-top mirror of the row with the given ID. The mirror
// shares the source row's data and the two rows become siblings.
func (ds *Dataset) Pin(sourceID, id string) (*Row, error) {
	src, ok := ds.rowsByID[sourceID]
	if !ok || src.Pinned != PinnedNone {
		return nil, fmt.Errorf("pin %q: %w", sourceID, ErrRowNotFound)
	}
	if id == "" {
		id = "pinned-" + sourceID
	}
	if src.Data == nil {
		src.Data = make(map[string]any)
	}

	mirror := &Row{
		ID:      id,
		Data:    src.Data,
		Group:   src.Group,
		Pinned:  PinnedTop,
		Sibling: src,
	}
	src.Sibling = mirror
	ds.pinned = append(ds.pinned, mirror)
	ds.reindex()
	return mirror, nil
}

func (ds *Dataset) reindex() {
	ds.rowsByID = make(map[string]*Row, len(ds.rows)+len(ds.pinned))
	ds.colsByID = make(map[string]*Column, len(ds.columns))

	for i, c := range ds.columns {
		c.Index = i
		ds.colsByID[c.ID] = c
	}

	for i, r := range ds.DisplayRows() {
		r.Index = i
		ds.rowsByID[r.ID] = r
	}
}

// Columns returns the columns in display order.
func (ds *Dataset) Columns() []*Column {
	return ds.columns
}

// Rows returns the body rows in display order.
func (ds *Dataset) Rows() []*Row {
	return ds.rows
}

// PinnedRows returns the pinned-top rows.
func (ds *Dataset) PinnedRows() []*Row {
	return ds.pinned
}

// DisplayRows returns pinned rows followed by body rows.
func (ds *Dataset) DisplayRows() []*Row {
	out := make([]*Row, 0, len(ds.pinned)+len(ds.rows))
	out = append(out, ds.pinned...)
	return append(out, ds.rows...)
}

// RowCount returns the number of display rows.
func (ds *Dataset) RowCount() int {
	return len(ds.pinned) + len(ds.rows)
}

// RowAt returns the display row at index i.
func (ds *Dataset) RowAt(i int) (*Row, bool) {
	if i < 0 || i >= ds.RowCount() {
		return nil, false
	}
	if i < len(ds.pinned) {
		return ds.pinned[i], true
	}
	return ds.rows[i-len(ds.pinned)], true
}

// RowByID looks up a row by ID.
func (ds *Dataset) RowByID(id string) (*Row, bool) {
	r, ok := ds.rowsByID[id]
	return r, ok
}

// ColumnByID looks up a column by ID.
func (ds *Dataset) ColumnByID(id string) (*Column, bool) {
	c, ok := ds.colsByID[id]
	return c, ok
}

// Contains reports whether the row entity is still part of the dataset.
func (ds *Dataset) Contains(row *Row) bool {
	if row == nil {
		return false
	}
	r, ok := ds.rowsByID[row.ID]
	return ok && r == row
}

// HasColumn reports whether the column entity is still part of the dataset.
func (ds *Dataset) HasColumn(col *Column) bool {
	if col == nil {
		return false
	}
	c, ok := ds.colsByID[col.ID]
	return ok && c == col
}

// RowsInRange returns the display rows covered by a range.
func (ds *Dataset) RowsInRange(r CellRange) []*Row {
	start, end := r.StartRow, r.EndRow
	if start > end {
		start, end = end, start
	}
	var out []*Row
	for i := start; i <= end; i++ {
		if row, ok := ds.RowAt(i); ok {
			out = append(out, row)
		}
	}
	return out
}

// Merge replaces the dataset's contents with other while keeping the
// identity of rows and columns whose IDs exist in both. Pending edits keyed
// by those entities stay valid; entities missing from other become stale.
func (ds *Dataset) Merge(other *Dataset) {
	columns := make([]*Column, 0, len(other.columns))
	for _, nc := range other.columns {
		if c, ok := ds.colsByID[nc.ID]; ok {
			c.Header = nc.Header
			c.Type = nc.Type
			c.Editable = nc.Editable
			c.ClickToEdit = nc.ClickToEdit
			columns = append(columns, c)
			continue
		}
		columns = append(columns, nc)
	}

	rows := make([]*Row, 0, len(other.rows))
	for _, nr := range other.rows {
		r, ok := ds.rowsByID[nr.ID]
		if !ok || r.Pinned != PinnedNone {
			nr.Sibling = nil
			rows = append(rows, nr)
			continue
		}
		r.Group = nr.Group
		r.Level = nr.Level
		r.Sibling = nil
		r.Data = replaceData(r.Data, nr.Data)
		rows = append(rows, r)
	}

	oldPinned := make(map[string]*Row, len(ds.pinned))
	for _, p := range ds.pinned {
		oldPinned[p.ID] = p
	}

	ds.columns = columns
	ds.rows = rows
	ds.pinned = nil
	ds.reindex()

	for _, p := range other.pinned {
		if p.Sibling == nil {
			continue
		}
		src, ok := ds.rowsByID[p.Sibling.ID]
		if !ok {
			continue
		}
		mirror, ok := oldPinned[p.ID]
		if !ok {
			_, _ = ds.Pin(src.ID, p.ID)
			continue
		}
		if src.Data == nil {
			src.Data = make(map[string]any)
		}
		mirror.Data = src.Data
		mirror.Group = src.Group
		mirror.Sibling = src
		src.Sibling = mirror
		ds.pinned = append(ds.pinned, mirror)
	}
	ds.reindex()
}

// replaceData updates dst in place so pinned mirrors sharing the map see
// the new values.
func replaceData(dst, src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	if dst == nil {
		return src
	}
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type datasetFile struct {
	Columns []columnFile `yaml:"columns"`
	Rows    []rowFile    `yaml:"rows"`
}

type columnFile struct {
	ID          string    `yaml:"id"`
	Header      string    `yaml:"header,omitempty"`
	Type        ValueType `yaml:"type,omitempty"`
	Editable    *bool     `yaml:"editable,omitempty"`
	ClickToEdit int       `yaml:"click_to_edit,omitempty"`
}

type rowFile struct {
	ID         string         `yaml:"id,omitempty"`
	Group      bool           `yaml:"group,omitempty"`
	Level      int            `yaml:"level,omitempty"`
	PinnedFrom string         `yaml:"pinned_from,omitempty"`
	Data       map[string]any `yaml:"data,omitempty"`
}

// Parse decodes a YAML dataset.
func Parse(data []byte) (*Dataset, error) {
	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	seen := make(map[string]bool, len(file.Columns))
	columns := make([]*Column, 0, len(file.Columns))
	for i, cf := range file.Columns {
		if cf.ID == "" {
			return nil, fmt.Errorf("columns[%d]: id is required", i)
		}
		if seen[cf.ID] {
			return nil, fmt.Errorf("columns[%d]: duplicate id %q", i, cf.ID)
		}
		if !cf.Type.Valid() {
			return nil, fmt.Errorf("columns[%d]: invalid type %q", i, cf.Type)
		}
		seen[cf.ID] = true

		typ := cf.Type
		if typ == "" {
			typ = TypeString
		}
		editable := true
		if cf.Editable != nil {
			editable = *cf.Editable
		}
		columns = append(columns, &Column{
			ID:          cf.ID,
			Header:      cf.Header,
			Type:        typ,
			Editable:    editable,
			ClickToEdit: cf.ClickToEdit,
		})
	}

	var (
		rows   []*Row
		pinned []rowFile
	)
	for _, rf := range file.Rows {
		if rf.PinnedFrom != "" {
			pinned = append(pinned, rf)
			continue
		}
		rows = append(rows, &Row{
			ID:    rf.ID,
			Data:  rf.Data,
			Group: rf.Group,
			Level: rf.Level,
		})
	}

	ds := New(columns, rows)
	if len(ds.rowsByID) != len(rows) {
		return nil, fmt.Errorf("parse dataset: duplicate row ids")
	}

	for _, rf := range pinned {
		if _, err := ds.Pin(rf.PinnedFrom, rf.ID); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
	}

	return ds, nil
}

// Load reads a YAML dataset from path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the dataset as YAML. Generated row IDs are written so
// row identity survives a save/load cycle.
func (ds *Dataset) Marshal() ([]byte, error) {
	file := datasetFile{
		Columns: make([]columnFile, 0, len(ds.columns)),
		Rows:    make([]rowFile, 0, len(ds.rows)+len(ds.pinned)),
	}

	for _, c := range ds.columns {
		editable := c.Editable
		file.Columns = append(file.Columns, columnFile{
			ID:          c.ID,
			Header:      c.Header,
			Type:        c.Type,
			Editable:    &editable,
			ClickToEdit: c.ClickToEdit,
		})
	}

	for _, r := range ds.rows {
		file.Rows = append(file.Rows, rowFile{
			ID:    r.ID,
			Group: r.Group,
			Level: r.Level,
			Data:  r.Data,
		})
	}
	for _, p := range ds.pinned {
		rf := rowFile{ID: p.ID}
		if p.Sibling != nil {
			rf.PinnedFrom = p.Sibling.ID
		}
		file.Rows = append(file.Rows, rf)
	}

	return yaml.Marshal(file)
}

// Save writes the dataset to path atomically.
func (ds *Dataset) Save(path string) error {
	data, err := ds.Marshal()
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
