// Package schema defines the column/table metadata the row codec and
// catalog share: types, widths, and the per-column validation rules
// the query layer leans on before handing values to the codec.
package schema

import (
	"strconv"
	"strings"

	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
)

// ColumnType enumerates the fixed set of column types the row codec
// understands.
type ColumnType int

const (
	Integer ColumnType = iota
	Float
	Varchar
	Boolean
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Varchar:
		return "Varchar"
	case Boolean:
		return "Boolean"
	case Timestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// Column describes one field of a table's row layout.
type Column struct {
	Name         string     `json:"name" yaml:"name" bson:"name"`
	Type         ColumnType `json:"type" yaml:"type" bson:"type"`
	MaxLen       int        `json:"max_len,omitempty" yaml:"max_len,omitempty" bson:"max_len,omitempty"` // only meaningful for Varchar
	Nullable     bool       `json:"nullable" yaml:"nullable" bson:"nullable"`
	IsPrimaryKey bool       `json:"is_primary_key" yaml:"is_primary_key" bson:"is_primary_key"`
	IsUnique     bool       `json:"is_unique" yaml:"is_unique" bson:"is_unique"`
	Default      *string    `json:"default,omitempty" yaml:"default,omitempty" bson:"default,omitempty"`
}

// Width returns the column's nominal encoded width in bytes: the
// number of bytes the row codec always advances by for this column,
// regardless of the actual payload available at decode time.
func (c Column) Width() int {
	switch c.Type {
	case Integer, Float, Timestamp:
		return 8
	case Boolean:
		return 1
	case Varchar:
		return 4 + c.MaxLen
	default:
		return 0
	}
}

// Schema is an ordered list of columns. Column order defines the byte
// layout of every row payload for the table.
type Schema struct {
	Columns []Column `json:"columns" yaml:"columns" bson:"columns"`
}

// New validates and constructs a Schema for table tableName: column
// names must be unique and exactly one column must be marked as the
// primary key.
func New(tableName string, columns []Column) (Schema, error) {
	primaryCount := 0
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c.Name] {
			return Schema{}, &lsmerrors.DuplicateColumnError{Table: tableName, Column: c.Name}
		}
		seen[c.Name] = true
		if c.IsPrimaryKey {
			primaryCount++
		}
	}
	if primaryCount > 1 {
		return Schema{}, &lsmerrors.TwoPrimarykeysError{Total: primaryCount}
	}
	if primaryCount == 0 && len(columns) > 0 {
		return Schema{}, &lsmerrors.PrimarykeyNotDefinedError{TableName: tableName}
	}
	return Schema{Columns: columns}, nil
}

// Column returns the column named name, if present.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Offset returns the byte offset of column name within an encoded row:
// the sum of the nominal widths of every preceding column in schema order.
func (s Schema) Offset(name string) (int, bool) {
	offset := 0
	for _, c := range s.Columns {
		if c.Name == name {
			return offset, true
		}
		offset += c.Width()
	}
	return 0, false
}

// RowWidth returns the total nominal encoded width of a full row.
func (s Schema) RowWidth() int {
	total := 0
	for _, c := range s.Columns {
		total += c.Width()
	}
	return total
}

// PrimaryKey returns the schema's single primary-key column.
func (s Schema) PrimaryKey() (Column, bool) {
	for _, c := range s.Columns {
		if c.IsPrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks a textual literal against a column's type and
// constraints, canonicalizing varchar by stripping one layer of
// surrounding quotes (mirroring the row codec's encode-side behavior).
func (c Column) Validate(value string) error {
	switch c.Type {
	case Integer, Timestamp:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return &lsmerrors.TypeMismatchError{Column: c.Name, Expected: c.Type.String(), Got: value}
		}
	case Float:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return &lsmerrors.TypeMismatchError{Column: c.Name, Expected: c.Type.String(), Got: value}
		}
	case Boolean:
		clean := Unquote(value)
		if clean != "true" && clean != "false" && clean != "0" && clean != "1" {
			return &lsmerrors.TypeMismatchError{Column: c.Name, Expected: c.Type.String(), Got: value}
		}
	case Varchar:
		clean := Unquote(value)
		if c.MaxLen > 0 && len(clean) > c.MaxLen {
			return &lsmerrors.TypeMismatchError{Column: c.Name, Expected: c.Type.String(), Got: value}
		}
	}
	return nil
}

// Unquote strips one layer of surrounding single or double quotes from
// a literal, the canonicalization the encode side of the row codec
// applies before measuring a varchar's length.
func Unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
