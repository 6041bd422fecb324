// Package types holds the ordered value representations the query
// layer compares a row's decoded fields against: one concrete type per
// schema.ColumnType, all satisfying Comparable.
package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arrowdb/lsmdb/pkg/schema"
)

// Comparable is the interface every typed column value implements.
type Comparable interface {
	Compare(other Comparable) int // -1 if less, 0 if equal, 1 if greater
}

// IntKey holds an Integer column's value.
type IntKey int64

func (k IntKey) Compare(other Comparable) int {
	o := other.(IntKey)
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// VarcharKey holds a Varchar column's value.
type VarcharKey string

func (k VarcharKey) Compare(other Comparable) int {
	o := other.(VarcharKey)
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// FloatKey holds a Float column's value.
type FloatKey float64

func (k FloatKey) Compare(other Comparable) int {
	o := other.(FloatKey)
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// BoolKey holds a Boolean column's value; false sorts before true.
type BoolKey bool

func (k BoolKey) Compare(other Comparable) int {
	o := other.(BoolKey)
	if k == o {
		return 0
	}
	if !k && o {
		return -1
	}
	return 1
}

// DateKey holds a Timestamp column's value as a time.Time; ValueOf
// builds it from the Unix second count the row codec encodes.
type DateKey time.Time

func (k DateKey) Compare(other Comparable) int {
	o := time.Time(other.(DateKey))
	t := time.Time(k)
	if t.Before(o) {
		return -1
	}
	if t.After(o) {
		return 1
	}
	return 0
}

func (k DateKey) String() string     { return time.Time(k).Format("2006-01-02 15:04:05") }
func (k IntKey) String() string      { return fmt.Sprintf("%d", int64(k)) }
func (k VarcharKey) String() string  { return string(k) }
func (k FloatKey) String() string    { return fmt.Sprintf("%f", float64(k)) }
func (k BoolKey) String() string     { return fmt.Sprintf("%t", bool(k)) }

// ValueOf converts a decoded row field (the string form the row codec's
// Decode produces) into the Comparable matching col's type, so the
// query layer can order and compare it against literals from a WHERE
// clause. An unparseable numeric/timestamp literal yields the zero
// value rather than an error: decode already tolerates truncated rows,
// and comparisons against a zero value are well defined.
func ValueOf(col schema.Column, raw string) Comparable {
	switch col.Type {
	case schema.Integer:
		n, _ := strconv.ParseInt(raw, 10, 64)
		return IntKey(n)
	case schema.Float:
		f, _ := strconv.ParseFloat(raw, 64)
		return FloatKey(f)
	case schema.Boolean:
		clean := schema.Unquote(raw)
		return BoolKey(clean == "true" || clean == "1")
	case schema.Timestamp:
		n, _ := strconv.ParseInt(raw, 10, 64)
		return DateKey(time.Unix(n, 0).UTC())
	case schema.Varchar:
		return VarcharKey(schema.Unquote(raw))
	default:
		return VarcharKey(raw)
	}
}
