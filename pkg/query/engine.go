// Package query turns the small SQL-like surface described for the
// storage core into calls against a catalog.Catalog: CREATE/DROP TABLE,
// INSERT, UPDATE, DELETE, and SELECT with an optional single-predicate
// WHERE, a hash inner JOIN, and GROUP BY aggregates. It is a thin
// boundary layer — every row still passes through the row codec and
// lands in a per-table LSM engine exactly as it would from any other
// caller.
package query

import (
	"hash/fnv"
	"strconv"

	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/catalog"
	"github.com/arrowdb/lsmdb/pkg/codec"
	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
	"github.com/arrowdb/lsmdb/pkg/record"
	"github.com/arrowdb/lsmdb/pkg/schema"
	"github.com/arrowdb/lsmdb/pkg/types"
)

// Result is the shape every Execute call returns: a SELECT's rows
// (Columns names each entry of Rows), or a short human-readable
// Message for a DDL/DML statement.
type Result struct {
	Columns []string
	Rows    [][]string
	Message string
}

// Engine executes parsed statements against a catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// New wraps a catalog for statement execution.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Execute parses and runs a single statement.
func (e *Engine) Execute(stmt string) (Result, error) {
	s, err := Parse(stmt)
	if err != nil {
		return Result{}, err
	}

	switch s.Kind {
	case KindCreateTable:
		return e.execCreateTable(s)
	case KindDropTable:
		return e.execDropTable(s)
	case KindInsert:
		return e.execInsert(s)
	case KindUpdate:
		return e.execUpdate(s)
	case KindDelete:
		return e.execDelete(s)
	case KindSelect:
		return e.execSelect(s)
	default:
		return Result{}, &lsmerrors.SyntaxError{Statement: stmt}
	}
}

func (e *Engine) execCreateTable(s Statement) (Result, error) {
	sch, err := schema.New(s.Table, s.Columns)
	if err != nil {
		return Result{}, err
	}
	if err := e.catalog.Create(s.Table, sch); err != nil {
		return Result{}, err
	}
	return Result{Message: "table " + s.Table + " created"}, nil
}

func (e *Engine) execDropTable(s Statement) (Result, error) {
	if err := e.catalog.Drop(s.Table); err != nil {
		return Result{}, err
	}
	return Result{Message: "table " + s.Table + " dropped"}, nil
}

func (e *Engine) execInsert(s Statement) (Result, error) {
	sch, eng, err := e.catalog.Open(s.Table)
	if err != nil {
		return Result{}, err
	}

	values, err := positionalValues(sch, s.InsertColumns, s.InsertValues)
	if err != nil {
		return Result{}, err
	}
	for i, col := range sch.Columns {
		if err := col.Validate(values[i]); err != nil {
			return Result{}, err
		}
	}

	id, err := primaryKeyID(sch, values)
	if err != nil {
		return Result{}, err
	}
	payload, err := codec.Encode(sch, values)
	if err != nil {
		return Result{}, cockroacherr.Wrap(err, "query: encode row")
	}
	if err := eng.Insert(record.New(id, payload)); err != nil {
		return Result{}, err
	}
	return Result{Message: "1 row inserted"}, nil
}

func (e *Engine) execUpdate(s Statement) (Result, error) {
	sch, eng, err := e.catalog.Open(s.Table)
	if err != nil {
		return Result{}, err
	}
	if s.Where != nil {
		if err := s.Where.Resolve(sch); err != nil {
			return Result{}, err
		}
	}

	all, err := eng.GetAllRecords()
	if err != nil {
		return Result{}, err
	}

	updated := 0
	for _, r := range all {
		values := codec.Decode(sch, r.Payload)
		if s.Where != nil && !rowMatches(sch, values, *s.Where) {
			continue
		}
		for col, lit := range s.Assignments {
			idx := columnIndex(sch, col)
			if idx < 0 {
				return Result{}, &lsmerrors.ColumnNotFoundError{Table: s.Table, Column: col}
			}
			clean := schema.Unquote(lit)
			if err := sch.Columns[idx].Validate(lit); err != nil {
				return Result{}, err
			}
			values[idx] = clean
		}
		payload, err := codec.Encode(sch, values)
		if err != nil {
			return Result{}, cockroacherr.Wrap(err, "query: encode row")
		}
		if _, err := eng.Update(r.ID, payload); err != nil {
			return Result{}, err
		}
		updated++
	}
	return Result{Message: strconv.Itoa(updated) + " row(s) updated"}, nil
}

func (e *Engine) execDelete(s Statement) (Result, error) {
	sch, eng, err := e.catalog.Open(s.Table)
	if err != nil {
		return Result{}, err
	}
	if s.Where != nil {
		if err := s.Where.Resolve(sch); err != nil {
			return Result{}, err
		}
	}

	all, err := eng.GetAllRecords()
	if err != nil {
		return Result{}, err
	}

	deleted := 0
	for _, r := range all {
		if s.Where != nil {
			values := codec.Decode(sch, r.Payload)
			if !rowMatches(sch, values, *s.Where) {
				continue
			}
		}
		if ok, err := eng.Delete(r.ID); err != nil {
			return Result{}, err
		} else if ok {
			deleted++
		}
	}
	return Result{Message: strconv.Itoa(deleted) + " row(s) deleted"}, nil
}

// positionalValues expands an INSERT's (possibly partial, possibly
// column-named) value list into one value per schema column, in
// schema order, substituting each column's Default (or "" if none)
// where the statement supplied nothing.
func positionalValues(s schema.Schema, cols, vals []string) ([]string, error) {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		if col.Default != nil {
			out[i] = *col.Default
		}
	}

	if len(cols) == 0 {
		for i := range vals {
			if i >= len(out) {
				break
			}
			out[i] = vals[i]
		}
		return out, nil
	}

	if len(cols) != len(vals) {
		return nil, &lsmerrors.SyntaxError{Statement: "insert: column/value count mismatch"}
	}
	for i, name := range cols {
		idx := columnIndex(s, name)
		if idx < 0 {
			return nil, &lsmerrors.ColumnNotFoundError{Column: name}
		}
		out[idx] = vals[i]
	}
	return out, nil
}

func columnIndex(s schema.Schema, name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// primaryKeyID derives the row's u64 engine key from its primary key
// column's value: an Integer primary key is used as-is, anything else
// (Varchar, typically) is hashed into a stable u64 with FNV-1a.
func primaryKeyID(s schema.Schema, values []string) (uint64, error) {
	pk, ok := s.PrimaryKey()
	if !ok {
		return 0, &lsmerrors.PrimarykeyNotDefinedError{TableName: ""}
	}
	idx := columnIndex(s, pk.Name)
	raw := schema.Unquote(values[idx])

	if pk.Type == schema.Integer {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, &lsmerrors.TypeMismatchError{Column: pk.Name, Expected: pk.Type.String(), Got: raw}
		}
		return uint64(n), nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(raw))
	return h.Sum64(), nil
}

func rowMatches(s schema.Schema, values []string, p Predicate) bool {
	idx := columnIndex(s, p.Column)
	if idx < 0 {
		return false
	}
	col := s.Columns[idx]
	return p.Matches(types.ValueOf(col, values[idx]))
}

