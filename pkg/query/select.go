package query

import (
	"sort"
	"strconv"

	"github.com/arrowdb/lsmdb/pkg/codec"
	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
	"github.com/arrowdb/lsmdb/pkg/schema"
	"github.com/arrowdb/lsmdb/pkg/types"
)

// namedRow is a decoded row tagged with the schema that produced it,
// carried through filtering/join/aggregation so column lookups stay
// well defined even after two tables' rows have been combined.
type namedRow struct {
	schema schema.Schema
	values []string
}

func (e *Engine) execSelect(s Statement) (Result, error) {
	sch, eng, err := e.catalog.Open(s.Table)
	if err != nil {
		return Result{}, err
	}

	all, err := eng.GetAllRecords()
	if err != nil {
		return Result{}, err
	}
	rows := make([]namedRow, 0, len(all))
	for _, r := range all {
		rows = append(rows, namedRow{schema: sch, values: codec.Decode(sch, r.Payload)})
	}

	if s.Join != nil {
		rows, err = e.applyJoin(sch, rows, *s.Join)
		if err != nil {
			return Result{}, err
		}
	}

	if s.Where != nil {
		if err := s.Where.Resolve(sch); err != nil {
			return Result{}, err
		}
		filtered := rows[:0:0]
		for _, row := range rows {
			if rowMatches(row.schema, row.values, *s.Where) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if s.GroupBy != "" {
		return e.execGroupBy(sch, rows, s)
	}

	displaySchema := sch
	if s.Join != nil && len(rows) > 0 {
		displaySchema = rows[0].schema
	}
	return projectRows(displaySchema, rows, s)
}

// applyJoin performs a hash inner join: the smaller side's rows are
// indexed by the joined column's decoded value, then the other side
// probes the index.
func (e *Engine) applyJoin(leftSchema schema.Schema, left []namedRow, j JoinClause) ([]namedRow, error) {
	rightSchema, rightEngine, err := e.catalog.Open(j.Table)
	if err != nil {
		return nil, err
	}
	rightAll, err := rightEngine.GetAllRecords()
	if err != nil {
		return nil, err
	}
	right := make([]namedRow, 0, len(rightAll))
	for _, r := range rightAll {
		right = append(right, namedRow{schema: rightSchema, values: codec.Decode(rightSchema, r.Payload)})
	}

	build, probe := left, right
	buildSchema, probeSchema := leftSchema, rightSchema
	buildCol, probeCol := j.LeftColumn, j.RightColumn
	swapped := false
	if len(right) < len(left) {
		build, probe = right, left
		buildSchema, probeSchema = rightSchema, leftSchema
		buildCol, probeCol = j.RightColumn, j.LeftColumn
		swapped = true
	}

	idx, err := columnIndexed(buildSchema, buildCol)
	if err != nil {
		return nil, err
	}
	probeIdx, err := columnIndexed(probeSchema, probeCol)
	if err != nil {
		return nil, err
	}

	index := make(map[string][]namedRow, len(build))
	for _, row := range build {
		key := row.values[idx]
		index[key] = append(index[key], row)
	}

	var joined []namedRow
	for _, probeRow := range probe {
		matches := index[probeRow.values[probeIdx]]
		for _, buildRow := range matches {
			var leftRow, rightRow namedRow
			if swapped {
				leftRow, rightRow = probeRow, buildRow
			} else {
				leftRow, rightRow = buildRow, probeRow
			}
			joined = append(joined, combineRows(leftRow, rightRow))
		}
	}
	return joined, nil
}

// combineRows concatenates two matched rows' schemas and values into
// one wide row, so downstream WHERE/SELECT/GROUP BY can address either
// side's columns by name.
func combineRows(left, right namedRow) namedRow {
	cols := append(append([]schema.Column(nil), left.schema.Columns...), right.schema.Columns...)
	values := append(append([]string(nil), left.values...), right.values...)
	return namedRow{schema: schema.Schema{Columns: cols}, values: values}
}

func columnIndexed(s schema.Schema, name string) (int, error) {
	idx := columnIndex(s, name)
	if idx < 0 {
		return 0, &lsmerrors.ColumnNotFoundError{Column: name}
	}
	return idx, nil
}

func projectRows(sch schema.Schema, rows []namedRow, s Statement) (Result, error) {
	var cols []string
	if s.SelectAll {
		for _, c := range sch.Columns {
			cols = append(cols, c.Name)
		}
	} else {
		for _, sc := range s.SelectColumns {
			cols = append(cols, sc.Column)
		}
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, name := range cols {
			idx := columnIndex(row.schema, name)
			if idx < 0 {
				return Result{}, &lsmerrors.ColumnNotFoundError{Column: name}
			}
			rec[i] = row.values[idx]
		}
		out = append(out, rec)
	}
	return Result{Columns: cols, Rows: out}, nil
}

// execGroupBy partitions rows by the grouping column's decoded value
// and computes one aggregate column per requested SelectColumn.
func (e *Engine) execGroupBy(sch schema.Schema, rows []namedRow, s Statement) (Result, error) {
	groupIdx := columnIndex(sch, s.GroupBy)
	if groupIdx < 0 {
		return Result{}, &lsmerrors.ColumnNotFoundError{Column: s.GroupBy}
	}

	order := []string{}
	groups := map[string][]namedRow{}
	for _, row := range rows {
		key := row.values[groupIdx]
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	sort.Strings(order)

	cols := []string{s.GroupBy}
	for _, sc := range s.SelectColumns {
		cols = append(cols, aggregateLabel(sc))
	}

	out := make([][]string, 0, len(order))
	for _, key := range order {
		group := groups[key]
		rec := []string{key}
		for _, sc := range s.SelectColumns {
			val, err := computeAggregate(sch, group, sc)
			if err != nil {
				return Result{}, err
			}
			rec = append(rec, val)
		}
		out = append(out, rec)
	}
	return Result{Columns: cols, Rows: out}, nil
}

func aggregateLabel(sc SelectColumn) string {
	switch sc.Func {
	case AggCount:
		return "COUNT(" + sc.Column + ")"
	case AggSum:
		return "SUM(" + sc.Column + ")"
	case AggAvg:
		return "AVG(" + sc.Column + ")"
	case AggMin:
		return "MIN(" + sc.Column + ")"
	case AggMax:
		return "MAX(" + sc.Column + ")"
	default:
		return sc.Column
	}
}

func computeAggregate(sch schema.Schema, group []namedRow, sc SelectColumn) (string, error) {
	if sc.Func == AggCount {
		return strconv.Itoa(len(group)), nil
	}

	idx := columnIndex(sch, sc.Column)
	if idx < 0 {
		return "", &lsmerrors.ColumnNotFoundError{Column: sc.Column}
	}
	col := sch.Columns[idx]

	var sum float64
	var min, max types.Comparable
	for _, row := range group {
		v := types.ValueOf(col, row.values[idx])
		sum += numericValue(v)
		if min == nil || v.Compare(min) < 0 {
			min = v
		}
		if max == nil || v.Compare(max) > 0 {
			max = v
		}
	}

	switch sc.Func {
	case AggSum:
		return formatNumeric(sum), nil
	case AggAvg:
		if len(group) == 0 {
			return "0", nil
		}
		return formatNumeric(sum / float64(len(group))), nil
	case AggMin:
		return comparableString(min), nil
	case AggMax:
		return comparableString(max), nil
	default:
		return "", &lsmerrors.SyntaxError{Statement: "unsupported aggregate"}
	}
}

func numericValue(c types.Comparable) float64 {
	switch v := c.(type) {
	case types.IntKey:
		return float64(v)
	case types.FloatKey:
		return float64(v)
	default:
		return 0
	}
}

func formatNumeric(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func comparableString(c types.Comparable) string {
	if s, ok := c.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
