package query

import (
	"strconv"
	"strings"

	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
	"github.com/arrowdb/lsmdb/pkg/schema"
)

// Parse turns one statement's source text into a Statement. It accepts
// the handful of forms listed in the package doc comment and nothing
// else — no subqueries, no boolean WHERE composition, no ORDER BY.
func Parse(stmt string) (Statement, error) {
	toks, err := tokenize(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	if err != nil {
		return Statement{}, err
	}
	if len(toks) == 0 {
		return Statement{}, &lsmerrors.SyntaxError{Statement: stmt}
	}

	switch upper(toks[0]) {
	case "CREATE":
		return parseCreateTable(stmt, toks)
	case "DROP":
		return parseDropTable(stmt, toks)
	case "INSERT":
		return parseInsert(stmt, toks)
	case "UPDATE":
		return parseUpdate(stmt, toks)
	case "DELETE":
		return parseDelete(stmt, toks)
	case "SELECT":
		return parseSelect(stmt, toks)
	default:
		return Statement{}, &lsmerrors.SyntaxError{Statement: stmt}
	}
}

func parseCreateTable(src string, toks []string) (Statement, error) {
	if len(toks) < 4 || upper(toks[1]) != "TABLE" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	name := toks[2]
	if toks[3] != "(" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}

	var cols []schema.Column
	i := 4
	for i < len(toks) && toks[i] != ")" {
		if toks[i] == "," {
			i++
			continue
		}
		col := schema.Column{Name: toks[i]}
		i++
		if i >= len(toks) {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		typeTok := upper(toks[i])
		i++
		switch typeTok {
		case "INTEGER", "INT":
			col.Type = schema.Integer
		case "FLOAT", "DOUBLE":
			col.Type = schema.Float
		case "BOOLEAN", "BOOL":
			col.Type = schema.Boolean
		case "TIMESTAMP":
			col.Type = schema.Timestamp
		case "VARCHAR":
			col.Type = schema.Varchar
			col.MaxLen = 255
			if i < len(toks) && toks[i] == "(" {
				i++
				n, err := strconv.Atoi(toks[i])
				if err != nil {
					return Statement{}, &lsmerrors.SyntaxError{Statement: src}
				}
				col.MaxLen = n
				i++
				if i >= len(toks) || toks[i] != ")" {
					return Statement{}, &lsmerrors.SyntaxError{Statement: src}
				}
				i++
			}
		default:
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}

		for i < len(toks) {
			switch upper(toks[i]) {
			case "PRIMARY":
				if i+1 < len(toks) && upper(toks[i+1]) == "KEY" {
					col.IsPrimaryKey = true
					i += 2
					continue
				}
			case "UNIQUE":
				col.IsUnique = true
				i++
				continue
			case "NOT":
				if i+1 < len(toks) && upper(toks[i+1]) == "NULL" {
					i += 2
					continue
				}
			case "NULL":
				col.Nullable = true
				i++
				continue
			}
			break
		}
		cols = append(cols, col)
	}
	if i >= len(toks) || toks[i] != ")" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}

	return Statement{Kind: KindCreateTable, Table: name, Columns: cols}, nil
}

func parseDropTable(src string, toks []string) (Statement, error) {
	if len(toks) < 3 || upper(toks[1]) != "TABLE" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	return Statement{Kind: KindDropTable, Table: toks[2]}, nil
}

func parseInsert(src string, toks []string) (Statement, error) {
	if len(toks) < 3 || upper(toks[1]) != "INTO" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	name := toks[2]
	i := 3

	var cols []string
	if i < len(toks) && toks[i] == "(" {
		i++
		for i < len(toks) && toks[i] != ")" {
			if toks[i] != "," {
				cols = append(cols, toks[i])
			}
			i++
		}
		if i >= len(toks) {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		i++ // consume ")"
	}

	if i >= len(toks) || upper(toks[i]) != "VALUES" || i+1 >= len(toks) || toks[i+1] != "(" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	i += 2

	var vals []string
	for i < len(toks) && toks[i] != ")" {
		if toks[i] != "," {
			vals = append(vals, toks[i])
		}
		i++
	}
	if i >= len(toks) {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}

	return Statement{Kind: KindInsert, Table: name, InsertColumns: cols, InsertValues: vals}, nil
}

func parseUpdate(src string, toks []string) (Statement, error) {
	if len(toks) < 4 || upper(toks[2]) != "SET" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	name := toks[1]
	i := 3

	assignments := make(map[string]string)
	for i < len(toks) && upper(toks[i]) != "WHERE" {
		if toks[i] == "," {
			i++
			continue
		}
		if i+2 >= len(toks) || toks[i+1] != "=" {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		assignments[toks[i]] = toks[i+2]
		i += 3
	}

	stmtOut := Statement{Kind: KindUpdate, Table: name, Assignments: assignments}
	if i < len(toks) {
		where, err := parseWhere(src, toks[i:])
		if err != nil {
			return Statement{}, err
		}
		stmtOut.Where = where
	}
	return stmtOut, nil
}

func parseDelete(src string, toks []string) (Statement, error) {
	if len(toks) < 3 || upper(toks[1]) != "FROM" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	stmtOut := Statement{Kind: KindDelete, Table: toks[2]}
	if len(toks) > 3 {
		where, err := parseWhere(src, toks[3:])
		if err != nil {
			return Statement{}, err
		}
		stmtOut.Where = where
	}
	return stmtOut, nil
}

func parseSelect(src string, toks []string) (Statement, error) {
	i := 1
	stmtOut := Statement{Kind: KindSelect}

	if i < len(toks) && toks[i] == "*" {
		stmtOut.SelectAll = true
		i++
	} else {
		for i < len(toks) && upper(toks[i]) != "FROM" {
			if toks[i] == "," {
				i++
				continue
			}
			col, consumed, err := parseSelectColumn(src, toks[i:])
			if err != nil {
				return Statement{}, err
			}
			stmtOut.SelectColumns = append(stmtOut.SelectColumns, col)
			i += consumed
		}
	}

	if i >= len(toks) || upper(toks[i]) != "FROM" {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	i++
	if i >= len(toks) {
		return Statement{}, &lsmerrors.SyntaxError{Statement: src}
	}
	stmtOut.Table = toks[i]
	i++

	if i < len(toks) && upper(toks[i]) == "JOIN" {
		if i+5 >= len(toks) || upper(toks[i+2]) != "ON" {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		join := &JoinClause{Table: toks[i+1]}
		left := strings.SplitN(toks[i+3], ".", 2)
		right := strings.SplitN(toks[i+5], ".", 2)
		if len(left) != 2 || len(right) != 2 || toks[i+4] != "=" {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		join.LeftTable, join.LeftColumn = left[0], left[1]
		join.RightColumn = right[1]
		stmtOut.Join = join
		i += 6
	}

	if i < len(toks) && upper(toks[i]) == "WHERE" {
		end := i + 1
		for end < len(toks) && upper(toks[end]) != "GROUP" {
			end++
		}
		where, err := parseWhere(src, toks[i:end])
		if err != nil {
			return Statement{}, err
		}
		stmtOut.Where = where
		i = end
	}

	if i < len(toks) && upper(toks[i]) == "GROUP" {
		if i+2 >= len(toks) || upper(toks[i+1]) != "BY" {
			return Statement{}, &lsmerrors.SyntaxError{Statement: src}
		}
		stmtOut.GroupBy = toks[i+2]
		i += 3
	}

	return stmtOut, nil
}

func parseSelectColumn(src string, toks []string) (SelectColumn, int, error) {
	fn := AggNone
	switch upper(toks[0]) {
	case "COUNT":
		fn = AggCount
	case "SUM":
		fn = AggSum
	case "AVG":
		fn = AggAvg
	case "MIN":
		fn = AggMin
	case "MAX":
		fn = AggMax
	}
	if fn == AggNone {
		return SelectColumn{Column: toks[0]}, 1, nil
	}
	if len(toks) < 4 || toks[1] != "(" || toks[3] != ")" {
		return SelectColumn{}, 0, &lsmerrors.SyntaxError{Statement: src}
	}
	return SelectColumn{Func: fn, Column: toks[2]}, 4, nil
}

// parseWhere parses `WHERE col op val` from a token slice beginning
// with "WHERE".
func parseWhere(src string, toks []string) (*Predicate, error) {
	if len(toks) < 4 || upper(toks[0]) != "WHERE" {
		return nil, &lsmerrors.SyntaxError{Statement: src}
	}
	op, ok := operatorFromToken(toks[2])
	if !ok {
		return nil, &lsmerrors.SyntaxError{Statement: src}
	}
	return &Predicate{Column: toks[1], Operator: op, valueLiteral: toks[3]}, nil
}
