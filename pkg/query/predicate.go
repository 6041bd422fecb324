package query

import (
	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
	"github.com/arrowdb/lsmdb/pkg/schema"
	"github.com/arrowdb/lsmdb/pkg/types"
)

// Operator is a WHERE-clause comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
)

func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessOrEqual:
		return "<="
	default:
		return "?"
	}
}

// Predicate is a single `column OP literal` condition, the only shape
// of WHERE clause this layer accepts (no boolean composition).
type Predicate struct {
	Column   string
	Operator Operator
	Value    types.Comparable

	// valueLiteral is the raw token the parser saw; Value stays nil
	// until Resolve converts it using the target table's schema, since
	// the parser has no schema in scope.
	valueLiteral string
}

// Resolve converts the predicate's literal token into a typed
// Comparable using the column's declared type in s. It must run once
// per statement before Matches is called.
func (p *Predicate) Resolve(s schema.Schema) error {
	col, ok := s.Column(p.Column)
	if !ok {
		return &lsmerrors.ColumnNotFoundError{Table: "", Column: p.Column}
	}
	if err := col.Validate(p.valueLiteral); err != nil {
		return err
	}
	p.Value = types.ValueOf(col, p.valueLiteral)
	return nil
}

// Matches reports whether a row's decoded value for the predicate's
// column satisfies the condition.
func (p Predicate) Matches(value types.Comparable) bool {
	switch p.Operator {
	case OpEqual:
		return value.Compare(p.Value) == 0
	case OpNotEqual:
		return value.Compare(p.Value) != 0
	case OpGreaterThan:
		return value.Compare(p.Value) > 0
	case OpGreaterOrEqual:
		return value.Compare(p.Value) >= 0
	case OpLessThan:
		return value.Compare(p.Value) < 0
	case OpLessOrEqual:
		return value.Compare(p.Value) <= 0
	default:
		return false
	}
}

func operatorFromToken(tok string) (Operator, bool) {
	switch tok {
	case "=", "==":
		return OpEqual, true
	case "!=", "<>":
		return OpNotEqual, true
	case ">":
		return OpGreaterThan, true
	case ">=":
		return OpGreaterOrEqual, true
	case "<":
		return OpLessThan, true
	case "<=":
		return OpLessOrEqual, true
	default:
		return 0, false
	}
}
