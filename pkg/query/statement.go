package query

import "github.com/arrowdb/lsmdb/pkg/schema"

// StatementKind identifies which of the handful of supported
// statement shapes a parsed statement holds.
type StatementKind int

const (
	KindCreateTable StatementKind = iota
	KindDropTable
	KindInsert
	KindUpdate
	KindDelete
	KindSelect
)

// AggregateFunc is one of the supported SELECT aggregate functions.
type AggregateFunc int

const (
	AggNone AggregateFunc = iota
	AggCount
	AggSum
	AggAvg
	AggMin
	AggMax
)

// SelectColumn is either a plain column reference or an aggregate
// function applied to a column (Func != AggNone).
type SelectColumn struct {
	Func   AggregateFunc
	Column string
}

// JoinClause is a hash inner join: the other table, and the two
// columns (one per side) the join equates.
type JoinClause struct {
	Table      string
	LeftTable  string
	LeftColumn string
	RightColumn string
}

// Statement is the parsed form of one query-layer statement. Only the
// fields relevant to Kind are populated.
type Statement struct {
	Kind StatementKind

	Table string // CreateTable, DropTable, Insert, Update, Delete, Select (the FROM table)

	// CreateTable
	Columns []schema.Column

	// Insert
	InsertColumns []string
	InsertValues  []string

	// Update
	Assignments map[string]string

	// Update, Delete, Select
	Where *Predicate

	// Select
	SelectAll     bool
	SelectColumns []SelectColumn
	Join          *JoinClause
	GroupBy       string
}
