package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdb/lsmdb/pkg/catalog"
	"github.com/arrowdb/lsmdb/pkg/query"
)

func newEngine(t *testing.T) *query.Engine {
	t.Helper()
	c, err := catalog.Load(t.TempDir(), 64)
	require.NoError(t, err)
	return query.New(c)
}

func TestCreateInsertSelect(t *testing.T) {
	e := newEngine(t)

	_, err := e.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(50))`)
	require.NoError(t, err)

	_, err = e.Execute(`INSERT INTO users (id, name) VALUES (1, 'Alice')`)
	require.NoError(t, err)
	_, err = e.Execute(`INSERT INTO users (id, name) VALUES (2, 'Bob')`)
	require.NoError(t, err)

	res, err := e.Execute(`SELECT * FROM users WHERE id = 2`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2", "Bob"}}, res.Rows)
}

func TestUpdateAndDelete(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(50))`)
	require.NoError(t, err)
	_, err = e.Execute(`INSERT INTO users (id, name) VALUES (1, 'Alice')`)
	require.NoError(t, err)

	_, err = e.Execute(`UPDATE users SET name = 'Alicia' WHERE id = 1`)
	require.NoError(t, err)

	res, err := e.Execute(`SELECT name FROM users WHERE id = 1`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alicia"}}, res.Rows)

	_, err = e.Execute(`DELETE FROM users WHERE id = 1`)
	require.NoError(t, err)

	res, err = e.Execute(`SELECT * FROM users`)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestDropTableThenSelectErrors(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = e.Execute(`DROP TABLE t`)
	require.NoError(t, err)

	_, err = e.Execute(`SELECT * FROM t`)
	assert.Error(t, err)
}

func TestJoinAndGroupByAggregate(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute(`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer VARCHAR(20), amount INTEGER)`)
	require.NoError(t, err)
	_, err = e.Execute(`CREATE TABLE customers (id INTEGER PRIMARY KEY, name VARCHAR(20))`)
	require.NoError(t, err)

	require.NoError(t, insertAll(e,
		`INSERT INTO customers (id, name) VALUES (1, 'Alice')`,
		`INSERT INTO customers (id, name) VALUES (2, 'Bob')`,
		`INSERT INTO orders (id, customer, amount) VALUES (1, '1', 10)`,
		`INSERT INTO orders (id, customer, amount) VALUES (2, '1', 20)`,
		`INSERT INTO orders (id, customer, amount) VALUES (3, '2', 5)`,
	))

	res, err := e.Execute(`SELECT SUM(amount) FROM orders GROUP BY customer`)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer", "SUM(amount)"}, res.Columns)
	assert.ElementsMatch(t, [][]string{{"1", "30"}, {"2", "5"}}, res.Rows)

	res, err = e.Execute(`SELECT * FROM orders JOIN customers ON orders.customer = customers.id WHERE id = 1`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "1", res.Rows[0][0])
}

func insertAll(e *query.Engine, stmts ...string) error {
	for _, s := range stmts {
		if _, err := e.Execute(s); err != nil {
			return err
		}
	}
	return nil
}
