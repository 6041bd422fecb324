package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowdb/lsmdb/pkg/record"
	"github.com/arrowdb/lsmdb/pkg/schema"
)

func usersSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.New("users", []schema.Column{
		{Name: "id", Type: schema.Integer, IsPrimaryKey: true},
		{Name: "name", Type: schema.Varchar, MaxLen: 50},
	})
	require.NoError(t, err)
	return s
}

func TestCreateRejectsDuplicateTable(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir, 100)
	require.NoError(t, err)

	require.NoError(t, c.Create("users", usersSchema(t)))
	err = c.Create("users", usersSchema(t))
	assert.Error(t, err)
}

func TestDropRemovesDirectoryAndManifestEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir, 100)
	require.NoError(t, err)
	require.NoError(t, c.Create("users", usersSchema(t)))

	require.NoError(t, c.Drop("users"))
	assert.Empty(t, c.List())

	_, err = os.Stat(filepath.Join(dir, "users"))
	assert.True(t, os.IsNotExist(err))

	_, _, err = c.Open("users")
	assert.Error(t, err)
}

func TestManifestSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir, 100)
	require.NoError(t, err)
	require.NoError(t, c.Create("users", usersSchema(t)))

	_, eng, err := c.Open("users")
	require.NoError(t, err)
	require.NoError(t, eng.Insert(record.New(1, []byte("payload"))))
	require.NoError(t, c.FlushAll())

	reloaded, err := Load(dir, 100)
	require.NoError(t, err)

	s, eng2, err := reloaded.Open("users")
	require.NoError(t, err)
	assert.Len(t, s.Columns, 2)

	r, ok, err := eng2.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(r.Payload))
}
