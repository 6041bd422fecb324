// Package catalog persists the table-name-to-schema map and owns one
// LSM engine per table.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/google/uuid"

	cockroacherr "github.com/cockroachdb/errors"

	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
	"github.com/arrowdb/lsmdb/pkg/lsm"
	"github.com/arrowdb/lsmdb/pkg/schema"
)

// Uploader is the off-box backup hook FlushAll calls after a
// successful flush, if one is configured. *backup.Client satisfies
// this without the catalog package importing the AWS SDK directly.
type Uploader interface {
	UploadTable(ctx context.Context, tableName, tableDir string) error
	UploadManifest(ctx context.Context, manifestPath string) error
}

const manifestFileName = "tables.json"

// table is the catalog's in-memory record for one table: its schema
// and its owned engine.
type table struct {
	schema schema.Schema
	engine *lsm.Engine
}

// Catalog owns the schema manifest and one engine per table.
type Catalog struct {
	dataDir        string
	defaultMemSize int
	engineOptions  []lsm.Option
	uploader       Uploader
	tables         map[string]*table
}

// Option configures a Catalog at Load time.
type Option func(*Catalog)

// WithEngineOptions passes lsm.Option values through to every table's
// engine, letting a loaded configuration override the compaction
// threshold and WAL sync policy for the whole catalog.
func WithEngineOptions(opts ...lsm.Option) Option {
	return func(c *Catalog) { c.engineOptions = opts }
}

// WithUploader registers an off-box backup hook; a nil Uploader (the
// default) disables backup entirely.
func WithUploader(u Uploader) Option {
	return func(c *Catalog) { c.uploader = u }
}

// manifest is the on-disk shape of tables.json: table name to schema.
type manifest map[string]schema.Schema

// Load opens (creating if necessary) the catalog rooted at dataDir.
// It parses the manifest if present — a parse failure is fatal — and
// instantiates one engine per table; a failure restoring a single
// table's engine is logged as a warning and that table is skipped, so
// a partially recoverable database is still usable.
func Load(dataDir string, defaultMemSize int, opts ...Option) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, cockroacherr.Wrapf(err, "catalog: create dir %s", dataDir)
	}

	c := &Catalog{
		dataDir:        dataDir,
		defaultMemSize: defaultMemSize,
		tables:         make(map[string]*table),
	}
	for _, opt := range opts {
		opt(c)
	}

	m, err := readManifest(c.manifestPath())
	if err != nil {
		return nil, cockroacherr.Wrapf(err, "catalog: parse manifest %s", c.manifestPath())
	}

	for name, s := range m {
		eng, err := lsm.New(name, c.tableDir(name), defaultMemSize, c.engineOptions...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "catalog: warning: skipping table %q: %v\n", name, err)
			continue
		}
		c.tables[name] = &table{schema: s, engine: eng}
	}

	return c, nil
}

// Create registers a new table and its backing engine. It fails if
// the table already exists.
func (c *Catalog) Create(name string, s schema.Schema) error {
	if _, exists := c.tables[name]; exists {
		return &lsmerrors.TableAlreadyExistsError{Name: name}
	}

	eng, err := lsm.New(name, c.tableDir(name), c.defaultMemSize, c.engineOptions...)
	if err != nil {
		return err
	}
	c.tables[name] = &table{schema: s, engine: eng}

	if err := c.saveManifest(); err != nil {
		return err
	}
	return nil
}

// Drop removes a table's directory and manifest entry. It fails if
// the table does not exist.
func (c *Catalog) Drop(name string) error {
	t, exists := c.tables[name]
	if !exists {
		return &lsmerrors.TableNotFoundError{Name: name}
	}
	_ = t.engine.Close()
	delete(c.tables, name)

	if err := os.RemoveAll(c.tableDir(name)); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: warning: failed to remove directory for %q: %v\n", name, err)
	}
	return c.saveManifest()
}

// List returns every known table name.
func (c *Catalog) List() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// Open returns the schema and engine for name.
func (c *Catalog) Open(name string) (schema.Schema, *lsm.Engine, error) {
	t, exists := c.tables[name]
	if !exists {
		return schema.Schema{}, nil, &lsmerrors.TableNotFoundError{Name: name}
	}
	return t.schema, t.engine, nil
}

// FlushAll flushes every table's engine, then best-effort uploads each
// table's directory and the manifest if an Uploader is configured — a
// backup failure is logged, not returned, since it never participates
// in read/write correctness.
func (c *Catalog) FlushAll() error {
	for name, t := range c.tables {
		if err := t.engine.Flush(); err != nil {
			return cockroacherr.Wrapf(err, "catalog: flush %s", name)
		}
	}

	if c.uploader != nil {
		ctx := context.Background()
		for name := range c.tables {
			if err := c.uploader.UploadTable(ctx, name, c.tableDir(name)); err != nil {
				fmt.Fprintf(os.Stderr, "catalog: warning: backup upload failed for %q: %v\n", name, err)
			}
		}
		if err := c.uploader.UploadManifest(ctx, c.manifestPath()); err != nil {
			fmt.Fprintf(os.Stderr, "catalog: warning: backup upload failed for manifest: %v\n", err)
		}
	}
	return nil
}

func (c *Catalog) tableDir(name string) string {
	return filepath.Join(c.dataDir, name)
}

func (c *Catalog) manifestPath() string {
	return filepath.Join(c.dataDir, manifestFileName)
}

// saveManifest rewrites tables.json in full via a temp-file-plus-rename
// so a crash mid-write cannot leave the manifest corrupt.
func (c *Catalog) saveManifest() error {
	m := make(manifest, len(c.tables))
	for name, t := range c.tables {
		m[name] = t.schema
	}

	extJSON, err := bson.MarshalExtJSONIndent(m, true, false, "", "  ")
	if err != nil {
		return cockroacherr.Wrap(err, "catalog: marshal manifest")
	}

	tmpPath := c.manifestPath() + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, extJSON, 0o644); err != nil {
		return cockroacherr.Wrapf(err, "catalog: write temp manifest %s", tmpPath)
	}
	if err := os.Rename(tmpPath, c.manifestPath()); err != nil {
		os.Remove(tmpPath)
		return cockroacherr.Wrapf(err, "catalog: rename manifest into place")
	}
	return nil
}

func readManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, nil
		}
		return nil, err
	}
	var m manifest
	if err := bson.UnmarshalExtJSON(data, false, &m); err != nil {
		return nil, err
	}
	return m, nil
}
