// Package backup uploads a table's SST files and the catalog manifest
// to an S3-compatible bucket. It is wired as a genuinely optional,
// side-effecting post-flush hook: nothing on the read/write path
// depends on it, and a nil *Client (no backup configured) is a valid,
// inert value every caller can hold onto unconditionally.
package backup

import (
	"context"
	"os"
	"path"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/config"
)

// Client uploads files to one configured bucket/prefix.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// New builds a Client from backup settings. It returns (nil, nil) when
// cfg is disabled, so callers can treat a nil *Client as "backup off"
// without a separate enabled flag.
func New(ctx context.Context, cfg config.Backup) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, cockroacherr.Wrap(err, "backup: load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
	})

	return &Client{s3: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// UploadTable uploads every file directly inside tableDir (a table's
// SST files and WAL) under <prefix>/<tableName>/.
func (c *Client) UploadTable(ctx context.Context, tableName, tableDir string) error {
	entries, err := os.ReadDir(tableDir)
	if err != nil {
		return cockroacherr.Wrapf(err, "backup: read dir %s", tableDir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		localPath := filepath.Join(tableDir, entry.Name())
		key := c.key(tableName, entry.Name())
		if err := c.uploadFile(ctx, localPath, key); err != nil {
			return err
		}
	}
	return nil
}

// UploadManifest uploads the catalog's tables.json under the
// configured prefix.
func (c *Client) UploadManifest(ctx context.Context, manifestPath string) error {
	return c.uploadFile(ctx, manifestPath, c.key("", filepath.Base(manifestPath)))
}

func (c *Client) uploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return cockroacherr.Wrapf(err, "backup: open %s", localPath)
	}
	defer f.Close()

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return cockroacherr.Wrapf(err, "backup: upload %s to s3://%s/%s", localPath, c.bucket, key)
	}
	return nil
}

func (c *Client) key(tableName, fileName string) string {
	if tableName == "" {
		return path.Join(c.prefix, fileName)
	}
	return path.Join(c.prefix, tableName, fileName)
}
