// Package snapshot loads the degraded-mode entity snapshot the retrieval
// service falls back to when the primary source is exhausted.  A snapshot is
// a JSON array of entities exported by a previous scoring run.
package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// Loader reads a snapshot from its configured source.
type Loader struct {
	cfg    config.SnapshotConfig
	logger logging.Logger
}

// NewLoader constructs a Loader for the configured source.
func NewLoader(cfg config.SnapshotConfig, logger logging.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger.Named("snapshot")}
}

// Load reads and decodes the snapshot.  Returns CodeSnapshotUnavailable when
// the source cannot be read or the payload is not a valid entity array.
func (l *Loader) Load(ctx context.Context) ([]*entity.Entity, error) {
	var (
		reader io.ReadCloser
		err    error
	)
	switch l.cfg.Source {
	case "file":
		reader, err = l.openFile()
	case "s3":
		reader, err = l.openS3(ctx)
	default:
		return nil, apperrors.Newf(apperrors.CodeSnapshotUnavailable,
			"unknown snapshot source %q", l.cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var entities []*entity.Entity
	if err := json.NewDecoder(reader).Decode(&entities); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSnapshotUnavailable,
			"failed to decode snapshot")
	}

	l.logger.Info("snapshot loaded",
		logging.String("source", l.cfg.Source),
		logging.Int("entities", len(entities)),
	)
	return entities, nil
}

func (l *Loader) openFile() (io.ReadCloser, error) {
	f, err := os.Open(l.cfg.Path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSnapshotUnavailable,
			"failed to open snapshot file").WithDetail("path=" + l.cfg.Path)
	}
	return f, nil
}

func (l *Loader) openS3(ctx context.Context) (io.ReadCloser, error) {
	client, err := minio.New(l.cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(l.cfg.S3AccessKey, l.cfg.S3SecretKey, ""),
		Secure: l.cfg.S3UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSnapshotUnavailable,
			"failed to create s3 client")
	}
	obj, err := client.GetObject(ctx, l.cfg.S3Bucket, l.cfg.S3Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSnapshotUnavailable,
			"failed to fetch snapshot object").
			WithDetail("bucket=" + l.cfg.S3Bucket + " object=" + l.cfg.S3Object)
	}
	return obj, nil
}

// Write serialises entities as a snapshot JSON array to w.  The scorer uses
// this to export a snapshot after a successful run.
func Write(w io.Writer, entities []*entity.Entity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entities); err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode snapshot")
	}
	return nil
}
