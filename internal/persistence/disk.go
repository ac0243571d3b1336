package persistence

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	bolt "go.etcd.io/bbolt"

	"github.com/recert/clustercrypto/internal/artifact"
	"github.com/recert/clustercrypto/internal/cryptograph"
)

var bucketName = []byte("recertgraph")

// DiskWriter persists committed artifacts into a bbolt database in a single
// bucket, keyed by Location.String() (kind and path, with Location.SubPath
// appended when present to keep multiple embedded payloads in one file
// distinct).
type DiskWriter struct {
	db *bolt.DB
}

var _ cryptograph.Committer = (*DiskWriter)(nil)

// OpenDiskWriter opens (creating if absent) a bbolt database at path. fs
// stages the parent directory: it is checked and created through fs before
// bbolt ever touches the real filesystem, so callers can point an in-memory
// afero.Fs at the directory half of this setup (directory layout, permission
// checks) even though bbolt's own file handle always goes through the OS.
func OpenDiskWriter(path string, fs afero.Fs) (*DiskWriter, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create directory for %s", path)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt database %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}

	return &DiskWriter{db: db}, nil
}

// CommitAtLocation writes serialized under loc's key, ignoring etcd-kind
// locations (those belong to EtcdShim).
func (d *DiskWriter) CommitAtLocation(ctx context.Context, loc artifact.Location, serialized []byte) error {
	if loc.Kind != artifact.KindFile {
		return nil
	}
	key := []byte(loc.String())
	err := d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, serialized)
	})
	if err != nil {
		return errors.Wrapf(err, "commit %s to disk", loc)
	}
	return nil
}

// Get returns the value committed at loc, if any.
func (d *DiskWriter) Get(loc artifact.Location) ([]byte, error) {
	var value []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(loc.String()))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// Close releases the underlying bbolt database.
func (d *DiskWriter) Close() error {
	return d.db.Close()
}

// Composite dispatches each commit to the etcd shim or the disk writer by
// Location.Kind, giving the graph engine a single cryptograph.Committer
// that covers both backing stores.
type Composite struct {
	Etcd *EtcdShim
	Disk *DiskWriter
}

var _ cryptograph.Committer = Composite{}

func (c Composite) CommitAtLocation(ctx context.Context, loc artifact.Location, serialized []byte) error {
	switch loc.Kind {
	case artifact.KindEtcd:
		return c.Etcd.CommitAtLocation(ctx, loc, serialized)
	case artifact.KindFile:
		return c.Disk.CommitAtLocation(ctx, loc, serialized)
	default:
		return errors.Errorf("commit: unknown location kind %v", loc.Kind)
	}
}
