package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recert/clustercrypto/internal/artifact"
	"github.com/recert/clustercrypto/internal/persistence"
)

func TestDiskWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bbolt")

	w, err := persistence.OpenDiskWriter(path, nil)
	require.NoError(t, err)
	defer w.Close()

	loc := artifact.Location{Kind: artifact.KindFile, Path: "leaf.crt"}
	require.NoError(t, w.CommitAtLocation(context.Background(), loc, []byte("hello")))

	got, err := w.Get(loc)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestDiskWriterIgnoresEtcdLocations(t *testing.T) {
	dir := t.TempDir()
	w, err := persistence.OpenDiskWriter(filepath.Join(dir, "test.bbolt"), nil)
	require.NoError(t, err)
	defer w.Close()

	loc := artifact.Location{Kind: artifact.KindEtcd, Path: "/etcd/key"}
	require.NoError(t, w.CommitAtLocation(context.Background(), loc, []byte("ignored")))

	got, err := w.Get(loc)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCompositeDispatchesByLocationKind(t *testing.T) {
	dir := t.TempDir()
	disk, err := persistence.OpenDiskWriter(filepath.Join(dir, "test.bbolt"), nil)
	require.NoError(t, err)
	defer disk.Close()

	etcd := persistence.NewEtcdShim()
	composite := persistence.Composite{Etcd: etcd, Disk: disk}

	fileLoc := artifact.Location{Kind: artifact.KindFile, Path: "a"}
	etcdLoc := artifact.Location{Kind: artifact.KindEtcd, Path: "b"}

	require.NoError(t, composite.CommitAtLocation(context.Background(), fileLoc, []byte("file")))
	require.NoError(t, composite.CommitAtLocation(context.Background(), etcdLoc, []byte("etcd")))

	diskVal, err := disk.Get(fileLoc)
	require.NoError(t, err)
	require.Equal(t, []byte("file"), diskVal)

	etcdVal, ok := etcd.Get(etcdLoc)
	require.True(t, ok)
	require.Equal(t, []byte("etcd"), etcdVal)
}

func TestEtcdShimHasRunID(t *testing.T) {
	e := persistence.NewEtcdShim()
	require.NotEmpty(t, e.RunID())
}
