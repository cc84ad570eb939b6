package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/matrix"
)

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(format string, a ...interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, fmt.Sprintf(format, a...))
}

func (n *recordingNotifier) Error(format string, a ...interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, fmt.Sprintf(format, a...))
}

type countingRecorder struct {
	snaps []*Snapshot
}

func (r *countingRecorder) Record(s *Snapshot) error {
	r.snaps = append(r.snaps, s)
	return nil
}

func newTestStore() *Store {
	return NewStore(matrix.Options{Malformed: matrix.PolicyFail}, grid.DefaultConfig())
}

func TestStoreEmpty(t *testing.T) {
	_, err := newTestStore().Current()
	assert.Equal(t, ErrNoDataset, err)
}

func TestStoreLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n0,5\n10,0\n"), 0644))

	s := newTestStore()
	n := &recordingNotifier{}
	r := &countingRecorder{}
	s.SetNotifier(n)
	s.SetRecorder(r)

	snap, err := s.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "matrix.csv", snap.Name)
	assert.NotEmpty(t, snap.Revision)
	assert.Equal(t, grid.Bounds{Min: 5, Max: 10}, snap.Layout.Bounds)
	assert.Equal(t, path, s.Path())

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)
	assert.Len(t, n.infos, 1)
	assert.Len(t, r.snaps, 1)
}

func TestStoreFailedLoadKeepsSnapshot(t *testing.T) {
	s := newTestStore()
	n := &recordingNotifier{}
	s.SetNotifier(n)

	first, err := s.LoadBytes("good.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	_, err = s.LoadBytes("bad.csv", []byte("a,b\n1,x\n"))
	var cellErr *matrix.MalformedCellError
	require.True(t, errors.As(err, &cellErr))

	_, err = s.LoadBytes("zeros.csv", []byte("a,b\n0,0\n"))
	var emptyErr *grid.EmptyInputError
	require.True(t, errors.As(err, &emptyErr))

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
	assert.Len(t, n.errors, 2)
}

func TestStoreLoadReaderFormats(t *testing.T) {
	s := newTestStore()

	snap, err := s.LoadReader("m.tsv", strings.NewReader("a\tb\n1\t2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Layout.Cols)

	snap2, err := s.LoadReader("m.csv", strings.NewReader("a,b,c\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, snap2.Layout.Cols)
	assert.NotEqual(t, snap.Revision, snap2.Revision)
}

func TestStoreWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	s := newTestStore()
	first, err := s.LoadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	require.Eventually(t, func() bool {
		// rewrite until the watcher is up and picks the change
		os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0644)
		cur, err := s.Current()
		return err == nil && cur != first && cur.Layout.Cols == 3
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestStoreWatchWithoutFile(t *testing.T) {
	assert.Error(t, newTestStore().Watch(context.Background()))
}
