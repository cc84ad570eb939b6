// Package dataset keeps the currently displayed matrix and its layout.
//
// Every successful load produces a new immutable Snapshot; readers never see a
// partially built one and a failed load leaves the previous snapshot in place.
package dataset

import (
	"bytes"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/matrix"
)

var ErrNoDataset = errors.New("no dataset loaded")

type Snapshot struct {
	Revision string
	Name     string
	LoadedAt time.Time
	Matrix   *matrix.Matrix
	Layout   *grid.Layout
}

type Notifier interface {
	Info(format string, a ...interface{})
	Error(format string, a ...interface{})
}

type Recorder interface {
	Record(s *Snapshot) error
}

type Store struct {
	opts matrix.Options
	cfg  grid.Config

	notifier Notifier
	recorder Recorder

	mu      sync.RWMutex
	path    string
	current *Snapshot
}

func NewStore(opts matrix.Options, cfg grid.Config) *Store {
	return &Store{opts: opts, cfg: cfg}
}

func (s *Store) SetNotifier(n Notifier) { s.notifier = n }

func (s *Store) SetRecorder(r Recorder) { s.recorder = r }

func (s *Store) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// LoadFile loads path and remembers it as the watched input.
func (s *Store) LoadFile(path string) (*Snapshot, error) {
	m, err := matrix.Load(path, s.opts)
	if err != nil {
		s.fail(path, err)
		return nil, err
	}

	snap, err := s.publish(filepath.Base(path), m)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return snap, nil
}

// LoadReader loads an uploaded matrix. The format is picked from name's extension.
func (s *Store) LoadReader(name string, r io.Reader) (*Snapshot, error) {
	var m *matrix.Matrix
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		m, err = matrix.ReadXLSX(r, s.opts)
	case ".tsv":
		opts := s.opts
		opts.Comma = '\t'
		m, err = matrix.ParseCSV(r, opts)
	default:
		m, err = matrix.ParseCSV(r, s.opts)
	}
	if err != nil {
		s.fail(name, err)
		return nil, err
	}

	return s.publish(name, m)
}

func (s *Store) LoadBytes(name string, data []byte) (*Snapshot, error) {
	return s.LoadReader(name, bytes.NewReader(data))
}

func (s *Store) publish(name string, m *matrix.Matrix) (*Snapshot, error) {
	layout, err := grid.Map(m, s.cfg)
	if err != nil {
		s.fail(name, err)
		return nil, err
	}

	snap := &Snapshot{
		Revision: uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now(),
		Matrix:   m,
		Layout:   layout,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	log.Printf("[dataset] %s: %dx%d, %d bars, bounds [%g, %g] rev %s",
		name, layout.Rows, layout.Cols, len(layout.Cells), layout.Bounds.Min, layout.Bounds.Max, snap.Revision)
	if s.notifier != nil {
		s.notifier.Info("Loaded %s: %dx%d, %d bars", name, layout.Rows, layout.Cols, len(layout.Cells))
	}
	if s.recorder != nil {
		if err := s.recorder.Record(snap); err != nil {
			log.Printf("[dataset] Failed to record load of %s: %v", name, err)
		}
	}
	return snap, nil
}

func (s *Store) fail(name string, err error) {
	log.Printf("[dataset] Failed to load %s: %v", name, err)
	if s.notifier != nil {
		s.notifier.Error("Failed to load %s: %v", name, err)
	}
}
