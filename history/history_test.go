package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/matrix3d/dataset"
	"github.com/mogaika/matrix3d/grid"
)

func TestRecordAndList(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		err := db.Record(&dataset.Snapshot{
			Revision: name + "-rev",
			Name:     name,
			LoadedAt: base.Add(time.Duration(i) * time.Minute),
			Layout: &grid.Layout{
				Rows:   2,
				Cols:   3,
				Bounds: grid.Bounds{Min: 1, Max: float64(10 + i)},
				Cells:  make([]grid.CellDescriptor, 4),
			},
		})
		require.NoError(t, err)
	}

	entries, err := db.List(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "third.csv", entries[0].Name)
	assert.Equal(t, "second.csv", entries[1].Name)
	assert.Equal(t, 4, entries[0].Bars)
	assert.Equal(t, 12.0, entries[0].Max)
	assert.True(t, entries[0].LoadedAt.Equal(base.Add(2*time.Minute)))
}

func TestRecordDuplicateRevision(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	snap := &dataset.Snapshot{Revision: "r", Name: "a.csv", LoadedAt: time.Now(), Layout: &grid.Layout{}}
	require.NoError(t, db.Record(snap))
	assert.Error(t, db.Record(snap))
}
