package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".brux"))

	c := NewCurve()
	c.Add(18, 80)
	c.Add(6, 20)
	c.Add(12.25, 55.5)
	require.NoError(t, store.Save(c.Points()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, c.Points(), loaded)
}

func TestStoreWritesListOfPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	store := NewStore(path)

	require.NoError(t, store.Save([]HourValue{{Hour: 6, Value: 20}, {Hour: 18.5, Value: 80}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[[6,20],[18.5,80]]`, string(data))
}

func TestStoreLoadFailuresYieldEmptySchedule(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		points, err := NewStore(filepath.Join(dir, "missing")).Load()
		assert.NoError(t, err)
		assert.Empty(t, points)
		assert.NotNil(t, points)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		points, err := NewStore(path).Load()
		assert.Error(t, err)
		assert.Empty(t, points)
	})

	t.Run("wrong arity", func(t *testing.T) {
		path := filepath.Join(dir, "triples")
		require.NoError(t, os.WriteFile(path, []byte("[[1,2,3]]"), 0o644))

		points, err := NewStore(path).Load()
		assert.Error(t, err)
		assert.Empty(t, points)
	})

	t.Run("directory instead of file", func(t *testing.T) {
		points, err := NewStore(dir).Load()
		assert.Error(t, err)
		assert.Empty(t, points)
	})
}

func TestDecodeSortsAndClamps(t *testing.T) {
	points, err := Decode([]byte(`[[20, 150], [4, 10], [-1, 30]]`))
	require.NoError(t, err)
	assert.Equal(t, []HourValue{
		{Hour: 4, Value: 10},
		{Hour: 20, Value: 100},
		{Hour: 23, Value: 30},
	}, points)
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
