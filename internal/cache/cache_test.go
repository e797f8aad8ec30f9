package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/co2focus/internal/dataset/datasettest"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"), true, DefaultTTLSeconds)
	require.NoError(t, err)
	return s
}

func TestFileStore(t *testing.T) {
	s := newTestStore(t)
	data := json.RawMessage(`{"foo":"bar"}`)

	t.Run("miss", func(t *testing.T) {
		_, err := s.Get("absent")
		assert.ErrorIs(t, err, ErrCacheNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set("k/1", "source.csv", data))
		entry, err := s.Get("k/1")
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(entry.Data))
		assert.Equal(t, "source.csv", entry.Source)
		assert.Equal(t, 24*time.Hour, entry.ExpiresAt.Sub(entry.CreatedAt))

		_, statErr := os.Stat(filepath.Join(s.Directory(), "k_1.json"))
		require.NoError(t, statErr)
	})

	t.Run("count and delete", func(t *testing.T) {
		require.NoError(t, s.Set("k2", "", data))
		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, s.Delete("k2"))
		require.NoError(t, s.Delete("k2"))
		n, err = s.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("expired entries are removed", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		defer func() { s.now = time.Now }()

		_, err := s.Get("k/1")
		assert.ErrorIs(t, err, ErrCacheExpired)
		n, err := s.Count()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Set("a", "", data))
		require.NoError(t, s.Set("b", "", data))
		require.NoError(t, s.Clear())
		n, err := s.Count()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := s.Get("")
		assert.ErrorIs(t, err, ErrInvalidCacheKey)
		assert.ErrorIs(t, s.Set("", "", data), ErrInvalidCacheKey)
	})
}

func TestFileStore_Disabled(t *testing.T) {
	s, err := NewFileStore("", false, 0)
	require.NoError(t, err)
	assert.False(t, s.IsEnabled())

	_, err = s.Get("k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
	assert.ErrorIs(t, s.Set("k", "", nil), ErrCacheDisabled)
	assert.ErrorIs(t, s.Clear(), ErrCacheDisabled)
}

func TestNewFileStore_Validation(t *testing.T) {
	_, err := NewFileStore("", true, DefaultTTLSeconds)
	require.Error(t, err)

	_, err = NewFileStore(t.TempDir(), true, 5)
	require.ErrorIs(t, err, ErrInvalidTTL)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "3600", want: 3600},
		{in: "1h30m", want: 5400},
		{in: "30s", wantErr: true},
		{in: "forever", wantErr: true},
		{in: "9999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "30m", FormatDuration(30*time.Minute))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "2d", FormatDuration(48*time.Hour))
	assert.Equal(t, "1d6h", FormatDuration(30*time.Hour))
}

func TestLoadDataset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	path := datasettest.WriteSample(t, t.TempDir())

	first, hit, err := LoadDataset(ctx, store, path)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := LoadDataset(ctx, store, path)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Digest(), second.Digest())

	t.Run("edited file misses", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(datasettest.SampleCSV+"Panama,2021,PAN,1,1,1,1,1,1,1,1,1,1\n"), 0o600))
		d, hit, err := LoadDataset(ctx, store, path)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 8, d.Panama().Len())
	})

	t.Run("tampered entry is discarded", func(t *testing.T) {
		key, err := DatasetKey(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(key, path, json.RawMessage(`{"digest":"bogus","series":{}}`)))

		d, hit, err := LoadDataset(ctx, store, path)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 8, d.Panama().Len())

		_, hit, err = LoadDataset(ctx, store, path)
		require.NoError(t, err)
		assert.True(t, hit, "fresh parse should have replaced the bad entry")
	})

	t.Run("missing file is a load error", func(t *testing.T) {
		_, _, err := LoadDataset(ctx, store, filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
	})

	t.Run("nil store parses directly", func(t *testing.T) {
		d, hit, err := LoadDataset(ctx, nil, path)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.NotNil(t, d)
	})
}
