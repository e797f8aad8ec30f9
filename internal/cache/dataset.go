package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/logging"
)

// datasetKeyPrefix namespaces dataset entries within the store.
const datasetKeyPrefix = "dataset-"

// DatasetKey hashes the file at path. The key changes whenever the content does.
func DatasetKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%s%s-%d", datasetKeyPrefix, hex.EncodeToString(h.Sum(nil))[:32], n), nil
}

// LoadDataset returns the dataset at path, from store when a valid snapshot
// exists and by parsing the CSV otherwise. A fresh parse is written back.
// Cache failures are logged and never fail the load; hit reports whether
// the snapshot was used. store may be nil.
func LoadDataset(ctx context.Context, store *FileStore, path string) (*dataset.Dataset, bool, error) {
	log := logging.FromContext(ctx)
	if store == nil || !store.IsEnabled() {
		d, err := dataset.Load(ctx, path)
		return d, false, err
	}

	key, err := DatasetKey(path)
	if err != nil {
		// Let the loader report the unreadable file as a DataLoadError.
		d, loadErr := dataset.Load(ctx, path)
		return d, false, loadErr
	}

	if d, ok := readSnapshot(ctx, store, key); ok {
		log.Debug().Ctx(ctx).
			Str(logging.FieldComponent, "cache").
			Str("key", key).
			Msg("dataset cache hit")
		return d, true, nil
	}

	d, err := dataset.Load(ctx, path)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(d.Snapshot())
	if err == nil {
		err = store.Set(key, path, data)
	}
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("failed to write dataset cache")
	}
	return d, false, nil
}

func readSnapshot(ctx context.Context, store *FileStore, key string) (*dataset.Dataset, bool) {
	log := logging.FromContext(ctx)

	entry, err := store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheExpired) {
			log.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("unreadable dataset cache entry")
		}
		return nil, false
	}

	var snap dataset.Snapshot
	if err := json.Unmarshal(entry.Data, &snap); err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("corrupt dataset cache entry, discarding")
		_ = store.Delete(key)
		return nil, false
	}
	d, err := dataset.FromSnapshot(snap)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("stale dataset cache entry, discarding")
		_ = store.Delete(key)
		return nil, false
	}
	return d, true
}
