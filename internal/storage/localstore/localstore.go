// Package localstore is a file-backed snapshot store: one JSON document per
// fixed key, the server-side equivalent of the browser's localStorage. Every
// save rewrites the whole snapshot; there is no partial update.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

// Store persists JSON snapshots as files under a single directory. A key maps
// to <dir>/<key>.json. Writes go through a temp file and rename, so a crashed
// save never leaves a half-written snapshot behind.
type Store struct {
	dir string
}

// New creates the snapshot directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create snapshot dir")
	}
	return &Store{dir: dir}, nil
}

// Load reads the snapshot stored under key into v. It reports found=false
// (and leaves v untouched) when no snapshot exists for that key.
func (s *Store) Load(key string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read snapshot %q", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "decode snapshot %q", key)
	}
	return true, nil
}

// Save replaces the snapshot stored under key with the serialized form of v.
func (s *Store) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode snapshot %q", key)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(s.path(key))+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write snapshot %q", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close snapshot %q", key)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrapf(err, "replace snapshot %q", key)
	}
	return nil
}

// path maps a key to its file, stripping path separators so a key can never
// escape the snapshot directory.
func (s *Store) path(key string) string {
	key = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, key)
	return filepath.Join(s.dir, key+".json")
}
