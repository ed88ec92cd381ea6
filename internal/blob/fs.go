package blob

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const docExt = ".json"

// FSBucket keeps each document in <root>/<namespace>/<key>.json.
type FSBucket struct {
	fs  afero.Fs
	dir string
}

// NewFSBucket creates a filesystem bucket rooted at baseDir. Pass
// afero.NewMemMapFs() in tests.
func NewFSBucket(fsys afero.Fs, baseDir, namespace string) (*FSBucket, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FSBucket{fs: fsys, dir: filepath.Join(baseDir, namespace)}, nil
}

// Dir returns the namespace directory.
func (b *FSBucket) Dir() string {
	return b.dir
}

func (b *FSBucket) Init(_ context.Context) error {
	if err := b.fs.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", b.dir, err)
	}
	return nil
}

func (b *FSBucket) path(key string) string {
	return filepath.Join(b.dir, key+docExt)
}

func (b *FSBucket) Get(_ context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, notFound(key)
	}
	data, err := afero.ReadFile(b.fs, b.path(key))
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes through a temp file in the same directory and renames it into
// place, so readers never observe a partial document.
func (b *FSBucket) Put(ctx context.Context, key string, data []byte) error {
	if !ValidKey(key) {
		return invalidKey(key)
	}
	if err := b.Init(ctx); err != nil {
		return err
	}

	tmp, err := afero.TempFile(b.fs, b.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := b.fs.Rename(tmpName, b.path(key)); err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (b *FSBucket) Delete(_ context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	err := b.fs.Remove(b.path(key))
	if err == nil {
		return true, nil
	}
	if stdErrors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to delete %s: %w", key, err)
}

func (b *FSBucket) Keys(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(b.fs, b.dir)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", b.dir, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != docExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, docExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *FSBucket) Close() error {
	return nil
}
