package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var _ BlobStore = (*FilesystemBlobStore)(nil)

// ErrInvalidPath is returned for object paths that are empty or escape the store root.
var ErrInvalidPath = errors.New("storage: invalid object path")

// BlobStore keeps uploaded document files.
type BlobStore interface {
	Put(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Stat(ctx context.Context, objectPath string) (BlobInfo, error)
	Delete(ctx context.Context, objectPath string) error
}

// BlobInfo captures size and timestamp metadata for a stored object.
type BlobInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// FilesystemBlobStore stores objects on an afero filesystem.
type FilesystemBlobStore struct {
	fs afero.Fs
}

// NewFilesystemBlobStore roots a store at dir on the local disk.
func NewFilesystemBlobStore(dir string) (*FilesystemBlobStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: root directory is required")
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure root directory: %w", err)
	}
	return &FilesystemBlobStore{fs: afero.NewBasePathFs(osFs, dir)}, nil
}

// NewBlobStore wraps an existing filesystem, typically afero.NewMemMapFs in tests.
func NewBlobStore(fs afero.Fs) *FilesystemBlobStore {
	if fs == nil {
		return nil
	}
	return &FilesystemBlobStore{fs: fs}
}

// Put writes r to objectPath, creating parent directories. Existing objects are replaced.
func (s *FilesystemBlobStore) Put(_ context.Context, objectPath string, r io.Reader) (int64, error) {
	if s == nil {
		return 0, errors.New("storage: store not initialised")
	}
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return 0, err
	}

	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return 0, fmt.Errorf("storage: mkdir %s: %w", path.Dir(clean), err)
	}

	fh, err := s.fs.OpenFile(clean, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("storage: create %s: %w", clean, err)
	}

	written, copyErr := io.Copy(fh, r)
	closeErr := fh.Close()
	if copyErr != nil {
		_ = s.fs.Remove(clean)
		return 0, fmt.Errorf("storage: write %s: %w", clean, copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("storage: close %s: %w", clean, closeErr)
	}
	return written, nil
}

// Open returns a reader for the stored object.
func (s *FilesystemBlobStore) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	if s == nil {
		return nil, errors.New("storage: store not initialised")
	}
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return nil, err
	}
	fh, err := s.fs.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", clean, err)
	}
	return fh, nil
}

// Stat returns object metadata.
func (s *FilesystemBlobStore) Stat(_ context.Context, objectPath string) (BlobInfo, error) {
	if s == nil {
		return BlobInfo{}, errors.New("storage: store not initialised")
	}
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return BlobInfo{}, err
	}
	info, err := s.fs.Stat(clean)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("storage: stat %s: %w", clean, err)
	}
	return BlobInfo{Path: clean, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Delete removes the stored object. Missing objects are not an error.
func (s *FilesystemBlobStore) Delete(_ context.Context, objectPath string) error {
	if s == nil {
		return errors.New("storage: store not initialised")
	}
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", clean, err)
	}
	return nil
}

// ObjectPath builds the "<owner>/<unix nano>.<ext>" key used for uploads.
func ObjectPath(ownerID string, at time.Time, filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	name := fmt.Sprintf("%d", at.UnixNano())
	if ext != "" {
		name += "." + ext
	}
	return path.Join(sanitizeFragment(ownerID), name)
}

func cleanObjectPath(objectPath string) (string, error) {
	objectPath = strings.TrimSpace(filepath.ToSlash(objectPath))
	if objectPath == "" {
		return "", ErrInvalidPath
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return strings.TrimPrefix(clean, "/"), nil
}

func sanitizeFragment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "anonymous"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(value)
}
