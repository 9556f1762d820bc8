package filesystem

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	ErrFileNotFound = errors.New("filesystem: file not found")
	ErrInvalidPath  = errors.New("filesystem: invalid path")
	ErrIsDirectory  = errors.New("filesystem: path is a directory")
)

type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
	AppendFile(path string, content []byte) error
	DeleteFile(path string) error

	FileExists(path string) (bool, error)
	FileSize(path string) (int64, error)

	CreateDirectory(path string) error
	ListDirectory(path string) ([]os.FileInfo, error)
}

type aferoFileSystem struct {
	fs afero.Fs
}

// NewLocalFileSystem returns a Filesystem backed by the operating system.
func NewLocalFileSystem() Filesystem {
	return &aferoFileSystem{fs: afero.NewOsFs()}
}

// NewMemoryFileSystem returns an empty in-memory Filesystem.
func NewMemoryFileSystem() Filesystem {
	return &aferoFileSystem{fs: afero.NewMemMapFs()}
}

// New wraps an existing afero filesystem.
func New(fs afero.Fs) Filesystem {
	return &aferoFileSystem{fs: fs}
}

// IsLocal reports whether fs reads straight from the operating system, so
// its paths can be watched for changes.
func IsLocal(fs Filesystem) bool {
	wrapped, ok := fs.(*aferoFileSystem)
	if !ok {
		return false
	}
	_, ok = wrapped.fs.(*afero.OsFs)
	return ok
}

func (filesystem *aferoFileSystem) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	info, err := filesystem.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	return afero.ReadFile(filesystem.fs, path)
}

func (filesystem *aferoFileSystem) WriteFile(path string, content []byte) error {
	if path == "" {
		return ErrInvalidPath
	}

	if err := filesystem.CreateDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	return afero.WriteFile(filesystem.fs, path, content, 0644)
}

func (filesystem *aferoFileSystem) AppendFile(path string, content []byte) error {
	exists, err := filesystem.FileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	file, err := filesystem.fs.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("closing file error", "error", closeErr)
		}
	}()

	_, err = file.Write(content)
	return err
}

func (filesystem *aferoFileSystem) DeleteFile(path string) error {
	exists, err := filesystem.FileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	return filesystem.fs.Remove(path)
}

func (filesystem *aferoFileSystem) FileExists(path string) (bool, error) {
	info, err := filesystem.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !info.IsDir(), nil
}

func (filesystem *aferoFileSystem) FileSize(path string) (int64, error) {
	info, err := filesystem.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	return info.Size(), nil
}

func (filesystem *aferoFileSystem) CreateDirectory(path string) error {
	exists, err := afero.DirExists(filesystem.fs, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return filesystem.fs.MkdirAll(path, 0770)
}

func (filesystem *aferoFileSystem) ListDirectory(path string) ([]os.FileInfo, error) {
	exists, err := afero.DirExists(filesystem.fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("filesystem: directory %s does not exist", path)
	}

	return afero.ReadDir(filesystem.fs, path)
}
