// Package storage contains the default [domain.Storage] implementation.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dolmen-go/contextio"
	"golang.org/x/sync/errgroup"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// Suffixes of the siblings written next to a datafile.
const (
	TempSuffix   = ".tmp"
	BackupSuffix = ".bak"
)

var (
	osSpecificEnsureDir = func(o osOps, dir string, mode os.FileMode) error {
		return o.MkdirAll(dir, mode)
	}
	osSpecificSync = func(f *os.File, _ bool) error {
		return f.Sync()
	}
)

// Storage implements [domain.Storage].
type Storage struct {
	os osOps
}

// NewStorage returns a new implementation of [domain.Storage].
func NewStorage() domain.Storage {
	return &Storage{os: &osImpl{}}
}

// ValidateDatafileName rejects names that would collide with the temporary
// or backup siblings of another datafile.
func ValidateDatafileName(name string) error {
	if name == "" {
		return domain.ErrDatafileName{Name: name, Reason: "empty name"}
	}
	for _, suffix := range [...]string{TempSuffix, BackupSuffix} {
		if strings.HasSuffix(name, suffix) {
			return domain.ErrDatafileName{Name: name, Reason: "cannot end with " + suffix}
		}
	}
	return nil
}

// Exists implements [domain.Storage].
func (s *Storage) Exists(filename string) (bool, error) {
	_, err := s.os.Stat(filename)
	if err != nil {
		if s.os.IsNotExist(err) {
			return false, nil
		}
		return false, domain.ErrIO{Op: "stat", Path: filename, Err: err}
	}
	return true, nil
}

// ReadFile implements [domain.Storage]. Cancellation is checked between
// reads.
func (s *Storage) ReadFile(ctx context.Context, filename string) ([]byte, error) {
	f, err := s.os.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return nil, domain.ErrIO{Op: "open", Path: filename, Err: err}
	}
	defer f.Close()
	b, err := io.ReadAll(contextio.NewReader(ctx, f))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.ErrIO{Op: "read", Path: filename, Err: err}
	}
	return b, nil
}

// EnsureParentDirectoryExists implements [domain.Storage].
func (s *Storage) EnsureParentDirectoryExists(filename string, mode os.FileMode) error {
	dir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return domain.ErrIO{Op: "mkdir", Path: filename, Err: err}
	}
	if err := osSpecificEnsureDir(s.os, dir, mode); err != nil {
		return domain.ErrIO{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

// CrashSafeWriteFile implements [domain.Storage]. The new content goes to a
// temporary sibling while the current content is copied to a backup
// sibling, then the temporary file replaces the destination. The
// destination is either the old or the new content at any time.
func (s *Storage) CrashSafeWriteFile(ctx context.Context, filename string, data []byte, dirMode os.FileMode, fileMode os.FileMode) error {
	if err := ValidateDatafileName(filepath.Base(filename)); err != nil {
		return err
	}
	if err := s.EnsureParentDirectoryExists(filename, dirMode); err != nil {
		return err
	}
	dir := filepath.Dir(filename)
	tempFilename := filename + TempSuffix

	if err := s.flushToStorage(dir, true, dirMode); err != nil {
		return err
	}

	exists, err := s.Exists(filename)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.writeFile(gctx, tempFilename, data, fileMode)
	})
	if exists {
		g.Go(func() error {
			return s.copyFile(gctx, filename, filename+BackupSuffix, fileMode)
		})
	}
	if err := g.Wait(); err != nil {
		_ = s.os.Remove(tempFilename)
		return err
	}

	if err := s.os.Rename(tempFilename, filename); err != nil {
		_ = s.os.Remove(tempFilename)
		return domain.ErrIO{Op: "rename", Path: filename, Err: err}
	}

	return s.flushToStorage(dir, true, dirMode)
}

func (s *Storage) writeFile(ctx context.Context, filename string, data []byte, mode os.FileMode) error {
	f, err := s.os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return domain.ErrIO{Op: "create", Path: filename, Err: err}
	}
	if _, err := contextio.NewWriter(ctx, f).Write(data); err != nil {
		f.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domain.ErrIO{Op: "write", Path: filename, Err: err}
	}
	return s.syncAndClose(f, false)
}

func (s *Storage) copyFile(ctx context.Context, src, dst string, mode os.FileMode) error {
	in, err := s.os.OpenFile(src, os.O_RDONLY, 0)
	if err != nil {
		return domain.ErrIO{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	out, err := s.os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return domain.ErrIO{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(contextio.NewWriter(ctx, out), in); err != nil {
		out.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domain.ErrIO{Op: "copy", Path: dst, Err: err}
	}
	return s.syncAndClose(out, false)
}

func (s *Storage) flushToStorage(filename string, isDir bool, mode os.FileMode) error {
	flags := os.O_RDWR
	if isDir {
		flags = os.O_RDONLY
	}

	fileHandle, err := s.os.OpenFile(filename, flags, mode)
	if err != nil {
		return domain.ErrFlushToStorage{ErrorOnFsync: err}
	}
	return s.syncAndClose(fileHandle, isDir)
}

func (s *Storage) syncAndClose(f *os.File, isDir bool) error {
	if err := osSpecificSync(f, isDir); err != nil {
		f.Close()
		return domain.ErrFlushToStorage{ErrorOnFsync: err}
	}
	if err := f.Close(); err != nil {
		return domain.ErrFlushToStorage{ErrorOnClose: err}
	}
	return nil
}

// Remove implements [domain.Storage]. Removing a missing file is not an
// error.
func (s *Storage) Remove(filename string) error {
	if err := s.os.Remove(filename); err != nil && !s.os.IsNotExist(err) {
		return domain.ErrIO{Op: "remove", Path: filename, Err: err}
	}
	return nil
}
