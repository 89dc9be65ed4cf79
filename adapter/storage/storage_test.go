package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

var ctx = context.Background()

// osOpsMock falls back to the real file system for every method without an
// expectation.
type osOpsMock struct {
	mock.Mock
	real osImpl
}

func (o *osOpsMock) mocked(method string) bool {
	for _, c := range o.ExpectedCalls {
		if c.Method == method {
			return true
		}
	}
	return false
}

// IsNotExist implements osOps.
func (o *osOpsMock) IsNotExist(err error) bool {
	if !o.mocked("IsNotExist") {
		return o.real.IsNotExist(err)
	}
	return o.Called(err).Bool(0)
}

// MkdirAll implements osOps.
func (o *osOpsMock) MkdirAll(path string, perm os.FileMode) error {
	if !o.mocked("MkdirAll") {
		return o.real.MkdirAll(path, perm)
	}
	return o.Called(path, perm).Error(0)
}

// OpenFile implements osOps.
func (o *osOpsMock) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if !o.mocked("OpenFile") {
		return o.real.OpenFile(name, flag, perm)
	}
	call := o.Called(name, flag, perm)
	f, _ := call.Get(0).(*os.File)
	return f, call.Error(1)
}

// Remove implements osOps.
func (o *osOpsMock) Remove(name string) error {
	if !o.mocked("Remove") {
		return o.real.Remove(name)
	}
	return o.Called(name).Error(0)
}

// Rename implements osOps.
func (o *osOpsMock) Rename(oldpath string, newpath string) error {
	if !o.mocked("Rename") {
		return o.real.Rename(oldpath, newpath)
	}
	return o.Called(oldpath, newpath).Error(0)
}

// Stat implements osOps.
func (o *osOpsMock) Stat(name string) (os.FileInfo, error) {
	if !o.mocked("Stat") {
		return o.real.Stat(name)
	}
	call := o.Called(name)
	fi, _ := call.Get(0).(os.FileInfo)
	return fi, call.Error(1)
}

type StorageTestSuite struct {
	suite.Suite
	dir     string
	storage *Storage
	osMock  *osOpsMock
}

func (s *StorageTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.osMock = new(osOpsMock)
	s.storage = &Storage{os: s.osMock}
}

func (s *StorageTestSuite) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *StorageTestSuite) read(name string) string {
	b, err := os.ReadFile(s.path(name))
	s.Require().NoError(err)
	return string(b)
}

// Will create the file and its parent directories.
func (s *StorageTestSuite) TestWriteNewFile() {
	name := filepath.Join("sub", "dir", "db.gedoc")
	s.NoError(s.storage.CrashSafeWriteFile(ctx, s.path(name), []byte("v1"), 0o755, 0o644))
	s.Equal("v1", s.read(name))

	s.NoFileExists(s.path(name + TempSuffix))
	s.NoFileExists(s.path(name + BackupSuffix))
}

// Will keep the previous content in the backup sibling.
func (s *StorageTestSuite) TestBackup() {
	s.NoError(s.storage.CrashSafeWriteFile(ctx, s.path("db"), []byte("v1"), 0o755, 0o644))
	s.NoError(s.storage.CrashSafeWriteFile(ctx, s.path("db"), []byte("v2"), 0o755, 0o644))

	s.Equal("v2", s.read("db"))
	s.Equal("v1", s.read("db"+BackupSuffix))
}

// Will leave the destination untouched when the rename fails.
func (s *StorageTestSuite) TestRenameFailure() {
	s.NoError(s.storage.CrashSafeWriteFile(ctx, s.path("db"), []byte("v1"), 0o755, 0o644))

	boom := errors.New("boom")
	s.osMock.On("Rename", s.path("db"+TempSuffix), s.path("db")).Return(boom).Once()

	err := s.storage.CrashSafeWriteFile(ctx, s.path("db"), []byte("v2"), 0o755, 0o644)
	s.ErrorIs(err, boom)
	s.ErrorAs(err, new(domain.ErrIO))
	s.Equal("v1", s.read("db"))
	s.NoFileExists(s.path("db" + TempSuffix))
	s.osMock.AssertExpectations(s.T())
}

// Will report a failed directory flush.
func (s *StorageTestSuite) TestFlushFailure() {
	boom := errors.New("boom")
	s.osMock.On("OpenFile", s.dir, os.O_RDONLY, os.FileMode(0o755)).Return(nil, boom).Once()

	err := s.storage.CrashSafeWriteFile(ctx, s.path("db"), []byte("v1"), 0o755, 0o644)
	s.ErrorAs(err, new(domain.ErrFlushToStorage))
	s.ErrorIs(err, boom)
	s.NoFileExists(s.path("db"))
}

func (s *StorageTestSuite) TestReservedNames() {
	for _, name := range []string{"db.tmp", "db.bak"} {
		err := s.storage.CrashSafeWriteFile(ctx, s.path(name), nil, 0o755, 0o644)
		s.ErrorAs(err, new(domain.ErrDatafileName))
	}
	s.ErrorAs(ValidateDatafileName(""), new(domain.ErrDatafileName))
	s.NoError(ValidateDatafileName("db.gedoc"))
}

func (s *StorageTestSuite) TestCanceled() {
	c, cancel := context.WithCancel(ctx)
	cancel()
	err := s.storage.CrashSafeWriteFile(c, s.path("db"), []byte("v1"), 0o755, 0o644)
	s.ErrorIs(err, context.Canceled)
	s.NoFileExists(s.path("db"))
}

func (s *StorageTestSuite) TestReadFile() {
	s.Require().NoError(os.WriteFile(s.path("db"), []byte("content"), 0o644))

	b, err := s.storage.ReadFile(ctx, s.path("db"))
	s.NoError(err)
	s.Equal("content", string(b))

	_, err = s.storage.ReadFile(ctx, s.path("missing"))
	s.ErrorAs(err, new(domain.ErrIO))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *StorageTestSuite) TestExistsAndRemove() {
	exists, err := s.storage.Exists(s.path("db"))
	s.NoError(err)
	s.False(exists)

	s.Require().NoError(os.WriteFile(s.path("db"), nil, 0o644))
	exists, err = s.storage.Exists(s.path("db"))
	s.NoError(err)
	s.True(exists)

	s.NoError(s.storage.Remove(s.path("db")))
	s.NoError(s.storage.Remove(s.path("db")))
	s.NoFileExists(s.path("db"))
}

// Will leave either the old or the new content when the writing process is
// killed at any point.
func (s *StorageTestSuite) TestCrashSafeWriteKilled() {
	if testing.Short() {
		s.T().Skip("spawns processes")
	}
	bin := s.path("crash")
	build := exec.Command("go", "build", "-o", bin, "../../test_lac/storage/crash.go")
	out, err := build.CombinedOutput()
	s.Require().NoError(err, string(out))

	file := s.path("crash.db")

	s.crash(bin, "a", file, 0)
	s.checkLines(file, "somedata_a")

	for _, after := range []time.Duration{time.Millisecond, 200 * time.Millisecond, time.Second} {
		s.crash(bin, "b", file, after)
		s.checkLines(file, "somedata_a", "somedata_b")
	}
}

func (s *StorageTestSuite) crash(bin, name, file string, after time.Duration) {
	cmd := exec.Command(bin, name, file)
	s.Require().NoError(cmd.Start())
	if after == 0 {
		s.Require().NoError(cmd.Wait())
		return
	}
	time.Sleep(after)
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
}

// checkLines requires every line of file to hold the same value, taken from
// accepted.
func (s *StorageTestSuite) checkLines(file string, accepted ...string) {
	s.Require().FileExists(file)
	b, err := os.ReadFile(file)
	s.Require().NoError(err)

	lines := bytes.Split(bytes.TrimSuffix(b, []byte("\n")), []byte("\n"))
	s.Require().Len(lines, 50000)
	s.Require().Contains(accepted, string(lines[0]))
	for _, line := range lines {
		if !s.Equal(string(lines[0]), string(line)) {
			break
		}
	}
}

func (s *StorageTestSuite) TestStatFailure() {
	boom := errors.New("boom")
	s.osMock.On("Stat", s.path("db")).Return(nil, boom).Once()
	s.osMock.On("IsNotExist", boom).Return(false).Once()

	_, err := s.storage.Exists(s.path("db"))
	s.ErrorIs(err, boom)
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}
