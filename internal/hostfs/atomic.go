package hostfs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hnrobert/lusers/internal/logger"
)

// ReadOptional returns the file content, or nil if the file does not exist.
func ReadOptional(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

// WriteFileAtomic replaces path with data via a temp file and rename.
// An existing file keeps its permission bits; otherwise perm is used.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	st, err := Stage(path, data, perm)
	if err != nil {
		return err
	}
	defer st.Discard()
	return st.Commit()
}

// Staged is a replacement for a file that has been written and synced
// next to its target but not yet renamed over it.
type Staged struct {
	path string
	tmp  string
	data []byte
	perm os.FileMode
}

// Stage writes data to a temp file in the directory of path.
// An existing file keeps its permission bits; otherwise perm is used.
func Stage(path string, data []byte, perm os.FileMode) (*Staged, error) {
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, ".lusers-*")
	if err != nil {
		return nil, err
	}
	s := &Staged{path: path, tmp: tmp.Name(), data: data, perm: perm}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.Discard()
		return nil, err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		s.Discard()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		s.Discard()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		s.Discard()
		return nil, err
	}
	return s, nil
}

func (s *Staged) Path() string { return s.path }

// Commit renames the staged file over its target.
func (s *Staged) Commit() error {
	if s.tmp == "" {
		return fmt.Errorf("%s: staged file already committed or discarded", s.path)
	}
	tmp := s.tmp
	if err := os.Rename(tmp, s.path); err != nil {
		// A bind-mounted target cannot be replaced by rename (EBUSY/EXDEV).
		// Fall back to an in-place rewrite.
		if errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EXDEV) || errors.Is(err, syscall.EPERM) {
			logger.Warn("rename onto %s failed (%v); rewriting in place", s.path, err)
			err = rewriteInPlace(s.path, s.data, s.perm)
			s.Discard()
			return err
		}
		return err
	}
	s.tmp = ""
	if d, err := os.Open(filepath.Dir(s.path)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Discard removes the temp file. It is a no-op after Commit.
func (s *Staged) Discard() {
	if s.tmp == "" {
		return
	}
	_ = os.Remove(s.tmp)
	s.tmp = ""
}

func rewriteInPlace(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Sync()
	return f.Close()
}

// AppendLines appends lines to path, creating it with perm if missing.
// A missing final newline in the existing file is supplied first.
func AppendLines(path string, lines []string, perm os.FileMode) error {
	if len(lines) == 0 {
		return nil
	}
	existing, err := ReadOptional(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Join(lines, "\n"))
	buf.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
