package hostfs

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid host path")

// FS maps absolute system paths into Root.
type FS struct {
	Root string
}

func New(root string) FS {
	if root == "" {
		root = "/"
	}
	return FS{Root: filepath.Clean(root)}
}

// Path joins Root with a relative path (no leading slash needed).
// Example: FS{Root: "/mnt"}.Path("etc/passwd") -> /mnt/etc/passwd
func (fs FS) Path(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	clean := filepath.Clean(rel)
	if clean == "." || clean == "" {
		return "", ErrInvalidPath
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(fs.Root, clean), nil
}

// Abs maps an absolute system path (e.g. /usr/lib/sysusers.d) into Root.
func (fs FS) Abs(abs string) (string, error) {
	if abs == "" || !strings.HasPrefix(abs, "/") {
		return "", ErrInvalidPath
	}
	return filepath.Join(fs.Root, filepath.Clean(abs)), nil
}

// AbsAll maps every path with Abs.
func (fs FS) AbsAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := fs.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
