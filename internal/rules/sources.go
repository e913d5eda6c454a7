package rules

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const confSuffix = ".conf"

// Discover lists the *.conf files of dirs, sorted by base name. dirs are
// in priority order: a file in an earlier directory masks a file with the
// same name in a later one. Missing directories are skipped.
func Discover(dirs []string) ([]string, error) {
	chosen := map[string]string{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read rule directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, confSuffix) {
				continue
			}
			if _, ok := chosen[name]; ok {
				continue
			}
			chosen[name] = filepath.Join(dir, name)
		}
	}

	names := make([]string, 0, len(chosen))
	for name := range chosen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, chosen[name])
	}
	return out, nil
}

// StdinName in a LoadFiles path list stands for the stdin reader.
const StdinName = "-"

// LoadFiles reads paths in order into a new List.
func LoadFiles(paths []string, stdin io.Reader) (*List, error) {
	l := &List{}
	for _, p := range paths {
		var err error
		if p == StdinName {
			err = l.Read(stdin, "<stdin>")
		} else {
			err = l.ReadFile(p)
		}
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}
