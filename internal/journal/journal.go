// Package journal keeps an append-only record of committed runs, one YAML
// document per run in a file per day.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hnrobert/lusers/internal/reconcile"
)

type Account struct {
	Name string `yaml:"name"`
	ID   int    `yaml:"id"`
	GID  int    `yaml:"gid,omitempty"`
}

type Entry struct {
	RunID       string                 `yaml:"run_id"`
	Timestamp   time.Time              `yaml:"timestamp"`
	Root        string                 `yaml:"root"`
	Users       []Account              `yaml:"users,omitempty"`
	Groups      []Account              `yaml:"groups,omitempty"`
	Memberships []reconcile.Membership `yaml:"memberships,omitempty"`
	Dropped     []reconcile.Drop       `yaml:"dropped,omitempty"`
}

// FromReport records what rep changed.
func FromReport(runID, root string, at time.Time, rep *reconcile.Report) Entry {
	e := Entry{
		RunID:       runID,
		Timestamp:   at.UTC(),
		Root:        root,
		Memberships: rep.Memberships,
		Dropped:     rep.Dropped,
	}
	for _, u := range rep.CreatedUsers {
		e.Users = append(e.Users, Account{Name: u.Name, ID: u.UID, GID: u.GID})
	}
	for _, g := range rep.CreatedGroups {
		e.Groups = append(e.Groups, Account{Name: g.Name, ID: g.GID})
	}
	return e
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) dailyPath(t time.Time) string {
	return filepath.Join(s.dir, t.UTC().Format("2006-01-02")+".yaml")
}

func (s *Store) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	// open for append, create if missing
	f, err := os.OpenFile(s.dailyPath(e.Timestamp), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := w.WriteString("---\n"); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.Flush()
}

// List returns every entry, oldest first. A missing directory is empty.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, fi := range files {
		name := fi.Name()
		if fi.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		entries, err := readStream(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read journal %s: %w", name, err)
		}
		out = append(out, entries...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func readStream(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// parse YAML stream (multiple documents)
	var out []Entry
	d := yaml.NewDecoder(f)
	for {
		var e Entry
		if err := d.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, e)
	}
}
