package provision

import (
	"bytes"
	"fmt"

	"github.com/hnrobert/lusers/internal/hostfs"
	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/reconcile"
	"github.com/hnrobert/lusers/internal/usermgr"
)

// commit stages every changed database before replacing any of them, then
// renames group before passwd so no user ever references a group that is
// not on disk yet. Shadow entries are only appended.
func (r *Runner) commit(store *usermgr.Store, rep *reconcile.Report) error {
	var pw, gr bytes.Buffer
	if err := store.Persist(&pw, &gr); err != nil {
		return err
	}
	pwChanged, grChanged := store.Changed()

	var staged []*hostfs.Staged
	defer func() {
		for _, st := range staged {
			st.Discard()
		}
	}()
	for _, f := range []struct {
		rel     string
		data    []byte
		changed bool
	}{
		{hostfs.EtcGroupRel, gr.Bytes(), grChanged},
		{hostfs.EtcPasswdRel, pw.Bytes(), pwChanged},
	} {
		if !f.changed {
			continue
		}
		st, err := r.stage(f.rel, f.data)
		if err != nil {
			return err
		}
		staged = append(staged, st)
	}

	for _, st := range staged {
		if err := st.Commit(); err != nil {
			return fmt.Errorf("replace %s: %w", st.Path(), err)
		}
		logger.Info("wrote %s", st.Path())
	}
	return r.appendShadow(rep.CreatedUsers)
}

func (r *Runner) stage(rel string, data []byte) (*hostfs.Staged, error) {
	p, err := r.fs.Path(rel)
	if err != nil {
		return nil, err
	}
	st, err := hostfs.Stage(p, data, 0o644)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", p, err)
	}
	return st, nil
}

// appendShadow adds a locked entry for each created user that has none.
func (r *Runner) appendShadow(users []usermgr.PasswdEntry) error {
	if len(users) == 0 {
		return nil
	}
	p, err := r.fs.Path(hostfs.EtcShadowRel)
	if err != nil {
		return err
	}
	existing, err := hostfs.ReadOptional(p)
	if err != nil {
		return err
	}
	sh, err := usermgr.ParseShadow(bytes.NewReader(existing))
	if err != nil {
		return err
	}

	var lines []string
	for _, u := range users {
		if sh.Find(u.Name) != nil {
			logger.Warn("shadow entry for %s already exists, left unchanged", u.Name)
			continue
		}
		lines = append(lines, usermgr.LockedShadow(u.Name).Line())
	}
	if err := hostfs.AppendLines(p, lines, 0o600); err != nil {
		return fmt.Errorf("append %s: %w", p, err)
	}
	return nil
}
