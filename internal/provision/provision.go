// Package provision runs one reconciliation against a root directory:
// lock, load, resolve, then commit every change in a single step.
package provision

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hnrobert/lusers/internal/config"
	"github.com/hnrobert/lusers/internal/hostfs"
	"github.com/hnrobert/lusers/internal/journal"
	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/reconcile"
	"github.com/hnrobert/lusers/internal/rules"
	"github.com/hnrobert/lusers/internal/usermgr"
)

// StdinName in Options.Files reads rules from Options.Stdin.
const StdinName = rules.StdinName

type Options struct {
	Config config.Config
	// Files replaces rule discovery when non-empty.
	Files  []string
	Stdin  io.Reader
	DryRun bool
	// Out receives the dry-run listing.
	Out io.Writer
}

type Result struct {
	RunID     string
	Report    *reconcile.Report
	Committed bool
}

type Runner struct {
	opts Options
	fs   hostfs.FS
	now  func() time.Time
}

func New(opts Options) *Runner {
	opts.Config = opts.Config.WithDefaults()
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Runner{opts: opts, fs: hostfs.New(opts.Config.Root), now: time.Now}
}

// Apply performs the run. On error nothing has been written.
func (r *Runner) Apply() (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	if !r.opts.DryRun {
		unlock, err := r.fs.Lock()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	actions, err := r.loadRules()
	if err != nil {
		return nil, err
	}
	store, err := r.loadStore()
	if err != nil {
		return nil, err
	}

	cfg := r.opts.Config
	session := reconcile.NewSession(store, actions, reconcile.Options{
		Range:        rules.Range{Start: cfg.Range.Start, End: cfg.Range.End},
		RootShell:    cfg.Shells.Root,
		NoLoginShell: cfg.Shells.NoLogin,
	})
	rep, err := session.Run()
	if err != nil {
		return nil, err
	}
	rep.Dropped = append(lineDrops(actions), rep.Dropped...)
	res.Report = rep

	if r.opts.DryRun {
		return res, r.printPlan(rep)
	}
	if !rep.Changed() {
		logger.Info("nothing to do")
		return res, nil
	}
	if err := r.commit(store, rep); err != nil {
		return nil, err
	}
	res.Committed = true

	if cfg.JournalDir != "" {
		entry := journal.FromReport(res.RunID, r.fs.Root, r.now(), rep)
		if err := journal.NewStore(cfg.JournalDir).Append(entry); err != nil {
			// The databases are already committed; losing a journal entry is not fatal.
			logger.Error("journal: %v", err)
		}
	}
	return res, nil
}

func (r *Runner) loadRules() (*rules.List, error) {
	files := r.opts.Files
	if len(files) == 0 {
		dirs, err := r.fs.AbsAll(r.opts.Config.RuleDirs)
		if err != nil {
			return nil, err
		}
		if files, err = rules.Discover(dirs); err != nil {
			return nil, err
		}
	}

	list, err := rules.LoadFiles(files, r.opts.Stdin)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	logger.Info("read %d rule files, %d actions", len(files), len(list.Actions()))
	return list, nil
}

func (r *Runner) read(rel string) ([]byte, error) {
	p, err := r.fs.Path(rel)
	if err != nil {
		return nil, err
	}
	return hostfs.ReadOptional(p)
}

func (r *Runner) loadStore() (*usermgr.Store, error) {
	pw, err := r.read(hostfs.EtcPasswdRel)
	if err != nil {
		return nil, err
	}
	gr, err := r.read(hostfs.EtcGroupRel)
	if err != nil {
		return nil, err
	}
	return usermgr.Load(bytes.NewReader(pw), bytes.NewReader(gr))
}

func lineDrops(l *rules.List) []reconcile.Drop {
	var out []reconcile.Drop
	for _, e := range l.Errors() {
		out = append(out, reconcile.Drop{Pos: e.Pos.String(), Action: e.Line, Reason: e.Err.Error()})
	}
	return out
}

func (r *Runner) printPlan(rep *reconcile.Report) error {
	w := r.opts.Out
	for _, g := range rep.CreatedGroups {
		if _, err := fmt.Fprintf(w, "group  %s\n", g.Line()); err != nil {
			return err
		}
	}
	for _, u := range rep.CreatedUsers {
		if _, err := fmt.Fprintf(w, "passwd %s\n", u.Line()); err != nil {
			return err
		}
	}
	for _, m := range rep.Memberships {
		if _, err := fmt.Fprintf(w, "member %s -> %s\n", m.User, m.Group); err != nil {
			return err
		}
	}
	return nil
}
