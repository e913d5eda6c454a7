// Package reconcile applies a rules.List to a usermgr.Store.
//
// Actions are resolved in three passes: creations that request an id,
// creations that leave it to the allocator, then memberships. Explicit
// ids are therefore placed before any automatic choice can take them.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/hnrobert/lusers/internal/idpool"
	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/rules"
	"github.com/hnrobert/lusers/internal/usermgr"
)

const placeholderPasswd = "x"

type Options struct {
	// Range is the allocation range used unless the rules set one.
	Range        rules.Range
	RootShell    string
	NoLoginShell string
}

func DefaultOptions() Options {
	return Options{
		Range:        rules.Range{Start: 0, End: 65535},
		RootShell:    "/bin/sh",
		NoLoginShell: "/usr/bin/nologin",
	}
}

// Session owns the store and the id pool for one run.
type Session struct {
	store   *usermgr.Store
	pool    *idpool.Pool
	actions *rules.List
	opts    Options
	report  Report

	// reserved holds ids taken out of the pool for explicit actions that
	// have not run yet. wantedGIDs maps an explicitly requested gid to the
	// group that asked for it.
	reserved   map[int]bool
	wantedGIDs map[int]string
}

// NewSession builds the id pool for the effective range and removes from
// it every id already held by a loaded user or group.
func NewSession(store *usermgr.Store, actions *rules.List, opts Options) *Session {
	rng := opts.Range
	if r, ok := actions.Range(); ok {
		rng = r
	}
	pool := idpool.New(rng.Start, rng.End)
	for _, u := range store.Users() {
		pool.TryClaim(u.UID)
	}
	for _, g := range store.Groups() {
		pool.TryClaim(g.GID)
	}
	return &Session{
		store:      store,
		pool:       pool,
		actions:    actions,
		opts:       opts,
		reserved:   map[int]bool{},
		wantedGIDs: map[int]string{},
	}
}

func (s *Session) Pool() *idpool.Pool { return s.pool }

// Run resolves every action. Conflicts drop single actions and are listed
// in the report; an error means the store must not be persisted.
func (s *Session) Run() (*Report, error) {
	start, end := s.pool.Bounds()
	logger.Info("resolving %d actions, id range %d-%d", len(s.actions.Actions()), start, end)

	explicit := s.actions.Explicit()
	s.reserve(explicit)
	if err := s.runPass("explicit ids", explicit); err != nil {
		return nil, err
	}
	s.releaseReserved()

	if err := s.runPass("automatic ids", s.actions.Automatic()); err != nil {
		return nil, err
	}
	if err := s.runPass("memberships", s.actions.Memberships()); err != nil {
		return nil, err
	}
	return &s.report, nil
}

func (s *Session) runPass(name string, actions []rules.Action) error {
	for _, a := range actions {
		if err := s.apply(a); err != nil {
			return fmt.Errorf("%s: %s: %w", name, a.Pos, err)
		}
	}
	return nil
}

// reserve takes every id requested by a pending creation out of the pool,
// so a fallback allocation earlier in the same pass cannot hand it out.
func (s *Session) reserve(actions []rules.Action) {
	hold := func(id int) {
		if s.pool.TryClaim(id) {
			s.reserved[id] = true
		}
	}
	for _, a := range actions {
		switch a.Kind {
		case rules.KindUser:
			if s.store.FindUser(a.Name) != nil {
				continue
			}
			hold(a.ID.ID)
			if a.ID.Pair {
				hold(a.ID.GID)
			}
		case rules.KindGroup:
			if s.store.FindGroup(a.Name) != nil {
				continue
			}
			hold(a.ID.ID)
			if _, ok := s.wantedGIDs[a.ID.ID]; !ok {
				s.wantedGIDs[a.ID.ID] = a.Name
			}
		}
	}
}

// releaseReserved returns reservations no action consumed.
func (s *Session) releaseReserved() {
	ids := make([]int, 0, len(s.reserved))
	for id := range s.reserved {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s.pool.Release(id)
		delete(s.reserved, id)
	}
	clear(s.wantedGIDs)
}

func (s *Session) apply(a rules.Action) error {
	switch a.Kind {
	case rules.KindUser:
		return s.createUser(a)
	case rules.KindGroup:
		return s.createGroup(a)
	case rules.KindMembership:
		s.addMembership(a)
		return nil
	default:
		s.drop(a, fmt.Sprintf("unexpected %s action", a.Kind))
		return nil
	}
}

func (s *Session) drop(a rules.Action, reason string) {
	logger.Warn("%s: %s dropped: %s", a.Pos, a, reason)
	s.report.Dropped = append(s.report.Dropped, Drop{Pos: a.Pos.String(), Action: a.String(), Reason: reason})
}

// allocate claims the smallest free id above 0. 0 stays in the pool for
// an explicit request.
func (s *Session) allocate() (int, error) {
	id, err := s.pool.NextFrom(1)
	if err != nil {
		return 0, err
	}
	if err := s.pool.Claim(id); err != nil {
		return 0, err
	}
	return id, nil
}

// claimExplicit takes id for an explicit request and reports whether
// neither a user nor a group holds it. An in-range id is claimed from its
// reservation or from the pool.
func (s *Session) claimExplicit(id int) bool {
	if s.reserved[id] {
		delete(s.reserved, id)
		return true
	}
	if s.pool.InRange(id) {
		return s.pool.TryClaim(id)
	}
	return s.store.FindUserByID(id) == nil && s.store.FindGroupByID(id) == nil
}

// gidWantedByOther reports whether a pending group other than name asked
// for gid explicitly.
func (s *Session) gidWantedByOther(gid int, name string) bool {
	want, ok := s.wantedGIDs[gid]
	return ok && want != name
}
