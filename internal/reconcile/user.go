package reconcile

import (
	"fmt"

	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/rules"
	"github.com/hnrobert/lusers/internal/usermgr"
)

func (s *Session) createUser(a rules.Action) error {
	if s.store.FindUser(a.Name) != nil {
		return nil
	}

	uid, err := s.pickUID(a)
	if err != nil {
		return err
	}
	gid, err := s.pickGID(a, uid)
	if err != nil {
		return err
	}

	home := a.Home
	if home == "" {
		home = "/"
	}
	shell := a.Shell
	if shell == "" {
		shell = s.opts.NoLoginShell
		if uid == 0 {
			shell = s.opts.RootShell
		}
	}

	u, err := s.store.InsertUser(usermgr.PasswdEntry{
		Name:   a.Name,
		Passwd: placeholderPasswd,
		UID:    uid,
		GID:    gid,
		Gecos:  a.Comment,
		Home:   home,
		Shell:  shell,
	})
	if err != nil {
		return err
	}
	s.report.CreatedUsers = append(s.report.CreatedUsers, *u)
	logger.Info("%s: created user %s (uid %d, gid %d)", a.Pos, u.Name, u.UID, u.GID)
	return nil
}

// pickUID returns the requested uid when nobody holds it. A "uid:gid"
// request may also take a uid held only by a group, as long as no user
// has that number as its primary gid. Anything else falls back to the
// allocator.
func (s *Session) pickUID(a rules.Action) (int, error) {
	if a.ID.Set {
		uid := a.ID.ID
		if s.store.FindUserByID(uid) == nil {
			if s.claimExplicit(uid) {
				return uid, nil
			}
			if a.ID.Pair && !s.store.PrimaryGIDInUse(uid) {
				return uid, nil
			}
		}
		logger.Warn("%s: uid %d for user %s is taken, allocating another", a.Pos, uid, a.Name)
	}
	return s.allocate()
}

// pickGID resolves the primary group, creating it when needed: an
// existing group named after the user, else the requested gid if unused,
// else a group sharing the uid unless another group asked for that gid,
// else a freshly allocated one.
func (s *Session) pickGID(a rules.Action, uid int) (int, error) {
	if g := s.store.FindGroup(a.Name); g != nil {
		if a.ID.Pair && g.GID != a.ID.GID {
			logger.Warn("%s: group %s exists with gid %d, ignoring requested gid %d", a.Pos, g.Name, g.GID, a.ID.GID)
		}
		return g.GID, nil
	}
	if a.ID.Pair && s.store.FindGroupByID(a.ID.GID) == nil {
		s.claimExplicit(a.ID.GID)
		return s.insertGroup(a, a.ID.GID)
	}
	if s.store.FindGroupByID(uid) == nil && !s.gidWantedByOther(uid, a.Name) {
		s.claimExplicit(uid)
		return s.insertGroup(a, uid)
	}
	gid, err := s.allocate()
	if err != nil {
		return 0, err
	}
	return s.insertGroup(a, gid)
}

func (s *Session) insertGroup(a rules.Action, gid int) (int, error) {
	g, err := s.store.InsertGroup(usermgr.GroupEntry{Name: a.Name, Passwd: placeholderPasswd, GID: gid})
	if err != nil {
		return 0, fmt.Errorf("group %s: %w", a.Name, err)
	}
	s.report.CreatedGroups = append(s.report.CreatedGroups, *g)
	logger.Info("%s: created group %s (gid %d)", a.Pos, g.Name, g.GID)
	return gid, nil
}
