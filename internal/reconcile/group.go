package reconcile

import (
	"fmt"

	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/rules"
)

func (s *Session) createGroup(a rules.Action) error {
	if s.store.FindGroup(a.Name) != nil {
		return nil
	}
	if !a.ID.Set {
		gid, err := s.allocate()
		if err != nil {
			return err
		}
		_, err = s.insertGroup(a, gid)
		return err
	}

	gid := a.ID.ID
	if other := s.store.FindGroupByID(gid); other != nil {
		s.drop(a, fmt.Sprintf("gid %d already used by group %s", gid, other.Name))
		return nil
	}
	// The number may be held by a user's uid, which does not conflict.
	s.claimExplicit(gid)
	_, err := s.insertGroup(a, gid)
	return err
}

func (s *Session) addMembership(a rules.Action) {
	if s.store.FindUser(a.Name) == nil {
		s.drop(a, fmt.Sprintf("user %s does not exist", a.Name))
		return
	}
	if s.store.FindGroup(a.Group) == nil {
		s.drop(a, fmt.Sprintf("group %s does not exist", a.Group))
		return
	}
	added, err := s.store.AddMember(a.Group, a.Name)
	if err != nil {
		s.drop(a, err.Error())
		return
	}
	if added {
		s.report.Memberships = append(s.report.Memberships, Membership{User: a.Name, Group: a.Group})
		logger.Info("%s: added %s to group %s", a.Pos, a.Name, a.Group)
	}
}
