package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/lusers/internal/reconcile"
	"github.com/hnrobert/lusers/internal/usermgr"
)

func TestAppendAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	s := NewStore(dir)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	day1 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	rep := &reconcile.Report{
		CreatedUsers:  []usermgr.PasswdEntry{{Name: "alice", UID: 1000, GID: 1000}},
		CreatedGroups: []usermgr.GroupEntry{{Name: "alice", GID: 1000}},
		Memberships:   []reconcile.Membership{{User: "alice", Group: "wheel"}},
		Dropped:       []reconcile.Drop{{Pos: "a.conf:3", Action: "add-membership bob wheel", Reason: "user bob does not exist"}},
	}
	require.NoError(t, s.Append(FromReport("run-2", "/", day2, rep)))
	require.NoError(t, s.Append(FromReport("run-1", "/", day1, &reconcile.Report{})))
	require.NoError(t, s.Append(FromReport("run-1b", "/", day1.Add(time.Minute), &reconcile.Report{})))

	_, err = os.Stat(filepath.Join(dir, "2026-01-02.yaml"))
	require.NoError(t, err)

	entries, err = s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, "run-1b", entries[1].RunID)

	last := entries[2]
	assert.Equal(t, "run-2", last.RunID)
	assert.True(t, day2.Equal(last.Timestamp))
	assert.Equal(t, []Account{{Name: "alice", ID: 1000, GID: 1000}}, last.Users)
	assert.Equal(t, []Account{{Name: "alice", ID: 1000}}, last.Groups)
	assert.Equal(t, rep.Memberships, last.Memberships)
	assert.Equal(t, rep.Dropped, last.Dropped)
}
