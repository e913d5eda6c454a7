package provision

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/lusers/internal/config"
	"github.com/hnrobert/lusers/internal/journal"
)

const testRules = `# test accounts
g admins 1000
u alice - "Alice"
m alice admins
bogus
`

func setupRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, rel))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(b)
}

func newRunner(root string, mutate func(*Options)) *Runner {
	opts := Options{
		Config: config.Config{
			Root:     root,
			RuleDirs: []string{"/etc/sysusers.d", "/usr/lib/sysusers.d"},
		},
		Out: &bytes.Buffer{},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func TestApplyFreshRoot(t *testing.T) {
	root := setupRoot(t, map[string]string{"usr/lib/sysusers.d/base.conf": testRules})
	journalDir := filepath.Join(t.TempDir(), "journal")

	res, err := newRunner(root, func(o *Options) { o.Config.JournalDir = journalDir }).Apply()
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.NotEmpty(t, res.RunID)

	assert.Equal(t, "alice:x:1:1:Alice:/:/usr/bin/nologin\n", readFile(t, root, "etc/passwd"))
	assert.Equal(t, "admins:x:1000:alice\nalice:x:1:\n", readFile(t, root, "etc/group"))
	assert.Equal(t, "alice:!::0:::::\n", readFile(t, root, "etc/shadow"))

	st, err := os.Stat(filepath.Join(root, "etc/shadow"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	require.Len(t, res.Report.Dropped, 1)
	assert.Equal(t, "bogus", res.Report.Dropped[0].Action)

	entries, err := journal.NewStore(journalDir).List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.RunID, entries[0].RunID)
	assert.Equal(t, []journal.Account{{Name: "alice", ID: 1, GID: 1}}, entries[0].Users)
}

func TestApplyIsIdempotent(t *testing.T) {
	root := setupRoot(t, map[string]string{"etc/sysusers.d/base.conf": testRules})

	_, err := newRunner(root, nil).Apply()
	require.NoError(t, err)
	passwd := readFile(t, root, "etc/passwd")
	group := readFile(t, root, "etc/group")
	shadow := readFile(t, root, "etc/shadow")

	res, err := newRunner(root, nil).Apply()
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.False(t, res.Report.Changed())
	assert.Equal(t, passwd, readFile(t, root, "etc/passwd"))
	assert.Equal(t, group, readFile(t, root, "etc/group"))
	assert.Equal(t, shadow, readFile(t, root, "etc/shadow"))
}

func TestApplyKeepsExistingRecords(t *testing.T) {
	root := setupRoot(t, map[string]string{
		"etc/passwd": "# local\nroot:x:0:0:root:/root:/bin/sh\n",
		"etc/group":  "root:x:0:\nwheel:x:10:\n",
		"etc/shadow": "root:$6$salt$hash:19000:0:99999:7:::",
	})
	res, err := newRunner(root, func(o *Options) {
		o.Files = []string{StdinName}
		o.Stdin = strings.NewReader("u svc 500 - /var/lib/svc\nm svc wheel\n")
	}).Apply()
	require.NoError(t, err)
	require.True(t, res.Committed)

	assert.Equal(t, "# local\nroot:x:0:0:root:/root:/bin/sh\nsvc:x:500:500::/var/lib/svc:/usr/bin/nologin\n", readFile(t, root, "etc/passwd"))
	assert.Equal(t, "root:x:0:\nwheel:x:10:svc\nsvc:x:500:\n", readFile(t, root, "etc/group"))
	assert.Equal(t, "root:$6$salt$hash:19000:0:99999:7:::\nsvc:!::0:::::\n", readFile(t, root, "etc/shadow"))
}

func TestApplyDoesNotDuplicateShadow(t *testing.T) {
	root := setupRoot(t, map[string]string{
		"etc/shadow": "alice:!::0:::::\n",
	})
	_, err := newRunner(root, func(o *Options) {
		o.Files = []string{StdinName}
		o.Stdin = strings.NewReader("u alice -\n")
	}).Apply()
	require.NoError(t, err)
	assert.Equal(t, "alice:!::0:::::\n", readFile(t, root, "etc/shadow"))
	assert.Contains(t, readFile(t, root, "etc/passwd"), "alice:x:1:1:")
}

func TestApplyDryRun(t *testing.T) {
	root := setupRoot(t, map[string]string{"usr/lib/sysusers.d/base.conf": testRules})
	var out bytes.Buffer

	res, err := newRunner(root, func(o *Options) {
		o.DryRun = true
		o.Out = &out
	}).Apply()
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.True(t, res.Report.Changed())

	assert.Equal(t, "group  admins:x:1000:alice\ngroup  alice:x:1:\npasswd alice:x:1:1:Alice:/:/usr/bin/nologin\nmember alice -> admins\n", out.String())
	_, err = os.Stat(filepath.Join(root, "etc"))
	assert.True(t, os.IsNotExist(err), "dry run must not touch the root")
}

func TestApplyAbortsOnCorruptDatabase(t *testing.T) {
	corrupt := "a:x:1:1::/:/bin/sh\nb:x:1:1::/:/bin/sh\n"
	root := setupRoot(t, map[string]string{
		"etc/passwd":                   corrupt,
		"usr/lib/sysusers.d/base.conf": testRules,
	})

	_, err := newRunner(root, nil).Apply()
	require.Error(t, err)
	assert.Equal(t, corrupt, readFile(t, root, "etc/passwd"))
	assert.Equal(t, "", readFile(t, root, "etc/group"))
	assert.Equal(t, "", readFile(t, root, "etc/shadow"))
}

func TestApplyAbortsOnExhaustion(t *testing.T) {
	root := setupRoot(t, map[string]string{
		"usr/lib/sysusers.d/base.conf": "r - 1-1\nu a -\nu b -\n",
	})
	_, err := newRunner(root, nil).Apply()
	require.Error(t, err)
	assert.Equal(t, "", readFile(t, root, "etc/passwd"))
}

func TestApplyHonoursConfiguredRange(t *testing.T) {
	root := setupRoot(t, map[string]string{"usr/lib/sysusers.d/a.conf": "u a -\n"})
	_, err := newRunner(root, func(o *Options) {
		o.Config.Range = &config.Range{Start: 900, End: 999}
	}).Apply()
	require.NoError(t, err)
	assert.Equal(t, "a:x:900:900::/:/usr/bin/nologin\n", readFile(t, root, "etc/passwd"))
}

func TestApplyReplacesOnlyChangedDatabases(t *testing.T) {
	root := setupRoot(t, map[string]string{
		"etc/passwd":                "root:x:0:0::/root:/bin/sh\n",
		"etc/group":                 "root:x:0:\nwheel:x:10:\n",
		"etc/sysusers.d/wheel.conf": "m root wheel\n",
	})
	passwd := filepath.Join(root, "etc/passwd")
	before, err := os.Stat(passwd)
	require.NoError(t, err)

	res, err := newRunner(root, nil).Apply()
	require.NoError(t, err)
	require.True(t, res.Committed)

	assert.Equal(t, "root:x:0:\nwheel:x:10:root\n", readFile(t, root, "etc/group"))
	after, err := os.Stat(passwd)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "passwd is not replaced")
	assert.Empty(t, readFile(t, root, "etc/shadow"))

	leftovers, err := filepath.Glob(filepath.Join(root, "etc", ".lusers-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
