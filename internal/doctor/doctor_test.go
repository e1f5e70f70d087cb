package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/ssv/internal/config"
	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayout(t *testing.T) *paths.Resolver {
	t.Helper()
	r, err := paths.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.EnsureBaseDirs())
	return r
}

func addHost(t *testing.T, r *paths.Resolver, name string, withKey bool) {
	t.Helper()
	require.NoError(t, host.WriteFragment(r.HostConfig(name), host.Fragment{Host: name, KeyType: "ed25519"}))
	if withKey {
		private, public := r.KeyPair("ed25519", name)
		require.NoError(t, os.WriteFile(private, []byte("k"), 0o600))
		require.NoError(t, os.WriteFile(public, []byte("k"), 0o644))
	}
}

func TestDirPermsCheck(t *testing.T) {
	r, err := paths.New(t.TempDir())
	require.NoError(t, err)
	check := &DirPermsCheck{Label: "root", Path: r.Root(), Paths: r}

	result := check.Run()
	assert.Equal(t, StatusWarn, result.Status, "missing root")
	assert.True(t, result.Fixable)

	require.NoError(t, os.MkdirAll(r.Root(), 0o755))
	require.NoError(t, os.Chmod(r.Root(), 0o755))
	result = check.Run()
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "0755")

	require.NoError(t, check.Fix())
	assert.Equal(t, StatusPass, check.Run().Status)

	info, err := os.Stat(r.ConfDir())
	require.NoError(t, err)
	assert.Equal(t, paths.DirMode, info.Mode().Perm())
}

func TestDirPermsCheck_NotADirectory(t *testing.T) {
	r, err := paths.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(r.Root(), []byte("x"), 0o600))

	result := (&DirPermsCheck{Label: "root", Path: r.Root(), Paths: r}).Run()
	assert.Equal(t, StatusFail, result.Status)
	assert.False(t, result.Fixable)
}

func TestFilePermsCheck(t *testing.T) {
	r := newLayout(t)
	addHost(t, r, "a", true)
	addHost(t, r, "b", true)

	check := &FilePermsCheck{Paths: r}
	assert.Equal(t, StatusPass, check.Run().Status)

	private, public := r.KeyPair("ed25519", "b")
	require.NoError(t, os.Chmod(private, 0o644))
	require.NoError(t, os.Chmod(r.HostConfig("a"), 0o640))

	result := check.Run()
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "a.conf")
	assert.Contains(t, result.Message, "id_ed25519_b")
	assert.NotContains(t, result.Message, ".pub", "public keys may be world readable")

	require.NoError(t, check.Fix())
	assert.Equal(t, StatusPass, check.Run().Status)

	info, err := os.Stat(public)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestKeygenCheck(t *testing.T) {
	tests := []struct {
		name   string
		check  KeygenCheck
		status CheckStatus
	}{
		{name: "builtin", check: KeygenCheck{Backend: config.BackendBuiltin}, status: StatusPass},
		{name: "missing program", check: KeygenCheck{Backend: config.BackendExec, Program: "/definitely/not/here/ssh-keygen"}, status: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.check.Run().Status)
		})
	}
}

func TestKeygenCheck_FindsExecutable(t *testing.T) {
	program := filepath.Join(t.TempDir(), "keygen")
	require.NoError(t, os.WriteFile(program, []byte("#!/bin/sh\n"), 0o755))

	result := (&KeygenCheck{Backend: config.BackendExec, Program: program}).Run()
	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, program)
}

func TestOrphanKeysCheck(t *testing.T) {
	r := newLayout(t)
	addHost(t, r, "a", true)

	check := &OrphanKeysCheck{Paths: r}
	assert.Equal(t, StatusPass, check.Run().Status)

	private, _ := r.KeyPair("rsa", "old.example.com")
	require.NoError(t, os.WriteFile(private, []byte("k"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(r.Root(), "id_ed25519"), []byte("k"), 0o600))

	result := check.Run()
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "id_rsa_old.example.com")
	assert.NotContains(t, result.Message, "id_ed25519,")
	assert.Contains(t, result.Suggestion, "ssv remove --host old.example.com")

	require.NoError(t, check.Fix())
	assert.FileExists(t, private, "fix never deletes keys")
}

func TestOrphanKeysCheck_FreshHome(t *testing.T) {
	r, err := paths.New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StatusPass, (&OrphanKeysCheck{Paths: r}).Run().Status)
}

func TestMissingIdentityCheck(t *testing.T) {
	r := newLayout(t)
	addHost(t, r, "a", true)

	check := &MissingIdentityCheck{Paths: r}
	result := check.Run()
	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "1 host,")

	addHost(t, r, "b", false)
	result = check.Run()
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "b (id_ed25519_b)")
	assert.NotContains(t, result.Message, "a (")
}

func TestIncludeCheck(t *testing.T) {
	r := newLayout(t)
	configPath := filepath.Join(r.Root(), "config")
	require.NoError(t, os.WriteFile(configPath, []byte("Host old\n  User me\n"), 0o600))

	check := &IncludeCheck{Paths: r}
	result := check.Run()
	assert.Equal(t, StatusWarn, result.Status)
	assert.True(t, result.Fixable)

	require.NoError(t, check.Fix())
	assert.Equal(t, StatusPass, check.Run().Status)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), IncludeDirective+"\n"))
	assert.Contains(t, string(data), "Host old\n  User me\n")
}

func TestIncludeCheck_CreatesConfig(t *testing.T) {
	r, err := paths.New(t.TempDir())
	require.NoError(t, err)

	check := &IncludeCheck{Paths: r}
	require.NoError(t, check.Fix())

	data, err := os.ReadFile(filepath.Join(r.Root(), "config"))
	require.NoError(t, err)
	assert.Equal(t, IncludeDirective+"\n", string(data))
}

func TestChecks(t *testing.T) {
	r := newLayout(t)
	checks := Checks(r, &config.Settings{KeygenBackend: config.BackendBuiltin})

	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{
		"dir_perms_root", "dir_perms_conf.d", "file_perms", "keygen",
		"orphan_keys", "missing_identity", "ssh_config_include",
	}, names)

	results := RunAll(checks)
	assert.False(t, HasFailures(results))
}
