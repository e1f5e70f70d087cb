package sshutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSSHConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")

	configContent := `
Host myserver
    HostName 192.168.1.100
    User admin
    Port 22
    IdentityFile ~/.ssh/id_myserver
    IdentityFile "~/.ssh/id_backup"
    IdentitiesOnly yes

Host gpu-box
    HostName gpu.example.com
    User ubuntu

Host *
    ServerAliveInterval 60

Host work-*
    User workuser
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "gpu-box", hosts[0].Alias)
	assert.Equal(t, "myserver", hosts[1].Alias)

	myserver := hosts[1]
	assert.Equal(t, "192.168.1.100", myserver.Hostname)
	assert.Equal(t, "admin", myserver.User)
	assert.Equal(t, "22", myserver.Port)
	assert.Equal(t, []string{"~/.ssh/id_myserver", "~/.ssh/id_backup"}, myserver.IdentityFiles)
	assert.True(t, myserver.IdentitiesOnly)

	gpubox := hosts[0]
	assert.Equal(t, "gpu.example.com", gpubox.Hostname)
	assert.Empty(t, gpubox.Port)
	assert.Empty(t, gpubox.IdentityFiles)
	assert.False(t, gpubox.IdentitiesOnly)
}

func TestParseSSHConfigFile_NotExists(t *testing.T) {
	hosts, err := ParseSSHConfigFile("/nonexistent/config")
	assert.NoError(t, err)
	assert.Nil(t, hosts)
}

func TestParseSSHConfigFile_StopsAtMatch(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := "Host before\n  HostName before.example.com\n\nMatch exec \"true\"\n  User x\n\nHost after\n  HostName after.example.com\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "before", hosts[0].Alias)
}

func TestParseSSHConfig_Fragment(t *testing.T) {
	content := "Host github.com\nHostName github.com\nUser git\nPort 2222\nIdentityFile ~/.ssh/id_ed25519_github.com\nIdentitiesOnly yes\n"

	hosts, err := ParseSSHConfig([]byte(content))
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	assert.Equal(t, SSHHostEntry{
		Alias:          "github.com",
		Hostname:       "github.com",
		User:           "git",
		Port:           "2222",
		IdentityFiles:  []string{"~/.ssh/id_ed25519_github.com"},
		IdentitiesOnly: true,
	}, hosts[0])
}

func TestParseSSHConfig_Empty(t *testing.T) {
	hosts, err := ParseSSHConfig([]byte("# just a comment\n"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestSSHHostEntry_Description(t *testing.T) {
	tests := []struct {
		name  string
		entry SSHHostEntry
		want  string
	}{
		{name: "alias only", entry: SSHHostEntry{Alias: "a"}, want: "a"},
		{name: "hostname equals alias", entry: SSHHostEntry{Alias: "a", Hostname: "a"}, want: "a"},
		{name: "default port hidden", entry: SSHHostEntry{Alias: "a", Port: "22"}, want: "a"},
		{
			name:  "everything",
			entry: SSHHostEntry{Alias: "a", Hostname: "a.example.com", User: "git", Port: "2222"},
			want:  "a.example.com, user: git, port: 2222",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Description())
		})
	}
}

func TestIncludesPattern(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(home, ".ssh", "config")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o700))

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "tilde form", content: "Include ~/.ssh/conf.d/*.conf\n", want: true},
		{name: "relative form", content: "include conf.d/*.conf\n", want: true},
		{name: "absolute form", content: "Include " + filepath.Join(home, ".ssh", "conf.d", "*.conf") + "\n", want: true},
		{name: "one of several", content: "Include other/* \"~/.ssh/conf.d/*.conf\"\n", want: true},
		{name: "different glob", content: "Include ~/.ssh/conf.d/*\n", want: false},
		{name: "absent", content: "Host x\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o600))
			got, err := IncludesPattern(configPath, home, "~/.ssh/conf.d/*.conf")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncludesPattern_MissingFile(t *testing.T) {
	got, err := IncludesPattern(filepath.Join(t.TempDir(), "config"), "/home/x", "~/.ssh/conf.d/*.conf")
	require.NoError(t, err)
	assert.False(t, got)
}
