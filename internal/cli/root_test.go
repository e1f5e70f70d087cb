package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/ssv/internal/doctor"
	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSSV executes a fresh command tree and returns the exit status and
// captured output.
func runSSV(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), NewRootCmd(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// testHome points HOME at a temp dir and selects the in-process key backend
// so tests don't depend on ssh-keygen.
func testHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SSV_KEYGEN_BACKEND", "builtin")
	return home
}

func decodeEnvelope(t *testing.T, out string) (JSONEnvelope, map[string]interface{}) {
	t.Helper()
	var env JSONEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	data, _ := env.Data.(map[string]interface{})
	return env, data
}

func TestRun_Lifecycle(t *testing.T) {
	home := testHome(t)

	code, stdout, stderr := runSSV(t, "generate", "--host", "github.com", "--user", "git")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "ssh-ed25519 ")
	assert.Contains(t, stdout, "SHA256:")
	assert.FileExists(t, filepath.Join(home, ".ssh", "id_ed25519_github.com"))
	assert.FileExists(t, filepath.Join(home, ".ssh", "conf.d", "github.com.conf"))

	code, stdout, _ = runSSV(t, "list")
	require.Equal(t, 0, code)
	assert.Equal(t, "github.com\n", stdout)

	code, stdout, _ = runSSV(t, "list", "--long")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "HOSTNAME")
	assert.Contains(t, stdout, "id_ed25519_github.com")

	code, stdout, _ = runSSV(t, "show", "--host", "github.com")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "host: github.com")
	assert.Contains(t, stdout, "user: git")
	assert.Contains(t, stdout, "fingerprint: SHA256:")

	code, stdout, stderr = runSSV(t, "remove", "--host", "github.com", "--yes")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Removed github.com")
	assert.NoFileExists(t, filepath.Join(home, ".ssh", "id_ed25519_github.com"))
	assert.NoFileExists(t, filepath.Join(home, ".ssh", "id_ed25519_github.com.pub"))
	assert.NoFileExists(t, filepath.Join(home, ".ssh", "conf.d", "github.com.conf"))

	code, stdout, _ = runSSV(t, "list")
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestRun_RemoveAbsentHostSucceeds(t *testing.T) {
	testHome(t)

	code, stdout, stderr := runSSV(t, "remove", "--host", "ghost", "--yes")

	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Nothing to remove for ghost")
}

func TestRun_GenerateTwiceFails(t *testing.T) {
	testHome(t)

	code, _, _ := runSSV(t, "generate", "--host", "box")
	require.Equal(t, 0, code)

	code, _, stderr := runSSV(t, "generate", "--host", "box")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exist")
}

func TestRun_GenerateTypeAndPort(t *testing.T) {
	home := testHome(t)

	code, _, stderr := runSSV(t, "generate", "--host", "prod-1", "--type", "rsa", "--port", "2222")
	require.Equal(t, 0, code, stderr)

	assert.FileExists(t, filepath.Join(home, ".ssh", "id_rsa_prod-1"))
	data, err := os.ReadFile(filepath.Join(home, ".ssh", "conf.d", "prod-1.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Port 2222")
}

func TestRun_JSONErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"invalid host", []string{"generate", "--host", "bad host", "--json"}, errors.ErrValidation},
		{"invalid key type", []string{"generate", "--host", "box", "--type", "bad type", "--json"}, errors.ErrValidation},
		{"invalid port", []string{"generate", "--host", "box", "--port", "70000", "--json"}, errors.ErrValidation},
		{"port with newline", []string{"generate", "--host", "box", "--port", "22\n", "--json"}, errors.ErrValidation},
		{"user with directive", []string{"generate", "--host", "box", "--user", "git\nIdentityFile ~/.ssh/id_ed25519", "--json"}, errors.ErrValidation},
		{"user with space", []string{"generate", "--host", "box", "--user", "a b", "--json"}, errors.ErrValidation},
		{"show unmanaged", []string{"show", "--host", "nope", "--json"}, errors.ErrNotFound},
		{"show without host", []string{"show", "--json"}, errors.ErrValidation},
		{"copy-id unmanaged", []string{"copy-id", "--host", "nope", "--json"}, errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := testHome(t)

			code, stdout, _ := runSSV(t, tt.args...)

			assert.Equal(t, 1, code)
			env, _ := decodeEnvelope(t, stdout)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)

			entries, _ := os.ReadDir(filepath.Join(home, ".ssh"))
			for _, e := range entries {
				assert.False(t, strings.HasPrefix(e.Name(), "id_"), "unexpected key %s", e.Name())
			}
		})
	}
}

func TestRun_GenerateJSON(t *testing.T) {
	home := testHome(t)

	code, stdout, _ := runSSV(t, "generate", "--host", "box", "--json")
	require.Equal(t, 0, code)

	env, data := decodeEnvelope(t, stdout)
	assert.True(t, env.Success)
	assert.Equal(t, "box", data["host"])
	assert.Equal(t, filepath.Join(home, ".ssh", "id_ed25519_box"), data["private_key_path"])
	assert.Equal(t, filepath.Join(home, ".ssh", "conf.d", "box.conf"), data["config_path"])
	assert.True(t, strings.HasPrefix(data["fingerprint"].(string), "SHA256:"))
}

func TestRun_RemoveRequiresHostWhenNotInteractive(t *testing.T) {
	testHome(t)

	code, _, stderr := runSSV(t, "remove", "--yes")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--host is required")
}

func TestRun_DoctorFix(t *testing.T) {
	home := testHome(t)

	code, stdout, stderr := runSSV(t, "doctor", "--json")
	require.Equal(t, 0, code, stderr)
	env, data := decodeEnvelope(t, stdout)
	assert.True(t, env.Success)
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, false, summary["all_clear"])

	code, _, stderr = runSSV(t, "doctor", "--fix")
	require.Equal(t, 0, code, stderr)

	data2, err := os.ReadFile(filepath.Join(home, ".ssh", "config"))
	require.NoError(t, err)
	assert.Contains(t, string(data2), doctor.IncludeDirective)

	code, stdout, _ = runSSV(t, "doctor")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Everything looks good")
}

func TestRun_DoctorFailsOnBadPermissions(t *testing.T) {
	home := testHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ssh", "conf.d"), 0o700))
	require.NoError(t, os.Chmod(filepath.Join(home, ".ssh"), 0o755))

	code, _, stderr := runSSV(t, "doctor")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "issue")
}

func TestRun_CopyIDManual(t *testing.T) {
	home := testHome(t)

	code, _, _ := runSSV(t, "generate", "--host", "box")
	require.Equal(t, 0, code)
	pub, err := os.ReadFile(filepath.Join(home, ".ssh", "id_ed25519_box.pub"))
	require.NoError(t, err)

	code, stdout, _ := runSSV(t, "copy-id", "--host", "box", "--target", "me@10.0.0.5", "--manual")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "me@10.0.0.5")
	assert.Contains(t, stdout, strings.TrimSpace(string(pub)))
	assert.Contains(t, stdout, "authorized_keys")
}

func TestRun_Completion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			code, stdout, _ := runSSV(t, "completion", shell)
			assert.Equal(t, 0, code)
			assert.Contains(t, stdout, "ssv")
		})
	}

	code, _, _ := runSSV(t, "completion", "tcsh")
	assert.Equal(t, 1, code)
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := runSSV(t, "frobnicate")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestRun_MissingHome(t *testing.T) {
	t.Setenv("HOME", "")

	code, _, stderr := runSSV(t, "list")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "HOME")
}

func TestListRows(t *testing.T) {
	rows := listRows(nil)
	assert.Empty(t, rows)
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "x", dash("x"))
}
