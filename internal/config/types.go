package config

import "path/filepath"

// Keygen backends.
const (
	// BackendExec shells out to ssh-keygen (or the configured override).
	BackendExec = "exec"
	// BackendBuiltin generates keys in-process.
	BackendBuiltin = "builtin"
)

const (
	// DefaultKeygenProgram is the key generator used when no override is set.
	DefaultKeygenProgram = "ssh-keygen"
	// DefaultKeyType is the key type used when none is requested.
	DefaultKeyType = "ed25519"

	// EnvPrefix is prepended to every setting read from the environment.
	EnvPrefix = "SSV"
	// KeygenPathEnv overrides the key generator executable.
	KeygenPathEnv = "SSV_SSH_KEYGEN_PATH"
	// HomeEnv names the required home directory variable.
	HomeEnv = "HOME"

	// GlobalConfigDir is the state directory, relative to home.
	GlobalConfigDir = ".config/ssv"
	// GlobalConfigFile is the optional settings file inside GlobalConfigDir.
	GlobalConfigFile = "config.yaml"
	// LockFileName is the advisory lock file inside GlobalConfigDir.
	LockFileName = "ssv.lock"
)

// Settings is the explicit configuration handed to the host manager.
// Nothing below internal/cli reads the process environment directly.
type Settings struct {
	// Home is the base directory the managed root (~/.ssh) hangs off.
	Home string `yaml:"home" mapstructure:"home"`

	// KeygenPath is the executable used by the exec backend.
	KeygenPath string `yaml:"keygen_path" mapstructure:"keygen_path"`

	// KeygenBackend selects how keys are produced: exec or builtin.
	KeygenBackend string `yaml:"keygen_backend" mapstructure:"keygen_backend"`

	// KeyType is the default key type for generate.
	KeyType string `yaml:"key_type" mapstructure:"key_type"`

	// KeyComment is passed to the key generator; empty keeps its default.
	KeyComment string `yaml:"key_comment" mapstructure:"key_comment"`

	// Lock toggles the advisory lock around mutating operations.
	Lock bool `yaml:"lock" mapstructure:"lock"`

	// ConfigFile is the settings file that was read, if any.
	ConfigFile string `yaml:"-" mapstructure:"-"`
}

// DefaultSettings returns settings with every default applied and no home.
func DefaultSettings() *Settings {
	return &Settings{
		KeygenPath:    DefaultKeygenProgram,
		KeygenBackend: BackendExec,
		KeyType:       DefaultKeyType,
		Lock:          true,
	}
}

// StateDir is where ssv keeps its own files, outside the managed root.
func (s *Settings) StateDir() string {
	return filepath.Join(s.Home, GlobalConfigDir)
}

// LockPath is the advisory lock file.
func (s *Settings) LockPath() string {
	return filepath.Join(s.StateDir(), LockFileName)
}
