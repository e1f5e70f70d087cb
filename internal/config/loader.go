package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/spf13/viper"
)

// LoadOptions controls where settings come from.
type LoadOptions struct {
	// ConfigFile is an explicit settings file (the --config flag). It must exist.
	ConfigFile string

	// Overrides take precedence over every other source. Keys use the
	// mapstructure names of Settings (e.g. "keygen_backend").
	Overrides map[string]interface{}
}

// Load builds Settings from, in order of precedence: overrides, environment,
// the settings file, and defaults.
//
// HOME is required. SSV_SSH_KEYGEN_PATH overrides the key generator, and any
// other setting can be set as SSV_<NAME> (SSV_KEYGEN_BACKEND, SSV_LOCK, ...).
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("home", HomeEnv)
	_ = v.BindEnv("keygen_path", KeygenPathEnv)

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	home := v.GetString("home")
	if home == "" {
		return nil, errors.New(errors.ErrConfig,
			"HOME environment variable not set",
			"Export HOME so ssv knows where ~/.ssh lives")
	}

	configFile, err := findConfigFile(opts.ConfigFile, home)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read settings file "+configFile,
				"Check the file is valid YAML")
		}
	}

	settings := DefaultSettings()
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid settings",
			"Check the values in "+configFile)
	}

	// Home always comes from the environment (or an override), never from the file.
	settings.Home = home
	settings.ConfigFile = configFile

	return settings, nil
}

// setDefaults registers every key so AutomaticEnv is honored by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("home", "")
	v.SetDefault("keygen_path", d.KeygenPath)
	v.SetDefault("keygen_backend", d.KeygenBackend)
	v.SetDefault("key_type", d.KeyType)
	v.SetDefault("key_comment", d.KeyComment)
	v.SetDefault("lock", d.Lock)
}

// findConfigFile resolves the settings file:
// 1. Explicit path (from --config flag), which must exist
// 2. <home>/.config/ssv/config.yaml, if present
//
// Returns an empty string when there is no settings file.
func findConfigFile(explicit, home string) (string, error) {
	if explicit != "" {
		path := ExpandTilde(explicit, home)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified settings file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access settings file: "+explicit,
				"Check file permissions")
		}
		return path, nil
	}

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", nil
}
