package host

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/logger"
	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/rileyhilliard/ssv/pkg/sshutil"
)

// Provisioner materializes a key pair: the private key at privatePath and
// the public key next to it with a .pub suffix.
type Provisioner interface {
	Generate(ctx context.Context, keyType, privatePath string) error
}

// Locker serializes mutating operations across processes. Acquire returns
// the function that releases the lock.
type Locker interface {
	Acquire(operation string) (release func() error, err error)
}

// GenerateRequest describes a host to bring under management.
type GenerateRequest struct {
	Host    string
	KeyType string
	User    string // optional
	Port    uint16 // optional, 0 means unset
}

// GenerateResult is what generate produced.
type GenerateResult struct {
	Host           string `json:"host"`
	PrivateKeyPath string `json:"private_key_path"`
	PublicKeyPath  string `json:"public_key_path"`
	ConfigPath     string `json:"config_path"`
	// PublicKey is the contents of the .pub file, trimmed.
	PublicKey string `json:"public_key"`
	// Fingerprint is the SHA256 fingerprint, empty if the public key
	// could not be parsed.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// HostInfo describes a managed host as recorded in its fragment.
type HostInfo struct {
	Host          string   `json:"host" yaml:"host"`
	HostName      string   `json:"hostname" yaml:"hostname"`
	User          string   `json:"user,omitempty" yaml:"user,omitempty"`
	Port          string   `json:"port,omitempty" yaml:"port,omitempty"`
	IdentityFiles []string `json:"identity_files" yaml:"identity_files"`
	ConfigPath    string   `json:"config_path" yaml:"config_path"`
	PublicKeyPath string   `json:"public_key_path,omitempty" yaml:"public_key_path,omitempty"`
	PublicKey     string   `json:"public_key,omitempty" yaml:"public_key,omitempty"`
	Fingerprint   string   `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// Manager owns the lifecycle of managed hosts under one home directory.
type Manager struct {
	paths       *paths.Resolver
	provisioner Provisioner
	locker      Locker
	log         logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocker serializes Generate and Remove through l.
func WithLocker(l Locker) Option {
	return func(m *Manager) { m.locker = l }
}

// WithLogger sets the logger used for decisions worth tracing.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager over the layout p that produces keys with
// provisioner.
func NewManager(p *paths.Resolver, provisioner Provisioner, opts ...Option) *Manager {
	m := &Manager{
		paths:       p,
		provisioner: provisioner,
		log:         logger.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Paths exposes the layout the manager works on.
func (m *Manager) Paths() *paths.Resolver {
	return m.paths
}

// Generate creates a key pair and fragment for req.Host. It refuses to run
// if any of the three artifacts already exists. If the fragment can't be
// written the new keys are removed again.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := ValidateHost(req.Host); err != nil {
		return nil, err
	}
	if err := ValidateKeyType(req.KeyType); err != nil {
		return nil, err
	}
	if err := ValidateUser(req.User); err != nil {
		return nil, err
	}
	if m.provisioner == nil {
		return nil, errors.New(errors.ErrConfig,
			"No key provisioner configured",
			"Set keygen_backend to exec or builtin")
	}

	if err := m.paths.EnsureBaseDirs(); err != nil {
		return nil, err
	}

	release, err := m.lock("generate " + req.Host)
	if err != nil {
		return nil, err
	}
	defer m.unlock(release)

	private, public := m.paths.KeyPair(req.KeyType, req.Host)
	configPath := m.paths.HostConfig(req.Host)

	for _, p := range []string{private, public, configPath} {
		if _, err := os.Lstat(p); err == nil {
			return nil, errors.New(errors.ErrValidation,
				fmt.Sprintf("Key or config already exist for host '%s' (%s)", req.Host, p),
				fmt.Sprintf("Run 'ssv remove --host %s' first", req.Host))
		} else if !os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrIO,
				fmt.Sprintf("Failed to inspect %s", p),
				"Check permissions on ~/.ssh")
		}
	}

	m.log.Debug("generating %s key for %s at %s", req.KeyType, req.Host, private)
	if err := m.provisioner.Generate(ctx, req.KeyType, private); err != nil {
		return nil, err
	}

	fragment := Fragment{Host: req.Host, User: req.User, Port: req.Port, KeyType: req.KeyType}
	if err := WriteFragment(configPath, fragment); err != nil {
		m.rollbackKeys(private, public)
		return nil, err
	}

	result := &GenerateResult{
		Host:           req.Host,
		PrivateKeyPath: private,
		PublicKeyPath:  public,
		ConfigPath:     configPath,
	}

	line, info, err := sshutil.ReadPublicKeyFile(public)
	switch {
	case err != nil && line == "":
		m.rollbackKeys(private, public)
		if _, rmErr := removeIfExists(configPath); rmErr != nil {
			m.log.Warn("could not roll back %s: %v", configPath, rmErr)
		}
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to read public key %s", public),
			"The key generator did not leave a readable .pub file")
	case err != nil:
		m.log.Debug("cannot fingerprint %s: %v", public, err)
		result.PublicKey = line
	default:
		result.PublicKey = line
		result.Fingerprint = info.Fingerprint
	}

	return result, nil
}

// List returns every managed host, sorted. It never creates directories.
func (m *Manager) List() ([]string, error) {
	return ListHosts(m.paths.ConfDir())
}

// Remove deletes host's fragment and the identity files it owns.
func (m *Manager) Remove(host string) error {
	_, err := m.RemoveWithReport(host)
	return err
}

// RemoveWithReport is Remove, additionally reporting what was deleted.
func (m *Manager) RemoveWithReport(host string) (*RemoveReport, error) {
	if err := ValidateHost(host); err != nil {
		return nil, err
	}

	if err := m.paths.EnsureBaseDirs(); err != nil {
		return nil, err
	}

	release, err := m.lock("remove " + host)
	if err != nil {
		return nil, err
	}
	defer m.unlock(release)

	return NewRemover(m.paths, m.log).Remove(host)
}

// Show describes a managed host from its fragment.
func (m *Manager) Show(host string) (*HostInfo, error) {
	if err := ValidateHost(host); err != nil {
		return nil, err
	}

	configPath := m.paths.HostConfig(host)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrNotFound,
				fmt.Sprintf("Host '%s' is not managed", host),
				"Run 'ssv list' to see managed hosts")
		}
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to read %s", configPath),
			"Check permissions on ~/.ssh/conf.d")
	}

	info := &HostInfo{Host: host, ConfigPath: configPath, IdentityFiles: []string{}}

	entries, err := sshutil.ParseSSHConfig(data)
	if err != nil {
		m.log.Warn("cannot parse %s: %v", configPath, err)
	}
	for _, entry := range entries {
		if entry.Alias != host {
			continue
		}
		info.HostName = entry.Hostname
		info.User = entry.User
		info.Port = entry.Port
		if len(entry.IdentityFiles) > 0 {
			info.IdentityFiles = entry.IdentityFiles
		}
	}
	if len(info.IdentityFiles) == 0 {
		// Fall back to the line scanner removal uses.
		if refs := ParseIdentityRefs(string(data)); len(refs) > 0 {
			info.IdentityFiles = refs
		}
	}

	for _, ref := range info.IdentityFiles {
		p, ok := paths.Contain(ref, m.paths.Home(), m.paths.Root())
		if !ok {
			continue
		}
		pub := paths.PublicKeyPath(p)
		line, key, err := sshutil.ReadPublicKeyFile(pub)
		if err != nil {
			continue
		}
		info.PublicKeyPath = pub
		info.PublicKey = line
		info.Fingerprint = key.Fingerprint
		break
	}

	return info, nil
}

// ParsePort converts a user-supplied port to the fragment representation.
// Empty means unset.
func ParsePort(s string) (uint16, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, errors.New(errors.ErrValidation,
			fmt.Sprintf("Invalid port '%s'", s),
			"Ports are numbers from 1 to 65535")
	}
	return uint16(n), nil
}

func (m *Manager) lock(operation string) (func() error, error) {
	if m.locker == nil {
		return func() error { return nil }, nil
	}
	return m.locker.Acquire(operation)
}

func (m *Manager) unlock(release func() error) {
	if err := release(); err != nil {
		m.log.Warn("failed to release lock: %v", err)
	}
}

func (m *Manager) rollbackKeys(private, public string) {
	for _, p := range []string{private, public} {
		if _, err := removeIfExists(p); err != nil {
			m.log.Warn("could not roll back %s: %v", p, err)
		}
	}
}
