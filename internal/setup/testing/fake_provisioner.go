// Package testing provides test doubles for the setup package.
package testing

import (
	"context"
	"os"
	"sync"

	"github.com/rileyhilliard/ssv/internal/errors"
)

// GenerateCall records a call to Generate.
type GenerateCall struct {
	KeyType string
	Path    string
}

// FakeProvisioner writes deterministic stub key files instead of real keys.
type FakeProvisioner struct {
	mu sync.Mutex

	// FailError, when set, is returned by Generate without writing anything.
	FailError error
	// SkipPublic leaves out the .pub file, imitating a broken generator.
	SkipPublic bool
	// PublicKey overrides the .pub contents.
	PublicKey string

	Calls []GenerateCall
}

// NewFakeProvisioner creates a provisioner that succeeds by default.
func NewFakeProvisioner() *FakeProvisioner {
	return &FakeProvisioner{}
}

// SetFail makes every Generate call return err.
func (f *FakeProvisioner) SetFail(err error) *FakeProvisioner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailError = err
	return f
}

// Generate records the call and writes "<path>" and "<path>.pub".
func (f *FakeProvisioner) Generate(ctx context.Context, keyType, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, GenerateCall{KeyType: keyType, Path: path})

	if f.FailError != nil {
		return f.FailError
	}

	if err := os.WriteFile(path, []byte("stub private "+keyType+"\n"), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO, "fake provisioner: write private key", "")
	}
	if f.SkipPublic {
		return nil
	}

	pub := f.PublicKey
	if pub == "" {
		pub = "ssh-" + keyType + " AAAAstub fake@ssv"
	}
	if err := os.WriteFile(path+".pub", []byte(pub+"\n"), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO, "fake provisioner: write public key", "")
	}
	return nil
}

// CallCount returns how many times Generate ran.
func (f *FakeProvisioner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
