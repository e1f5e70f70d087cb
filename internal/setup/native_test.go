package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeProvisioner_Generate(t *testing.T) {
	tests := []struct {
		keyType string
		sshType string
	}{
		{keyType: "ed25519", sshType: "ssh-ed25519"},
		{keyType: "ecdsa", sshType: "ecdsa-sha2-nistp"},
	}

	for _, tt := range tests {
		t.Run(tt.keyType, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "id_"+tt.keyType+"_a")
			p := &NativeProvisioner{}

			require.NoError(t, p.Generate(context.Background(), tt.keyType, path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, sshutil.IsPrivateKey(data))

			_, info, err := sshutil.ReadPublicKeyFile(path + ".pub")
			require.NoError(t, err)
			assert.Contains(t, info.Type, tt.sshType)
		})
	}
}

func TestNativeProvisioner_UnsupportedType(t *testing.T) {
	p := &NativeProvisioner{}
	path := filepath.Join(t.TempDir(), "k")

	err := p.Generate(context.Background(), "dsa", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
	assert.NoFileExists(t, path)
}

func TestNativeProvisioner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "k")
	assert.Error(t, (&NativeProvisioner{}).Generate(ctx, "ed25519", path))
	assert.NoFileExists(t, path)
}

func TestNativeKeyTypes(t *testing.T) {
	for _, kt := range NativeKeyTypes() {
		_, ok := nativeKeyTypes[kt]
		assert.True(t, ok, kt)
	}
	assert.Len(t, NativeKeyTypes(), len(nativeKeyTypes))
}
