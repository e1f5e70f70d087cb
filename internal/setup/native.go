package setup

import (
	"context"
	"fmt"

	"github.com/charmbracelet/keygen"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/logger"
)

// NativeProvisioner generates keys in-process.
type NativeProvisioner struct {
	Log logger.Logger
}

var nativeKeyTypes = map[string]keygen.KeyType{
	"ed25519": keygen.Ed25519,
	"rsa":     keygen.RSA,
	"ecdsa":   keygen.ECDSA,
}

// NativeKeyTypes lists the key types the builtin backend can produce.
func NativeKeyTypes() []string {
	return []string{"ecdsa", "ed25519", "rsa"}
}

// Generate writes a new keyType key pair at path and path.pub.
func (p *NativeProvisioner) Generate(ctx context.Context, keyType, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kt, ok := nativeKeyTypes[keyType]
	if !ok {
		return errors.New(errors.ErrValidation,
			fmt.Sprintf("Key type '%s' is not supported by the builtin backend", keyType),
			"Use ed25519, rsa or ecdsa, or switch keygen_backend to exec")
	}

	if p.Log != nil {
		p.Log.Debug("generating %s key in-process at %s", keyType, path)
	}

	kp, err := keygen.New(path, keygen.WithKeyType(kt))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to generate %s key", keyType), "")
	}

	if err := kp.WriteKeys(); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to write key pair at %s", path),
			"Check permissions on ~/.ssh")
	}

	return nil
}
