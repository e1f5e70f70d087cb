package host

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/rileyhilliard/ssv/internal/errors"
)

// validHost matches host identifiers: ASCII letters, digits, '.', '-', '_'.
// Slashes and whitespace fall outside the class, so a host can never name a path.
var validHost = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// validKeyType matches key types such as ed25519, rsa, ecdsa.
var validKeyType = regexp.MustCompile(`^[a-z0-9]+$`)

// ValidateHost checks that id is safe to use as a fragment filename stem and
// inside key filenames.
func ValidateHost(id string) error {
	if id == "" {
		return errors.New(errors.ErrValidation,
			"Host must not be empty",
			"Pass a host name, e.g. --host github.com")
	}

	if !validHost.MatchString(id) {
		return errors.New(errors.ErrValidation,
			fmt.Sprintf("Invalid host identifier '%s'", id),
			"Allowed characters are letters, digits, '.', '-' and '_'")
	}

	return nil
}

// ValidateKeyType checks that t is a plausible ssh-keygen type name.
func ValidateKeyType(t string) error {
	if t == "" {
		return errors.New(errors.ErrValidation,
			"Key type must not be empty",
			"Use e.g. --type ed25519")
	}

	if !validKeyType.MatchString(t) {
		return errors.New(errors.ErrValidation,
			fmt.Sprintf("Invalid key type '%s'", t),
			"Expected lowercase letters or digits, e.g. ed25519, rsa, ecdsa")
	}

	return nil
}

// ValidateUser checks that user can be written as a single ssh_config token.
// An empty user is allowed and means no User line.
func ValidateUser(user string) error {
	for _, r := range user {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return errors.New(errors.ErrValidation,
				fmt.Sprintf("Invalid user %q", user),
				"User names must not contain whitespace or control characters")
		}
	}
	return nil
}
