package sshutil

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// PublicKeyInfo summarizes an authorized_keys style public key line.
type PublicKeyInfo struct {
	Type        string
	Comment     string
	Fingerprint string // SHA256:<base64>, as printed by ssh-keygen -l
}

// ParsePublicKey parses one authorized_keys style line.
func ParsePublicKey(line []byte) (*PublicKeyInfo, error) {
	key, comment, _, _, err := ssh.ParseAuthorizedKey(line)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &PublicKeyInfo{
		Type:        key.Type(),
		Comment:     comment,
		Fingerprint: ssh.FingerprintSHA256(key),
	}, nil
}

// ReadPublicKeyFile reads a .pub file and returns its trimmed contents
// alongside the parsed key details.
func ReadPublicKeyFile(path string) (string, *PublicKeyInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	line := strings.TrimSpace(string(data))
	info, err := ParsePublicKey([]byte(line))
	if err != nil {
		return line, nil, err
	}
	return line, info, nil
}

// IsPrivateKey reports whether data parses as an unencrypted private key.
// Passphrase-protected keys also count.
func IsPrivateKey(data []byte) bool {
	_, err := ssh.ParseRawPrivateKey(data)
	if err == nil {
		return true
	}
	_, missing := err.(*ssh.PassphraseMissingError)
	return missing
}
