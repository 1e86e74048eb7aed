// Package sshkey validates, normalizes, and deploys the migration SSH
// private key to target hosts.
package sshkey

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Normalize validates that raw parses as an SSH private key and
// returns it with surrounding whitespace stripped and exactly one
// trailing newline. Keys copied through tickets and clipboards tend to
// arrive with mangled spacing that sshd rejects.
func Normalize(raw []byte) ([]byte, error) {
	if _, err := ssh.ParseRawPrivateKey(raw); err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key := bytes.TrimSpace(raw)
	return append(key, '\n'), nil
}

// Fingerprint returns the SHA256 fingerprint of the key's public half.
func Fingerprint(raw []byte) (string, error) {
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	return ssh.FingerprintSHA256(signer.PublicKey()), nil
}
