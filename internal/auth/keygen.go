package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// WriteKeyPair generates an RSA key pair and writes it to dir as id_rsa and
// id_rsa.pub in OpenSSH format, returning both paths. Used by tests and by
// prefqctl keygen.
func WriteKeyPair(dir string, bits int) (publicPath, privatePath string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(key, "prefq")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode private key: %w", err)
	}
	sshPub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode public key: %w", err)
	}

	privatePath = filepath.Join(dir, "id_rsa")
	publicPath = privatePath + ".pub"

	if err := os.WriteFile(privatePath, pem.EncodeToMemory(block), 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", privatePath, err)
	}
	if err := os.WriteFile(publicPath, ssh.MarshalAuthorizedKey(sshPub), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", publicPath, err)
	}
	return publicPath, privatePath, nil
}
