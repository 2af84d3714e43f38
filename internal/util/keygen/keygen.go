// Package keygen generates the RSA deploy key pair used for SSH
// authentication against the Minecraft host.
//
// The private key is emitted in PEM-encoded PKCS#1 format so it can be
// baked into the container image as /root/.ssh/id_rsa, and the public key
// in OpenSSH authorized_keys format for installation on the server.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the key size used when generating deploy keys.
const DefaultBits = 4096

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit
// size. Common bit sizes are 2048 (minimum recommended) and 4096.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	err = privateKey.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(privateKey)
	privBlock := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privDER,
	}
	privateKeyPEM := pem.EncodeToMemory(&privBlock)

	publicRsaKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	pubKeyBytes := ssh.MarshalAuthorizedKey(publicRsaKey)

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  pubKeyBytes,
	}, nil
}

// WriteKeyPair writes the pair to dir as name (mode 0600) and name.pub
// (mode 0644), refusing to overwrite an existing private key. It returns
// the path of the written private key.
func WriteKeyPair(kp *KeyPair, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}

	privPath := filepath.Join(dir, name)
	if _, err := os.Stat(privPath); err == nil {
		return "", fmt.Errorf("refusing to overwrite existing key %s", privPath)
	}

	if err := os.WriteFile(privPath, kp.PrivateKey, 0o600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(privPath+".pub", kp.PublicKey, 0o644); err != nil { //nolint:gosec // Public half is not a secret
		return "", fmt.Errorf("failed to write public key: %w", err)
	}

	return privPath, nil
}
