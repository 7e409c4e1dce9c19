// Package auth implements the prefq shared-secret handshake.
//
// The producer encrypts the shared password with the server's SSH RSA public
// key and sends it with every submission. The server decrypts it with the
// matching private key and compares. On success the server answers with the
// password encrypted under the same public key, which a producer holding the
// private key can open to confirm it is talking to the right server.
//
// Authentication is all-or-nothing: it is enabled only when a public key, a
// private key and a password are all configured.
package auth

import (
	"crypto/rsa"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrAuthMismatch is returned when a submitted secret cannot be decrypted or
// does not match the configured password.
var ErrAuthMismatch = errors.New("authentication mismatch")

// Verifier checks submissions on the server side.
type Verifier struct {
	public   *rsa.PublicKey
	private  *rsa.PrivateKey
	password string
}

// NewVerifier loads both key files and returns a verifier for password.
func NewVerifier(publicKeyPath, privateKeyPath, password string) (*Verifier, error) {
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	pub, err := LoadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}
	priv, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, fmt.Errorf("public key %s does not match private key %s", publicKeyPath, privateKeyPath)
	}

	return &Verifier{public: pub, private: priv, password: password}, nil
}

// Verify decrypts the base64 secret sent by a producer and compares it with
// the configured password in constant time.
func (v *Verifier) Verify(encrypted string) error {
	if encrypted == "" {
		return fmt.Errorf("%w: no secret supplied", ErrAuthMismatch)
	}

	plain, err := Decrypt(v.private, encrypted)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthMismatch, err)
	}
	if subtle.ConstantTimeCompare([]byte(plain), []byte(v.password)) != 1 {
		return ErrAuthMismatch
	}
	return nil
}

// Ack returns a fresh encryption of the password for the submit response.
func (v *Verifier) Ack() (string, error) {
	return Encrypt(v.public, v.password)
}

// Credentials is the producer side of the handshake. The private key is
// optional; without it acks are accepted unchecked.
type Credentials struct {
	public   *rsa.PublicKey
	private  *rsa.PrivateKey
	password string
}

// NewCredentials loads the producer's keys. privateKeyPath may be empty.
func NewCredentials(publicKeyPath, privateKeyPath, password string) (*Credentials, error) {
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	pub, err := LoadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}

	c := &Credentials{public: pub, password: password}
	if privateKeyPath != "" {
		priv, err := LoadPrivateKey(privateKeyPath)
		if err != nil {
			return nil, err
		}
		c.private = priv
	}
	return c, nil
}

// Seal returns the encrypted secret to attach to a submission. OAEP is
// randomized, so every call yields a different value.
func (c *Credentials) Seal() (string, error) {
	return Encrypt(c.public, c.password)
}

// CanConfirm reports whether acks can be checked.
func (c *Credentials) CanConfirm() bool {
	return c.private != nil
}

// ConfirmAck checks the server's ack. Without a private key it always
// succeeds.
func (c *Credentials) ConfirmAck(ack string) error {
	if c.private == nil {
		return nil
	}
	if ack == "" {
		return fmt.Errorf("%w: server returned no acknowledgement", ErrAuthMismatch)
	}

	plain, err := Decrypt(c.private, ack)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthMismatch, err)
	}
	if subtle.ConstantTimeCompare([]byte(plain), []byte(c.password)) != 1 {
		return fmt.Errorf("%w: server acknowledged a different secret", ErrAuthMismatch)
	}
	return nil
}
