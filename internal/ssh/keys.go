package ssh

// keys.go wraps 'crypto/ed25519' and 'x/crypto/ssh' key plumbing: sitelift
// generates ED25519 keypairs in the shapes EC2 and the post-launch SSH
// session need, writing the private half to disk for reuse across commands.

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

var (
	ErrKeyGen         = fmt.Errorf("failed to generate ED25519 keypair")
	ErrPubKeyMarshal  = fmt.Errorf("failed to marshal public key to OpenSSH format")
	ErrPrivKeyMarshal = fmt.Errorf("failed to marshal private key to OpenSSH format")
	ErrKeyParse       = fmt.Errorf("failed to parse SSH private key")
)

// KeyPair is an ED25519 keypair in the shapes this tool needs: the OpenSSH
// public key for EC2 import, and an 'ssh.Signer' for the connection itself.
type KeyPair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

func NewKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %w", ErrKeyGen, err)
	}
	return KeyPair{public: pub, private: priv}, nil
}

// PublicOpenSSH renders the public key in the 'authorized_keys' format EC2
// key pair import expects.
func (kp KeyPair) PublicOpenSSH() ([]byte, error) {
	pub, err := ssh.NewPublicKey(kp.public)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPubKeyMarshal, err)
	}
	marshaled := ssh.MarshalAuthorizedKey(pub)
	if marshaled == nil {
		return nil, ErrPubKeyMarshal
	}
	return marshaled, nil
}

// PrivatePEM renders the private key as a PEM-encoded OpenSSH key, suitable
// for writing to a .pem file.
func (kp KeyPair) PrivatePEM(comment string) ([]byte, error) {
	block, err := ssh.MarshalPrivateKey(kp.private, comment)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrivKeyMarshal, err)
	}
	encoded := pem.EncodeToMemory(block)
	if encoded == nil {
		return nil, ErrPrivKeyMarshal
	}
	return encoded, nil
}

// Signer converts the private key for use with 'Connect'.
func (kp KeyPair) Signer() (ssh.Signer, error) {
	return ssh.NewSignerFromKey(kp.private)
}

// ParsePrivateKey parses a PEM-encoded OpenSSH private key, as written by
// PrivatePEM or ssh-keygen.
func ParsePrivateKey(key []byte) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyParse, err)
	}
	return signer, nil
}
