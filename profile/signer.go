package profile

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
)

// Signer holds the ed25519 keypair that identifies a player. The
// base58-encoded public key is the wallet address.
type Signer struct {
	priv ed25519.PrivateKey
}

// NewSigner wraps an existing private key.
func NewSigner(priv ed25519.PrivateKey) *Signer {
	return &Signer{priv: priv}
}

// GenerateSigner creates a fresh keypair.
func GenerateSigner() (*Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}
	return &Signer{priv: priv}, nil
}

// Address returns the wallet address: the base58-encoded public key.
func (s *Signer) Address() string {
	return base58.Encode(s.priv.Public().(ed25519.PublicKey))
}

// Sign signs msg and returns the base58-encoded signature.
func (s *Signer) Sign(msg []byte) string {
	return base58.Encode(ed25519.Sign(s.priv, msg))
}

// keyFile is the on-disk keypair format.
type keyFile struct {
	PrivateKey string `json:"privateKey"` // base58 seed||public
}

// LoadOrCreateSigner reads the keypair at path, generating and writing
// one on first run. The file is created with owner-only permissions.
func LoadOrCreateSigner(path string) (*Signer, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		var kf keyFile
		if err := json.Unmarshal(raw, &kf); err != nil {
			return nil, fmt.Errorf("parsing key file %s: %w", path, err)
		}
		priv, err := base58.Decode(kf.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("decoding key file %s: %w", path, err)
		}
		if len(priv) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("key file %s: bad key length %d", path, len(priv))
		}
		return &Signer{priv: ed25519.PrivateKey(priv)}, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file %s: %w", path, err)
	}

	s, err := GenerateSigner()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating key dir: %w", err)
	}
	raw, err = json.Marshal(keyFile{PrivateKey: base58.Encode(s.priv)})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return nil, fmt.Errorf("writing key file %s: %w", path, err)
	}
	return s, nil
}
