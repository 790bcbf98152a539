// Package keys loads signing identities from the forms operators actually
// have them in: solana-keygen JSON files and base58-encoded secret keys.
package keys

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"solswap-service/internal/application"
)

// LocalSigner signs with an in-process ed25519 key.
type LocalSigner struct {
	key solana.PrivateKey
}

var _ application.Signer = (*LocalSigner)(nil)

func NewLocalSigner(key solana.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

// FromKeygenFile loads a keypair written by solana-keygen.
func FromKeygenFile(path string) (*LocalSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return &LocalSigner{key: key}, nil
}

// FromBase58 decodes a base58 secret key, the format wallets export.
func FromBase58(s string) (*LocalSigner, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("secret key must be 64 bytes, got %d", len(raw))
	}
	return &LocalSigner{key: solana.PrivateKey(raw)}, nil
}

func (s *LocalSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *LocalSigner) Sign(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}
