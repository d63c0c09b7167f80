package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer is the wallet signing capability handed to the swap executor.
// Implementations may prompt a user, so callers must serialize signing
// requests: most wallet providers only support one in flight.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

// LocalSigner signs with an in-process base58-encoded private key.
type LocalSigner struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// NewLocalSigner parses a base58-encoded private key.
func NewLocalSigner(base58Key string) (*LocalSigner, error) {
	if base58Key == "" {
		return nil, fmt.Errorf("private key not configured")
	}
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &LocalSigner{key: key, pub: key.PublicKey()}, nil
}

// PublicKey returns the wallet address.
func (s *LocalSigner) PublicKey() solana.PublicKey {
	return s.pub
}

// Sign signs every message account the wallet controls.
func (s *LocalSigner) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
