// Package signing provides attestation signing for provide_input acknowledgements.
package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/fingerprint"
)

// Claims are the fields covered by an attestation signature.
type Claims struct {
	JobID     string
	StatusID  string
	Timestamp time.Time
}

// Signer produces an attestation over a set of claims.
type Signer interface {
	Sign(claims Claims) (model.Attestation, error)
}

// claimBytes returns the canonical byte encoding of the claims.
func claimBytes(claims Claims) ([]byte, error) {
	return fingerprint.Canonical(map[string]any{
		"job_id":    claims.JobID,
		"status_id": claims.StatusID,
		"timestamp": claims.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// Ed25519Signer signs attestation claims with an Ed25519 private key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer constructs a signer from a hex-encoded 32-byte seed.
func NewEd25519Signer(seedHex string) (*Ed25519Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateEd25519Signer creates a signer with a fresh random key.
// Intended for development where no seed is configured; attestations from an
// ephemeral key cannot be verified across restarts.
func GenerateEd25519Signer() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &Ed25519Signer{priv: priv}, nil
}

// Sign signs the canonical encoding of the claims.
func (s *Ed25519Signer) Sign(claims Claims) (model.Attestation, error) {
	payload, err := claimBytes(claims)
	if err != nil {
		return model.Attestation{}, fmt.Errorf("encode attestation claims: %w", err)
	}

	sig := ed25519.Sign(s.priv, payload)
	pub, ok := s.priv.Public().(ed25519.PublicKey)
	if !ok {
		return model.Attestation{}, fmt.Errorf("unexpected public key type %T", s.priv.Public())
	}

	return model.Attestation{
		Signature: hex.EncodeToString(sig),
		PublicKey: hex.EncodeToString(pub),
		Algorithm: "ed25519",
		SignedAt:  claims.Timestamp,
	}, nil
}

// Verify checks an attestation signature against the given claims.
func Verify(publicKeyHex string, claims Claims, signatureHex string) (bool, error) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false, fmt.Errorf("decode public key: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	payload, err := claimBytes(claims)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig), nil
}

// StaticSigner is a deterministic test double that returns a fixed signature.
type StaticSigner struct {
	Signature string
}

// Sign returns the configured signature with the claim timestamp echoed back.
func (s *StaticSigner) Sign(claims Claims) (model.Attestation, error) {
	return model.Attestation{
		Signature: s.Signature,
		Algorithm: "static",
		SignedAt:  claims.Timestamp,
	}, nil
}
