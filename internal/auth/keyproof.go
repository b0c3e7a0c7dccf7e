package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyProofPrefix domain-separates login signatures from anything else a
// party might sign with the same key.
const KeyProofPrefix = "trade-escrow/auth/v1/"

// ChallengeDigest is what the client signs: sha256 of the prefixed nonce.
func ChallengeDigest(nonce string) []byte {
	h := sha256.Sum256([]byte(KeyProofPrefix + nonce))
	return h[:]
}

// VerifyKeyProof checks an ed25519 signature over the challenge digest.
// The public key and signature are hex-encoded.
func VerifyKeyProof(pubKeyHex, nonce, signatureHex string) error {
	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size: %d", len(pubKey))
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature size: %d", len(sig))
	}

	if !ed25519.Verify(pubKey, ChallengeDigest(nonce), sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
