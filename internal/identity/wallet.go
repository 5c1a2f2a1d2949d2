package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

const signatureLength = 65

// personalMessageHash is the keccak256 digest wallets sign for personal_sign.
func personalMessageHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return keccak256([]byte(prefixed))
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// PublicKeyAddress returns the 0x-prefixed lowercase wallet address of pub.
func PublicKeyAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()
	return "0x" + hex.EncodeToString(keccak256(raw[1:])[12:])
}

// RecoverAddress returns the address that produced signature over message.
// signature is the hex encoded 65-byte r||s||v form, v being 0/1 or 27/28.
func RecoverAddress(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "0x"))
	if err != nil || len(sig) != signatureLength {
		return "", ErrInvalidSignature
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", ErrInvalidSignature
	}

	compact := make([]byte, signatureLength)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, personalMessageHash(message))
	if err != nil {
		return "", ErrInvalidSignature
	}
	return PublicKeyAddress(pub), nil
}

// SignPersonalMessage signs message the way a wallet does for personal_sign and returns the hex signature.
func SignPersonalMessage(key *secp256k1.PrivateKey, message string) string {
	compact := ecdsa.SignCompact(key, personalMessageHash(message), false)
	sig := make([]byte, signatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return "0x" + hex.EncodeToString(sig)
}
