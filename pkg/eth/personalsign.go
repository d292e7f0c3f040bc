package eth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// ErrMalformedSignature is returned when a signature is not a 65-byte
// hex-encoded [R || S || V] blob.
var ErrMalformedSignature = errors.New("malformed signature")

// hashPersonalMessage applies the EIP-191 "personal message" envelope the
// wallet's personal_sign uses before hashing:
//
//	keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg)
func hashPersonalMessage(msg []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d", len(msg))
	h.Write(msg)
	return h.Sum(nil)
}

// RecoverAddress recovers the signer address of a personal_sign signature.
// sigHex is the wallet-produced 65-byte [R || S || V] signature, hex encoded
// with or without a 0x prefix; V may be 0/1 or the legacy 27/28.
func RecoverAddress(msg string, sigHex string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil || len(sig) != 65 {
		return "", ErrMalformedSignature
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", ErrMalformedSignature
	}

	// RecoverCompact wants [V+27 || R || S].
	compact := make([]byte, 65)
	compact[0] = v + 27
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hashPersonalMessage([]byte(msg)))
	if err != nil {
		return "", fmt.Errorf("recovering signer: %w", err)
	}
	return PubkeyToAddress(pub), nil
}

// SignPersonal produces a personal_sign-compatible [R || S || V] signature.
// This is what a wallet extension does client-side; the server only needs it
// in tests and tooling.
func SignPersonal(msg string, key *secp256k1.PrivateKey) string {
	compact := ecdsa.SignCompact(key, hashPersonalMessage([]byte(msg)), false)

	// SignCompact returns [V+27 || R || S]; wallets put V last.
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0] - 27

	return "0x" + hex.EncodeToString(sig)
}
