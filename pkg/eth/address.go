// Package eth implements the small slice of Ethereum conventions the
// marketplace needs: address handling and EIP-191 personal_sign message
// recovery. It deliberately does not talk to any chain.
package eth

import (
	"regexp"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsAddress reports whether s looks like a 20-byte hex wallet address.
func IsAddress(s string) bool {
	return addressRe.MatchString(s)
}

// Normalize lowercases a wallet address. All storage and comparison happens
// on the normalized form; mixed-case (EIP-55) input is accepted but not
// preserved.
func Normalize(addr string) string {
	return strings.ToLower(addr)
}

// PubkeyToAddress derives the 0x-prefixed address for an uncompressed
// secp256k1 public key: the last 20 bytes of keccak256(pubkey[1:]).
func PubkeyToAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()

	h := sha3.NewLegacyKeccak256()
	h.Write(raw[1:])
	sum := h.Sum(nil)

	const hexdigits = "0123456789abcdef"
	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for _, b := range sum[12:] {
		out = append(out, hexdigits[b>>4], hexdigits[b&0x0f])
	}
	return string(out)
}
