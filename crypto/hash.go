// Package crypto provides the content-addressing hash primitives used for
// transaction and block identifiers, and the genesis configuration hash.
// The cryptographic primitives proper (ElGamal encryption, membership and
// cast-as-intended proofs) live in the elgamal package and are consumed by
// core as opaque collaborators per spec §1.
package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 hash of data as a lowercase hex string. Used to
// derive transaction and block identifiers: a collision-resistant hash of
// the variant-plus-payload (spec §3).
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashBytes returns the raw SHA-256 bytes of data.
func HashBytes(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// HashSHA1 returns the SHA-1 hash of data as a lowercase hex string. Used
// exclusively for genesis_configuration_hash (spec §6), matching
// original_source's Sha1::from(bytes).hexdigest() over the serialized
// genesis configuration.
func HashSHA1(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}
