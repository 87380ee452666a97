// Package elgamal models the cryptographic collaborators that spec.md
// explicitly places out of scope: ElGamal encryption, the membership proof,
// the cast-as-intended (CAI) proof, and the homomorphic ciphertext
// operator. Core only ever calls through the interfaces and the Combine
// function declared here; it never inspects the internals of a Ciphertext
// or a proof.
//
// A production build would wire a real ZK-proof stack here — the pack this
// repo is grounded on includes github.com/consensys/gnark-crypto for
// exactly that purpose (tos-network-gtos's go.mod) — but implementing
// ElGamal and UCIV proofs from scratch is explicitly out of scope (spec
// §1), so this package provides a minimal, clearly-labelled stand-in: real
// exponential-ElGamal arithmetic (so the homomorphic sum in §4.2 is
// actually additive and testable), and hash-based "opaque" proofs that
// round-trip correctly but carry no cryptographic soundness.
package elgamal

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
)

// modulus is a fixed 768-bit safe prime (the RFC 2409 Oakley group 1
// modulus) used purely to give the stand-in ElGamal arithmetic well-defined
// group operations. This is not a production security parameter.
var modulus, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A63A3620FFFFFFFFFFFFFFFF", 16)
var generator = big.NewInt(5)

// PublicKey is the election's shared ElGamal public key: h = g^x for a
// secret x known only to the tallying authority (external to this node).
type PublicKey struct {
	H *big.Int `json:"h"`
}

// Ciphertext is an exponential-ElGamal ciphertext (c1, c2) = (g^r, g^m * h^r).
// Encoding the vote m as an exponent (rather than directly) is what makes
// the sum of ciphertexts decrypt to the sum of votes.
type Ciphertext struct {
	C1 *big.Int `json:"c1"`
	C2 *big.Int `json:"c2"`
}

// Equal reports whether two ciphertexts carry identical components.
func (c Ciphertext) Equal(o Ciphertext) bool {
	if c.C1 == nil || o.C1 == nil || c.C2 == nil || o.C2 == nil {
		return c.C1 == nil && o.C1 == nil && c.C2 == nil && o.C2 == nil
	}
	return c.C1.Cmp(o.C1) == 0 && c.C2.Cmp(o.C2) == 0
}

// EncryptionOfZero returns the identity ciphertext for Combine: the
// exponential-ElGamal encryption of 0 with randomness 0, i.e. (1, 1). It is
// deliberately insecure (zero randomness leaks the plaintext in a real
// deployment) but it is only ever used as the starting accumulator for a
// homomorphic sum, never transmitted as a real vote.
func EncryptionOfZero(_ PublicKey) Ciphertext {
	return Ciphertext{C1: big.NewInt(1), C2: big.NewInt(1)}
}

// Combine is the homomorphic operator (§4.2, §9): component-wise modular
// multiplication, which under exponential ElGamal is equivalent to adding
// the underlying plaintext exponents.
func Combine(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		C1: new(big.Int).Mod(new(big.Int).Mul(a.C1, b.C1), modulus),
		C2: new(big.Int).Mod(new(big.Int).Mul(a.C2, b.C2), modulus),
	}
}

// Encrypt produces a ciphertext for plaintext m (0 or 1) under pub, using
// fresh randomness. Exposed for tests and for any external client
// constructing sample Vote transactions; core never calls this directly.
func Encrypt(pub PublicKey, m int64) (Ciphertext, error) {
	r, err := rand.Int(rand.Reader, modulus)
	if err != nil {
		return Ciphertext{}, fmt.Errorf("elgamal: sample randomness: %w", err)
	}
	c1 := new(big.Int).Exp(generator, r, modulus)
	gm := new(big.Int).Exp(generator, big.NewInt(m), modulus)
	hr := new(big.Int).Exp(pub.H, r, modulus)
	c2 := new(big.Int).Mod(new(big.Int).Mul(gm, hr), modulus)
	return Ciphertext{C1: c1, C2: c2}, nil
}

// ImageSet is one voter's public UCIV material: the set of images the CAI
// proof is checked against, one per permitted plaintext option.
type ImageSet struct {
	Images []string `json:"images"`
}

// MarshalJSON/UnmarshalJSON give PublicKey and Ciphertext a stable, opaque
// wire representation (hex strings) so genesis files and transactions stay
// human-inspectable without leaking big.Int internals.

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		H string `json:"h"`
	}{H: bigToHex(p.H)})
}

func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var aux struct {
		H string `json:"h"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := hexToBig(aux.H)
	if err != nil {
		return fmt.Errorf("elgamal: public key: %w", err)
	}
	p.H = v
	return nil
}

func (c Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		C1 string `json:"c1"`
		C2 string `json:"c2"`
	}{C1: bigToHex(c.C1), C2: bigToHex(c.C2)})
}

func (c *Ciphertext) UnmarshalJSON(data []byte) error {
	var aux struct {
		C1 string `json:"c1"`
		C2 string `json:"c2"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c1, err := hexToBig(aux.C1)
	if err != nil {
		return fmt.Errorf("elgamal: ciphertext c1: %w", err)
	}
	c2, err := hexToBig(aux.C2)
	if err != nil {
		return fmt.Errorf("elgamal: ciphertext c2: %w", err)
	}
	c.C1, c.C2 = c1, c2
	return nil
}

func bigToHex(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.Text(16)
}

func hexToBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex big integer %q", s)
	}
	return v, nil
}
