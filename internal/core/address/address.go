// Package address defines the 20-byte identifiers used for assets, agents and
// backers.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Length is the size of an address in bytes.
const Length = 20

// Address identifies an account. The zero value is the "no address" sentinel.
type Address [Length]byte

// Zero is the sentinel returned when no address applies.
var Zero Address

// Parse reads a hex address with or without a 0x prefix.
func Parse(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != Length*2 {
		return Zero, fmt.Errorf("invalid address length %d: %q", len(s), s)
	}
	var a Address
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return Zero, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromPublicKey derives the address of a serialized secp256k1 public key
// as RIPEMD160(SHA256(compressed key)).
func FromPublicKey(pubKey []byte) (Address, error) {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return Zero, fmt.Errorf("invalid public key: %w", err)
	}
	sum := sha256.Sum256(pk.SerializeCompressed())
	h := ripemd160.New()
	h.Write(sum[:])
	var a Address
	copy(a[:], h.Sum(nil))
	return a, nil
}

// KeyPair is a freshly generated secp256k1 key with its address.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
	Address    Address
}

// GenerateKeyPair creates a random secp256k1 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	pub := priv.PubKey().SerializeCompressed()
	addr, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivateKey: priv.Serialize(), PublicKey: pub, Address: addr}, nil
}

// IsZero reports whether a is the sentinel.
func (a Address) IsZero() bool { return a == Zero }

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Less orders addresses bytewise.
func (a Address) Less(b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
