package address

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	a, err := Parse("0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), a[19])
	assert.Equal(t, "0x00000000000000000000000000000000000000ff", a.String())

	b, err := Parse("00000000000000000000000000000000000000FF")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Parse("0x1234")
	assert.Error(t, err)

	_, err = Parse("0xzz000000000000000000000000000000000000ff")
	assert.Error(t, err)
}

func TestFromPublicKey(t *testing.T) {
	// Generator point G, compressed.
	g, _ := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	a, err := FromPublicKey(g)
	require.NoError(t, err)
	assert.Equal(t, "0x751e76e8199196d454941c45d1b3a323f1433bd6", a.String())

	_, err = FromPublicKey([]byte{0x02, 0x01})
	assert.Error(t, err)
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Len(t, kp.PrivateKey, 32)
	assert.Len(t, kp.PublicKey, 33)

	derived, err := FromPublicKey(kp.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, kp.Address, derived)
	assert.False(t, kp.Address.IsZero())
}

func TestLessAndText(t *testing.T) {
	a := MustParse("0x0000000000000000000000000000000000000001")
	b := MustParse("0x0000000000000000000000000000000000000002")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	var c Address
	require.NoError(t, c.UnmarshalText([]byte(b.String())))
	assert.Equal(t, b, c)
}
