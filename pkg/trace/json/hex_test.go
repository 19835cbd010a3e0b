package json

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/pkg/field"
)

func TestEncodeHexZero(t *testing.T) {
	assert.Equal(t, "0x0", EncodeHex(field.Zero()))
}

func TestEncodeHexOne(t *testing.T) {
	assert.Equal(t, "0x01", EncodeHex(field.One()))
}

func TestEncodeHexStripsLeadingZerosButKeepsOneDigitForMultiplesOf16(t *testing.T) {
	assert.Equal(t, "0x010", EncodeHex(field.FromUint64(16)))
}

// Invariant 10: parse(render(x)) = x for all Fr.
func TestHexRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 16, 255, 65536, 1 << 40}

	for _, v := range values {
		e := field.FromUint64(v)

		decoded, err := DecodeHex(EncodeHex(e))
		assert.NoError(t, err)
		assert.True(t, e.Equals(decoded), "round-trip of %d", v)
	}

	top, _ := field.FromBigInt(new(big.Int).Sub(field.Modulus(), big.NewInt(1)))
	decoded, err := DecodeHex(EncodeHex(top))
	assert.NoError(t, err)
	assert.True(t, top.Equals(decoded))
}

func TestDecodeHexRejectsMalformedInput(t *testing.T) {
	_, err := DecodeHex("0x1")
	assert.Error(t, err)

	_, err = DecodeHex("not hex at all")
	assert.Error(t, err)
}
