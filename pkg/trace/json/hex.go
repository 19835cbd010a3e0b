// Package json serialises and reads back traces in the JSON shape of
// §4.7: a "columns" object keyed by mangled handle, each entry carrying a
// "values" array of canonically hex-encoded field elements and a
// "padding_strategy" describing how the column was padded.
package json

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/OmegaTymbJIep/corset/pkg/field"
)

// EncodeHex renders x as the canonical hex string of §4.7: the "0x" prefix
// of the fixed-width representation is replaced by "0x0", and the
// remaining digits have their leading zeros stripped (so zero renders as
// exactly "0x0").
func EncodeHex(x field.Element) string {
	full := x.Hex() // "0x" + 64 lower-case hex digits

	digits := strings.TrimLeft(full[2:], "0")

	return "0x0" + digits
}

// DecodeHex parses the canonical encoding produced by EncodeHex back into a
// field element.
func DecodeHex(s string) (field.Element, error) {
	if !strings.HasPrefix(s, "0x0") {
		return field.Element{}, fmt.Errorf("malformed hex value %q", s)
	}

	digits := s[3:]
	if digits == "" {
		digits = "0"
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return field.Element{}, fmt.Errorf("malformed hex value %q", s)
	}

	e, ok := field.FromBigInt(v)
	if !ok {
		return field.Element{}, fmt.Errorf("value out of field range %q", s)
	}

	return e, nil
}
