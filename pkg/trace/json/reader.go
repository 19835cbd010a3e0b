package json

import (
	"fmt"
	"math/big"

	"github.com/segmentio/encoding/json"

	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

// Read parses an external trace document and installs its leaves into the
// matching atomic/phantom columns of columns, per §6: a nested object whose
// leaves are arrays of decimal or string numerals, with path
// "<module>/<column>" locating the destination. Unknown paths are reported
// but do not abort the read.
func Read(data []byte, columns *schema.ColumnSet) ([]string, error) {
	var raw map[string]map[string][]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed trace document: %w", err)
	}

	var warnings []string

	for module, cols := range raw {
		for name, rows := range cols {
			col, ok := columns.Lookup(module, name)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown trace path %s/%s", module, name))
				continue
			}

			values, err := decodeNumerals(rows)
			if err != nil {
				return warnings, fmt.Errorf("%s/%s: %w", module, name, err)
			}

			col.SetRaw(values, 0)
		}
	}

	return warnings, nil
}

// decodeNumerals parses a JSON array whose elements are either a decimal
// numeral or a string numeral (decimal or "0x"-prefixed hex) into field
// elements.
func decodeNumerals(rows []json.RawMessage) ([]field.Element, error) {
	values := make([]field.Element, len(rows))

	for i, raw := range rows {
		v, err := decodeNumeral(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		values[i] = v
	}

	return values, nil
}

func decodeNumeral(raw json.RawMessage) (field.Element, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return parseNumeralString(asString)
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return field.Element{}, fmt.Errorf("not a numeral: %s", raw)
	}

	return parseNumeralString(asNumber.String())
}

func parseNumeralString(s string) (field.Element, error) {
	base := 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return field.Element{}, fmt.Errorf("malformed numeral %q", s)
	}

	e, ok := field.FromBigInt(v)
	if !ok {
		return field.Element{}, fmt.Errorf("value %q out of field range", s)
	}

	return e, nil
}
