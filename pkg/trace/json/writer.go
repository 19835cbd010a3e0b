package json

import (
	"github.com/segmentio/encoding/json"

	"github.com/OmegaTymbJIep/corset/pkg/eval"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

// columnEntry is one column's rendering under the "columns" object (§4.7).
type columnEntry struct {
	Values          []string        `json:"values"`
	PaddingStrategy paddingStrategy `json:"padding_strategy"`
}

type paddingStrategy struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

type document struct {
	Columns map[string]columnEntry `json:"columns"`
}

// Write renders columns as the fixed JSON document of §4.7. "values" carries
// only the genuinely computed rows; the padding rows a prior eval.Pad call
// recorded in PaddedLen are never materialised here, matching the
// serialised contract's separate "padding_strategy" value.
func Write(columns *schema.ColumnSet) ([]byte, error) {
	doc := document{Columns: make(map[string]columnEntry, len(columns.Columns()))}

	for _, col := range columns.Columns() {
		values := make([]string, col.Len())
		for i := range values {
			v, _ := col.Get(i)
			values[i] = EncodeHex(v)
		}

		pad := EncodeHex(eval.PaddingValue(col, columns))

		doc.Columns[col.Handle.Mangle()] = columnEntry{
			Values:          values,
			PaddingStrategy: paddingStrategy{Action: "prepend", Value: pad},
		}
	}

	return json.Marshal(doc)
}
