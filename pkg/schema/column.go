// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package schema builds the runtime column storage that an evaluator fills
// and a serialiser reads, from the declarative corset.Program a circuit
// compiles to.
package schema

import (
	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
)

// Column is one column's runtime storage: its identity and kind (carried
// through from the corset.ColumnSpec it was built from), a row-value vector
// once computed, a spilling offset, and the padded length it will have once
// §4.6 padding is applied.
type Column struct {
	Handle    corset.Handle
	Type      corset.Type
	Kind      corset.Kind
	Values    []field.Element
	Spilling  uint
	PaddedLen uint
	computed  bool
}

// Computed checks whether this column's values have been filled in.
func (c *Column) Computed() bool { return c.computed }

// Len returns the number of rows currently stored, excluding spilling.
func (c *Column) Len() int {
	if !c.computed {
		return 0
	}

	return len(c.Values) - int(c.Spilling)
}

// Get returns the value at logical row i (which may be negative, into the
// spilling region), or false if i falls outside what has been stored.
func (c *Column) Get(i int) (field.Element, bool) {
	j := i + int(c.Spilling)
	if j < 0 || j >= len(c.Values) {
		return field.Element{}, false
	}

	return c.Values[j], true
}

// Set assigns the value at logical row i, panicking if the backing storage
// has not been sized to hold it — callers must allocate via SetRaw first.
func (c *Column) Set(i int, v field.Element) {
	c.Values[i+int(c.Spilling)] = v
}

// SetRaw installs values as this column's complete row storage (already
// including spilling leading rows) and marks the column computed.
func (c *Column) SetRaw(values []field.Element, spilling uint) {
	c.Values = values
	c.Spilling = spilling
	c.computed = true
}

// PaddingValue is the padding value of an Atomic, Phantom or Interleaved
// column: zero, except for the canonical "binary/NOT" exception (§4.6).
func (c *Column) PaddingValue() field.Element {
	if isBinaryNot(c.Handle) {
		return field.FromUint64(255)
	}

	return field.Zero()
}

// isBinaryNot recognises the one column the padding strategy special-cases:
// a column named "NOT" in a module named "binary".
func isBinaryNot(h corset.Handle) bool {
	return h.Module() == "binary" && h.Name() == "NOT"
}
