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
package schema

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
)

// ColumnSet is the module-indexed mapping from (module, name) to a dense
// column id, paired with the dense vector of Columns it addresses (§3.6).
type ColumnSet struct {
	byModule map[string]map[string]uint
	columns  []*Column
	// computed records, by id, the columns passed to MarkComputed; it is
	// kept separately from Column.computed, and Column.SetRaw does not
	// update it.
	computed *bitset.BitSet
}

// Build constructs a ColumnSet from a compiled Program, sizing every
// column's spilling offset from the composite computations declared in its
// module (§3.7), and leaving every column's Values empty until the
// evaluator fills them in.
func Build(prog *corset.Program) *ColumnSet {
	cs := &ColumnSet{
		byModule: make(map[string]map[string]uint),
		columns:  make([]*Column, len(prog.Columns)),
		computed: bitset.New(uint(len(prog.Columns))),
	}

	spilling := spillingByModule(prog.Comps)

	for _, spec := range prog.Columns {
		id := spec.Handle.ID()
		module := spec.Handle.Module()

		col := &Column{
			Handle:   spec.Handle,
			Type:     spec.Type,
			Kind:     spec.Kind(),
			Spilling: spilling[module],
		}

		cs.columns[id] = col

		if _, ok := cs.byModule[module]; !ok {
			cs.byModule[module] = make(map[string]uint)
		}

		cs.byModule[module][spec.Handle.Name()] = id
	}

	return cs
}

// Lookup resolves a (module, name) pair to its column, as an atomic access
// path for the evaluator's get() callback and the trace reader.
func (cs *ColumnSet) Lookup(module, name string) (*Column, bool) {
	m, ok := cs.byModule[module]
	if !ok {
		return nil, false
	}

	id, ok := m[name]
	if !ok {
		return nil, false
	}

	return cs.columns[id], true
}

// Column returns the column with the given dense id.
func (cs *ColumnSet) Column(id uint) *Column { return cs.columns[id] }

// Columns returns every column in the set, in id order.
func (cs *ColumnSet) Columns() []*Column { return cs.columns }

// Modules returns the distinct module names present in this column set.
func (cs *ColumnSet) Modules() []string {
	modules := make([]string, 0, len(cs.byModule))
	for m := range cs.byModule {
		modules = append(modules, m)
	}

	return modules
}

// MarkComputed records that the column with the given id has had its
// values installed.
func (cs *ColumnSet) MarkComputed(id uint) { cs.computed.Set(id) }

// IsComputed checks whether MarkComputed has been called for the given id.
func (cs *ColumnSet) IsComputed(id uint) bool { return cs.computed.Test(id) }

// RawLength returns the shared row count of every (non-spilling) row
// currently stored by the computed columns of module — the "raw length"
// of §3.6, required so that every column in a module agrees on row count.
func (cs *ColumnSet) RawLength(module string) uint {
	var max uint

	for _, id := range cs.byModule[module] {
		col := cs.columns[id]
		if n := col.Len(); n > int(max) {
			max = uint(n)
		}
	}

	return max
}

// spillingByModule computes, for every module appearing in comps, the
// spilling offset of §3.7: the maximum absolute shift (past or future)
// appearing in any Composite computation's expression in that module.
func spillingByModule(comps *corset.ComputationTable) map[string]uint {
	result := make(map[string]uint)

	for _, comp := range comps.All() {
		composite, ok := comp.(*corset.Composite)
		if !ok {
			continue
		}

		module := composite.Target.Module()

		minPast, maxFuture := shiftExtrema(composite.Expr)

		need := minPast
		if maxFuture > need {
			need = maxFuture
		}

		if need > result[module] {
			result[module] = need
		}
	}

	return result
}

// shiftExtrema walks expr collecting every literal shift(·,k) offset it
// contains, returning the largest magnitude seen in the past (k<0) and
// future (k>0) directions respectively.
func shiftExtrema(expr *corset.Node) (minPast, maxFuture uint) {
	switch e := expr.Expr.(type) {
	case *corset.Funcall:
		if e.Builtin == corset.Shift {
			if k, ok := e.Args[1].Expr.(*corset.Const); ok {
				v := k.Integer.Int().Int64()
				if v < 0 && uint(-v) > minPast {
					minPast = uint(-v)
				} else if v > 0 && uint(v) > maxFuture {
					maxFuture = uint(v)
				}
			}
		}

		for _, arg := range e.Args {
			p, f := shiftExtrema(arg)
			if p > minPast {
				minPast = p
			}

			if f > maxFuture {
				maxFuture = f
			}
		}
	case *corset.ListExpr:
		for _, n := range e.Nodes {
			p, f := shiftExtrema(n)
			if p > minPast {
				minPast = p
			}

			if f > maxFuture {
				maxFuture = f
			}
		}
	}

	return minPast, maxFuture
}
