package corset

import (
	"math/big"

	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/sexp"
)

func sym(s string) sexp.SExp {
	return sexp.NewSymbol(s, sexp.NewSpan(0, len(s)))
}

func lst(elems ...sexp.SExp) sexp.SExp {
	return sexp.NewList(elems, sexp.NewSpan(0, 0))
}

func bigOne() *big.Int { return big.NewInt(1) }

func oneElem() field.Element { return field.One() }
