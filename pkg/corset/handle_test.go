package corset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleEquality(t *testing.T) {
	a := NewHandle("m1", "X")
	b := NewHandle("m1", "X")
	c := NewHandle("m1", "Y")
	d := NewHandle("m2", "X")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(d))
}

func TestHandleWithIDDoesNotAffectEquality(t *testing.T) {
	a := NewHandle("m1", "X")
	b := a.WithID(7)

	assert.True(t, a.Equals(b))
	assert.False(t, a.HasID())
	assert.True(t, b.HasID())
	assert.Equal(t, uint(7), b.ID())
}

func TestHandleMangleInjective(t *testing.T) {
	handles := []Handle{
		NewHandle("m1", "X"),
		NewHandle("m1", "X-1"),
		NewHandle("m1", "X1"),
		NewHandle("m2", "X"),
		NewHandle("m1_X", ""),
	}

	seen := make(map[string]Handle)

	for _, h := range handles {
		m := h.Mangle()
		if other, ok := seen[m]; ok {
			t.Fatalf("mangle collision between %s and %s: both render %q", h, other, m)
		}

		seen[m] = h
	}
}

func TestHandleQualifiedName(t *testing.T) {
	h := NewHandle("m1", "X")
	assert.Equal(t, "m1.X", h.QualifiedName())
}
