package value

import (
	"cmp"
	"strings"
)

// Compare imposes a total order on values.
//
// Values of different kinds order by Kind. Within a kind: false < true,
// integers numerically, strings by code points, lists lexicographically,
// records by their canonical key order then values.
func Compare(a, b Value) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch x := a.(type) {
	case Bool:
		y := b.(Bool)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Int:
		return cmp.Compare(x, b.(Int))
	case String:
		return strings.Compare(string(x), string(b.(String)))
	case List:
		y := b.(List)
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := Compare(x[i], y[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(x), len(y))
	case Record:
		y := b.(Record)
		xk, yk := x.Keys(), y.Keys()
		for i := 0; i < len(xk) && i < len(yk); i++ {
			if c := compareUTF16(xk[i], yk[i]); c != 0 {
				return c
			}
			if c := Compare(x[xk[i]], y[yk[i]]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(xk), len(yk))
	default:
		return 0
	}
}

// Equal reports whether a and b are the same value.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}
