package transform

// orderKind tags the Order variant.
type orderKind int

const (
	orderPreserve orderKind = iota
	orderUnordered
	orderCustom
)

// Order selects how the output is ordered.
// The zero value is PreserveSource.
type Order[T any] struct {
	kind orderKind
	cmp  func(a, b T) int
}

// PreserveSource keeps output elements in the relative order of their
// source elements.
func PreserveSource[T any]() Order[T] {
	return Order[T]{kind: orderPreserve}
}

// Unordered guarantees membership only. New elements are appended.
func Unordered[T any]() Order[T] {
	return Order[T]{kind: orderUnordered}
}

// Custom keeps the output sorted by cmp (negative when a sorts before b).
// Equal elements keep their insertion order.
func Custom[T any](cmp func(a, b T) int) Order[T] {
	return Order[T]{kind: orderCustom, cmp: cmp}
}

// IsPreserveSource reports whether o is PreserveSource.
func (o Order[T]) IsPreserveSource() bool { return o.kind == orderPreserve }

// IsUnordered reports whether o is Unordered.
func (o Order[T]) IsUnordered() bool { return o.kind == orderUnordered }

// IsCustom reports whether o is Custom.
func (o Order[T]) IsCustom() bool { return o.kind == orderCustom }

// Comparator returns the custom comparator, or nil for the other variants.
func (o Order[T]) Comparator() func(a, b T) int { return o.cmp }

// String returns the variant name.
func (o Order[T]) String() string {
	switch o.kind {
	case orderPreserve:
		return "preserve-source"
	case orderUnordered:
		return "unordered"
	case orderCustom:
		return "custom"
	default:
		return "unknown"
	}
}
