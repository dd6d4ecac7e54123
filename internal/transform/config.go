package transform

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Config describes a transform.
//
// Mapper is optional. Without it, source elements are placed in the output
// unchanged, which requires S and T to be the same type. With it,
// Equivalence is required: the transform uses it to find the output element
// produced from a given source element.
type Config[S, T any] struct {
	// Mapper converts a source element into an output element.
	Mapper func(S) T

	// Equivalence reports whether output element t was produced from source
	// element s. Defaults to identity (==) when Mapper is nil, which is only
	// allowed for strictly comparable S: interface types, and structs or
	// arrays holding them, need an explicit Equivalence.
	Equivalence func(s S, t T) bool

	// Filter selects which source elements appear in the output.
	// Nil includes everything.
	Filter func(S) bool

	// Order selects output ordering. The zero value is PreserveSource.
	Order Order[T]

	// CheckInvariants verifies the output once the runtime settles after a
	// synchronization, counts each violation in Stats and logs it at error
	// level. Intended for tests and debugging.
	CheckInvariants bool

	// Logger receives synchronization diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// validate checks that the configuration is usable.
func (c Config[S, T]) validate() error {
	src, dst := reflect.TypeFor[S](), reflect.TypeFor[T]()

	if c.Mapper == nil && src != dst {
		return &ConfigError{
			Code:    ErrCodeTypeMismatch,
			Message: fmt.Sprintf("no mapper and source type %s differs from output type %s", src, dst),
		}
	}
	if c.Mapper != nil && c.Equivalence == nil {
		return &ConfigError{
			Code:    ErrCodeMissingEquivalence,
			Message: "a mapper requires an equivalence predicate",
		}
	}
	if c.Equivalence == nil && !strictlyComparable(src) {
		return &ConfigError{
			Code:    ErrCodeNotComparable,
			Message: fmt.Sprintf("identity equivalence needs a strictly comparable type, %s is not", src),
		}
	}
	return validateOrder(c.Order)
}

// strictlyComparable reports whether == on values of typ can never panic.
// Interface types compile with == but panic at run time when the dynamic
// types are not comparable, so they count as not comparable here.
func strictlyComparable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Interface:
		return false
	case reflect.Array:
		return strictlyComparable(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if !strictlyComparable(typ.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return typ.Comparable()
	}
}

func validateOrder[T any](o Order[T]) error {
	if o.kind == orderCustom && o.cmp == nil {
		return &ConfigError{
			Code:    ErrCodeMissingComparator,
			Message: "custom order requires a comparator",
		}
	}
	return nil
}
