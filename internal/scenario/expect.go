package scenario

import (
	"fmt"
	"slices"

	"github.com/roach88/tracksync/internal/value"
)

// ExpectError is returned when the output does not match an expect clause.
type ExpectError struct {
	Expected  value.List
	Actual    value.List
	Unordered bool
}

// Error implements the error interface.
func (e *ExpectError) Error() string {
	mode := "output"
	if e.Unordered {
		mode = "output (any order)"
	}
	return fmt.Sprintf("%s mismatch\n  Expected: %s\n  Actual: %s",
		mode, value.MustCanonical(e.Expected), value.MustCanonical(e.Actual))
}

// checkExpect compares the rendered output with an expect clause. Unordered
// outputs compare as multisets.
func checkExpect(raw []any, actual value.List, unordered bool) error {
	expected, err := value.FromAny(raw)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	want := expected.(value.List)

	if matches(want, actual, unordered) {
		return nil
	}
	return &ExpectError{Expected: want, Actual: actual, Unordered: unordered}
}

func matches(want, got value.List, unordered bool) bool {
	if len(want) != len(got) {
		return false
	}
	if unordered {
		want = sortedCopy(want)
		got = sortedCopy(got)
	}
	return value.Equal(want, got)
}

func sortedCopy(l value.List) value.List {
	out := slices.Clone(l)
	slices.SortFunc(out, value.Compare)
	return out
}
