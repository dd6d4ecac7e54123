package expr

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/tracksync/internal/value"
)

// Comparator orders records by the value of a key expression.
//
// Keys are compared with value.Compare, except that two string keys are
// compared with a locale collator when one is configured. A key that fails
// to evaluate is treated as null and logged.
type Comparator struct {
	key      *Expr
	desc     bool
	collator *collate.Collator
	logger   *slog.Logger
}

// ComparatorOption configures a Comparator.
type ComparatorOption func(*Comparator) error

// Descending reverses the order.
func Descending(desc bool) ComparatorOption {
	return func(c *Comparator) error {
		c.desc = desc
		return nil
	}
}

// WithCollation compares string keys with the collation rules of locale,
// a BCP 47 tag such as "en" or "sv". An empty locale keeps code-point order.
func WithCollation(locale string) ComparatorOption {
	return func(c *Comparator) error {
		if locale == "" {
			c.collator = nil
			return nil
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", locale, err)
		}
		c.collator = collate.New(tag)
		return nil
	}
}

// WithComparatorLogger sets the logger for key evaluation failures.
func WithComparatorLogger(logger *slog.Logger) ComparatorOption {
	return func(c *Comparator) error {
		c.logger = logger
		return nil
	}
}

// NewComparator compiles keySrc and applies opts.
func NewComparator(keySrc string, opts ...ComparatorOption) (*Comparator, error) {
	key, err := Compile(keySrc)
	if err != nil {
		return nil, fmt.Errorf("compile sort key: %w", err)
	}
	c := &Comparator{key: key, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Key evaluates the sort key for rec.
func (c *Comparator) Key(rec value.Record) value.Value {
	k, err := c.key.Eval(rec)
	if err != nil {
		c.logger.Warn("sort key evaluation failed", "key", c.key.Source(), "error", err)
		return value.Null{}
	}
	return k
}

// Compare returns a negative number when a sorts before b, zero when they
// tie and a positive number otherwise.
func (c *Comparator) Compare(a, b value.Record) int {
	r := c.compareKeys(c.Key(a), c.Key(b))
	if c.desc {
		return -r
	}
	return r
}

func (c *Comparator) compareKeys(a, b value.Value) int {
	if c.collator != nil {
		sa, okA := a.(value.String)
		sb, okB := b.(value.String)
		if okA && okB {
			return c.collator.CompareString(string(sa), string(sb))
		}
	}
	return value.Compare(a, b)
}
