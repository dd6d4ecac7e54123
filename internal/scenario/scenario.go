package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tracksync/internal/expr"
	"github.com/roach88/tracksync/internal/value"
)

// Scenario defines a transform scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// RunID fixes the journal run id. If empty, the runner's generator
	// supplies one.
	RunID string `yaml:"run_id,omitempty"`

	// Items are the initial source records.
	Items []map[string]any `yaml:"items"`

	// Transform configures the transform under test.
	Transform TransformSpec `yaml:"transform"`

	// CheckInvariants verifies the output after every step. Defaults to true.
	CheckInvariants *bool `yaml:"check_invariants,omitempty"`

	// Expect is the expected output right after construction.
	Expect []any `yaml:"expect,omitempty"`

	// Steps mutate the source, its items, or the transform.
	Steps []Step `yaml:"steps"`

	// Path and Hash are set by LoadScenario.
	Path string `yaml:"-"`
	Hash string `yaml:"-"`
}

// TransformSpec configures a transform with CUE expressions over x.
type TransformSpec struct {
	Filter     string `yaml:"filter,omitempty"`
	Map        string `yaml:"map,omitempty"`
	Order      string `yaml:"order,omitempty"`
	SortKey    string `yaml:"sort_key,omitempty"`
	Descending bool   `yaml:"descending,omitempty"`
	Collate    string `yaml:"collate,omitempty"`
}

// Step is one operation of a scenario.
type Step struct {
	// Op is the operation name, see the Op constants.
	Op string `yaml:"op"`

	// Index addresses insert, remove, splice, set and update.
	Index *int `yaml:"index,omitempty"`

	// From and To address move.
	From *int `yaml:"from,omitempty"`
	To   *int `yaml:"to,omitempty"`

	// Count is the splice delete count.
	Count int `yaml:"count,omitempty"`

	// Item is the record for push, unshift, insert and set.
	Item map[string]any `yaml:"item,omitempty"`

	// Items are the records inserted by splice.
	Items []map[string]any `yaml:"items,omitempty"`

	// Patch is merged into an item's record by update.
	Patch map[string]any `yaml:"patch,omitempty"`

	// Filter is the new filter for set_filter. Empty removes the filter.
	Filter string `yaml:"filter,omitempty"`

	// Order, SortKey, Descending and Collate configure set_order. Sort
	// reorders the source by Key with Descending and Collate.
	Order      string `yaml:"order,omitempty"`
	SortKey    string `yaml:"sort_key,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Descending bool   `yaml:"descending,omitempty"`
	Collate    string `yaml:"collate,omitempty"`

	// Steps are the nested operations of a batch.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect is the expected output after this step. Nil skips the check.
	Expect []any `yaml:"expect,omitempty"`
}

// Operation names.
const (
	OpPush      = "push"
	OpUnshift   = "unshift"
	OpInsert    = "insert"
	OpRemove    = "remove"
	OpSplice    = "splice"
	OpMove      = "move"
	OpSort      = "sort"
	OpReverse   = "reverse"
	OpSet       = "set"
	OpClear     = "clear"
	OpUpdate    = "update"
	OpSetFilter = "set_filter"
	OpSetOrder  = "set_order"
	OpResync    = "resync"
	OpBatch     = "batch"
)

// Order names.
const (
	OrderPreserve  = "preserve"
	OrderUnordered = "unordered"
	OrderCustom    = "custom"
)

// checkInvariants reports whether invariant checks are enabled.
func (s *Scenario) checkInvariants() bool {
	return s.CheckInvariants == nil || *s.CheckInvariants
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	sc.Path = path
	return sc, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	sc.Hash = value.ScenarioHash(data)
	return &sc, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file
// name. A non-empty pattern keeps only files whose base name matches it
// (filepath.Match syntax).
func LoadDir(dir, pattern string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("bad filter pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// validateScenario checks required fields and compiles every expression.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := validateTransform(s.Transform); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	for i, step := range s.Steps {
		if err := validateStep(step, false); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateTransform(t TransformSpec) error {
	if err := compileOptional("filter", t.Filter); err != nil {
		return err
	}
	if err := compileOptional("map", t.Map); err != nil {
		return err
	}
	return validateOrder(t.Order, t.SortKey, t.Collate)
}

func validateOrder(order, sortKey, collate string) error {
	switch order {
	case "", OrderPreserve, OrderUnordered:
		if sortKey != "" {
			return fmt.Errorf("sort_key requires order %q", OrderCustom)
		}
	case OrderCustom:
		if sortKey == "" {
			return fmt.Errorf("order %q requires sort_key", OrderCustom)
		}
		if _, err := expr.NewComparator(sortKey, expr.WithCollation(collate)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown order %q", order)
	}
	return nil
}

func validateStep(st Step, nested bool) error {
	if nested && st.Expect != nil {
		return fmt.Errorf("%s: steps inside a batch cannot carry expect", st.Op)
	}

	requireIndex := func() error {
		if st.Index == nil {
			return fmt.Errorf("%s: index is required", st.Op)
		}
		return nil
	}
	requireItem := func() error {
		if st.Item == nil {
			return fmt.Errorf("%s: item is required", st.Op)
		}
		return nil
	}

	switch st.Op {
	case OpPush, OpUnshift:
		return requireItem()
	case OpInsert, OpSet:
		if err := requireIndex(); err != nil {
			return err
		}
		return requireItem()
	case OpRemove:
		return requireIndex()
	case OpSplice:
		if err := requireIndex(); err != nil {
			return err
		}
		if st.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", st.Op)
		}
		return nil
	case OpMove:
		if st.From == nil || st.To == nil {
			return fmt.Errorf("%s: from and to are required", st.Op)
		}
		return nil
	case OpSort:
		if st.Key == "" {
			return fmt.Errorf("%s: key is required", st.Op)
		}
		_, err := expr.NewComparator(st.Key, expr.WithCollation(st.Collate))
		return err
	case OpUpdate:
		if err := requireIndex(); err != nil {
			return err
		}
		if st.Patch == nil {
			return fmt.Errorf("%s: patch is required", st.Op)
		}
		return nil
	case OpSetFilter:
		return compileOptional("filter", st.Filter)
	case OpSetOrder:
		return validateOrder(st.Order, st.SortKey, st.Collate)
	case OpReverse, OpClear, OpResync:
		return nil
	case OpBatch:
		if len(st.Steps) == 0 {
			return fmt.Errorf("%s: steps are required", st.Op)
		}
		for i, nested := range st.Steps {
			if nested.Op == OpBatch {
				return fmt.Errorf("%s: steps[%d]: batches do not nest", st.Op, i)
			}
			if err := validateStep(nested, true); err != nil {
				return fmt.Errorf("%s: steps[%d]: %w", st.Op, i, err)
			}
		}
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

func compileOptional(field, src string) error {
	if src == "" {
		return nil
	}
	if _, err := expr.Compile(src); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
