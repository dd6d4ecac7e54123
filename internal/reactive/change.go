package reactive

// ChangeKind distinguishes additions from deletions.
type ChangeKind int

const (
	// Added marks an element inserted at Index.
	Added ChangeKind = iota + 1
	// Deleted marks an element removed from Index.
	Deleted
)

// String returns a human-readable name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one element-level edit inside a Batch.
//
// For ordinary edits, Index is relative to the sequence state after every
// earlier change in the same batch has been applied, so a batch can be
// replayed in order as an edit script.
//
// For moves (Move == true) the batch is a pure reorder. A Deleted change
// carries the element's old index in Index and its new index in Counterpart;
// the paired Added change carries the new index in Index and the old index in
// Counterpart. Move batches are not edit scripts.
type Change[T any] struct {
	Kind        ChangeKind
	Index       int
	Value       T
	Move        bool
	Counterpart int
}

// Batch is a single notification delivered to sequence subscribers.
type Batch[T any] struct {
	Changes []Change[T]

	// Items is the sequence content right after the mutation that produced
	// this batch. It is shared and must not be modified.
	Items []T
}

// IsReorder reports whether the batch is a reorder without membership change.
// The first change decides.
func (b Batch[T]) IsReorder() bool {
	return len(b.Changes) > 0 && b.Changes[0].Move
}
