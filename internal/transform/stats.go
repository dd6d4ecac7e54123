package transform

// Stats counts what the transform has done since construction.
type Stats struct {
	Generation          int64 // Completed synchronizations
	Resyncs             int   // Full resync passes
	IncrementalBatches  int   // Batches handled without a full resync
	ReorderFallbacks    int   // Source reorders handled by a full resync
	IgnoredReorders     int   // Source reorders that needed no work
	ProbeFirings        int   // Dependency probe notifications
	MapperCalls         int   // Mapper invocations
	ResolutionMisses    int   // Deletions whose output element was already gone
	InvariantViolations int   // Failed consistency checks (CheckInvariants only)
}
