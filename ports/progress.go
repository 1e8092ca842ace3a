package ports

// ProgressFunc receives coarse-grained progress from long-running loops.
// It is observability only and has no effect on results. Passed explicitly
// into the permutation driver rather than read from ambient state.
type ProgressFunc func(completed, total int)
