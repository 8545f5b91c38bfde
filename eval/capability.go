package eval

// Classifier is the capability the engine consumes. Fit is called exactly
// once per tuned configuration before classification. A single instance is
// not required to be thread-safe; callers that classify in parallel first
// produce independent instances via Copyable.
type Classifier interface {
	Fit(trainset *Dataset) error
	Classify(series *TimeSeries) (float64, error)
}

// DistanceKernel computes a distance between two series. Implementations
// live in eval/distance; the engine only needs the computation and the
// memo-management surface.
type DistanceKernel interface {
	Distance(a, b *TimeSeries) (float64, error)

	// ClearMemo discards any memoized distances.
	ClearMemo()

	// SetMemoizing toggles memoization of computed distances.
	SetMemoizing(on bool)
}

// DistanceBased marks a classifier whose decisions flow through a distance
// kernel. Modifiers reach the kernel through this capability.
type DistanceBased interface {
	Distance() DistanceKernel
	SetDistance(k DistanceKernel)
}

// Multithreaded marks a component with an internal thread count. The
// evaluators force it to 1 while running inside their own pool and restore
// the previous value on exit.
type Multithreaded interface {
	Threads() int
	SetThreads(n int)
}

// Resumable marks a component whose per-run state can be cleared between
// folds, and that tolerates mid-run cancellation: after a Cancelled error
// the component picks up the remaining work on re-entry.
type Resumable interface {
	Reset()
}

// Copyable produces independent instances suitable for parallel use.
// Copies never share mutable state with the original: parameters are
// copied, the memoization cache is always fresh, and deep additionally
// clones referenced sub-components (subtuner, evaluator, a classifier's
// distance kernel).
type Copyable interface {
	Copy(deep bool) Copyable
}

// copyClassifier clones c when it is Copyable, asserting the result back
// to Classifier. Returns nil when c cannot be copied.
func copyClassifier(c Classifier, deep bool) Classifier {
	cp, ok := c.(Copyable)
	if !ok {
		return nil
	}
	cc, ok := cp.Copy(deep).(Classifier)
	if !ok {
		return nil
	}
	return cc
}

// resetIfResumable invokes Reset on v when it advertises Resumable.
func resetIfResumable(v any) {
	if r, ok := v.(Resumable); ok && r != nil {
		r.Reset()
	}
}

// forceSingleThread drops a Multithreaded component to one internal thread
// and returns a restore func. The returned func is a no-op when c does not
// advertise the capability.
func forceSingleThread(v any) func() {
	mt, ok := v.(Multithreaded)
	if !ok {
		return func() {}
	}
	prev := mt.Threads()
	mt.SetThreads(1)
	return func() { mt.SetThreads(prev) }
}
