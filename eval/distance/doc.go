// Package distance implements the elastic distance kernels the engine
// classifies with: DTW, EDR, ERP, TWED, their Sakoe-Chiba window-constrained
// variants, an Itakura-constrained DTW, and a plain point-wise Manhattan
// kernel.
//
// Every kernel satisfies eval.DistanceKernel and eval.Copyable. Kernels
// are stateful only through their parameters and an optional memoization
// cache keyed by series pointer identity; copies always start with a
// fresh cache, which is what makes per-worker kernel copies safe without
// any locking.
//
// Parameter setters that change the distance function invalidate the memo
// before returning, so a cached value can never outlive the parameters it
// was computed under.
package distance
