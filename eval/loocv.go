package eval

import "context"

// LeaveOneOutEvaluator scores a classifier by holding out every series in
// turn: series i becomes the single-element test set and the remaining
// n-1 series form the training set.
//
// The shared dataset is never mutated; every iteration builds its
// trainset as a fresh container referencing all series except the target,
// which keeps the parallel path free of removal/reinsertion ordering.
type LeaveOneOutEvaluator struct {
	harness
}

// NewLeaveOneOutEvaluator creates a leave-one-out evaluator running on
// the given number of worker threads. fullParallel selects the parallel
// tuning branch when the tuner and classifier support copying.
func NewLeaveOneOutEvaluator(threads int, fullParallel bool) *LeaveOneOutEvaluator {
	return &LeaveOneOutEvaluator{harness: newHarness(threads, fullParallel, nil)}
}

// Evaluate implements Evaluator.
func (e *LeaveOneOutEvaluator) Evaluate(ctx context.Context, tuner Tuner, classifier Classifier, dataset *Dataset) (float64, error) {
	if dataset.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	iters := make([]iteration, dataset.Len())
	for i := 0; i < dataset.Len(); i++ {
		i := i
		iters[i] = iteration{
			train: func() *Dataset { return dataset.Without(i) },
			test:  NewDataset(dataset.At(i)),
		}
	}
	return e.run(ctx, tuner, classifier, iters)
}

var _ Evaluator = (*LeaveOneOutEvaluator)(nil)

// Copy implements Copyable: a fresh evaluator with the same configuration
// and no resumable state.
func (e *LeaveOneOutEvaluator) Copy(deep bool) Copyable {
	cp := NewLeaveOneOutEvaluator(e.threads, e.fullParallel)
	cp.callback = e.callback
	return cp
}
