package eval

import (
	"context"
	"math/rand"
)

// CrossValidationEvaluator scores a classifier with k-fold cross
// validation, optionally repeated once per seed. Iteration t maps to
// run t/k and fold t mod k; the trainset is the concatenation of that
// run's folds minus the test fold.
type CrossValidationEvaluator struct {
	harness

	// Folds is k, the number of folds per run. Must be >= 2.
	Folds int

	// Seeds drives one shuffled run per entry. Nil means a single
	// unshuffled run.
	Seeds []int64

	// Stratified selects label-preserving folds.
	Stratified bool
}

// NewCrossValidationEvaluator creates a k-fold cross-validation
// evaluator.
func NewCrossValidationEvaluator(folds int, seeds []int64, stratified bool, threads int, fullParallel bool) (*CrossValidationEvaluator, error) {
	if folds < 2 {
		return nil, invalidParamf("folds must be >= 2, got %d", folds)
	}
	return &CrossValidationEvaluator{
		harness:    newHarness(threads, fullParallel, nil),
		Folds:      folds,
		Seeds:      seeds,
		Stratified: stratified,
	}, nil
}

// Evaluate implements Evaluator.
func (e *CrossValidationEvaluator) Evaluate(ctx context.Context, tuner Tuner, classifier Classifier, dataset *Dataset) (float64, error) {
	if dataset.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	seeds := e.Seeds
	if len(seeds) == 0 {
		seeds = []int64{0}
	}

	iters := make([]iteration, 0, len(seeds)*e.Folds)
	for _, seed := range seeds {
		pool := dataset.Clone()
		var splitRNG *rand.Rand
		if e.Seeds != nil {
			shuffle, stratify := seedStreams(seed)
			pool.Shuffle(shuffle)
			splitRNG = stratify
		}
		folds, err := pool.Split(e.Folds, e.Stratified, splitRNG)
		if err != nil {
			return 0, err
		}
		for f := range folds {
			f := f
			iters = append(iters, iteration{
				train: func() *Dataset {
					train := &Dataset{}
					for g, fold := range folds {
						if g != f {
							train.Append(fold.series...)
						}
					}
					return train
				},
				test: folds[f],
			})
		}
	}
	return e.run(ctx, tuner, classifier, iters)
}

var _ Evaluator = (*CrossValidationEvaluator)(nil)

// Copy implements Copyable: a fresh evaluator with the same configuration
// and no resumable state.
func (e *CrossValidationEvaluator) Copy(deep bool) Copyable {
	cp := &CrossValidationEvaluator{
		harness:    newHarness(e.threads, e.fullParallel, e.callback),
		Folds:      e.Folds,
		Seeds:      append([]int64(nil), e.Seeds...),
		Stratified: e.Stratified,
	}
	if e.Seeds == nil {
		cp.Seeds = nil
	}
	return cp
}
