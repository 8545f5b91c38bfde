package eval

import (
	"context"
	"math/rand"
)

// HoldoutEvaluator scores a classifier on one train/test division per
// seed. With no seeds it performs a single unshuffled division.
type HoldoutEvaluator struct {
	harness

	// Percentage of the dataset assigned to the training set, in [0,100].
	Percentage float64

	// Seeds drives one shuffled run per entry. Nil means one unseeded run.
	Seeds []int64

	// Stratified selects label-preserving divisions.
	Stratified bool
}

// NewHoldoutEvaluator creates a holdout evaluator. percentage is the
// training share in [0,100].
func NewHoldoutEvaluator(percentage float64, seeds []int64, stratified bool, threads int, fullParallel bool) (*HoldoutEvaluator, error) {
	if percentage < 0 || percentage > 100 {
		return nil, invalidParamf("percentage must be in [0,100], got %g", percentage)
	}
	return &HoldoutEvaluator{
		harness:    newHarness(threads, fullParallel, nil),
		Percentage: percentage,
		Seeds:      seeds,
		Stratified: stratified,
	}, nil
}

// Evaluate implements Evaluator.
func (e *HoldoutEvaluator) Evaluate(ctx context.Context, tuner Tuner, classifier Classifier, dataset *Dataset) (float64, error) {
	if dataset.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	seeds := e.Seeds
	if len(seeds) == 0 {
		seeds = []int64{0}
	}
	iters := make([]iteration, 0, len(seeds))
	for _, seed := range seeds {
		pool := dataset.Clone()
		var stratifyRNG *rand.Rand
		if e.Seeds != nil {
			shuffle, stratify := seedStreams(seed)
			pool.Shuffle(shuffle)
			stratifyRNG = stratify
		}
		train, test, err := pool.Divide(e.Percentage, e.Stratified, stratifyRNG)
		if err != nil {
			return 0, err
		}
		iters = append(iters, iteration{
			train: func() *Dataset { return train },
			test:  test,
		})
	}
	return e.run(ctx, tuner, classifier, iters)
}

var _ Evaluator = (*HoldoutEvaluator)(nil)

// Copy implements Copyable: a fresh evaluator with the same configuration
// and no resumable state.
func (e *HoldoutEvaluator) Copy(deep bool) Copyable {
	cp := &HoldoutEvaluator{
		harness:    newHarness(e.threads, e.fullParallel, e.callback),
		Percentage: e.Percentage,
		Seeds:      append([]int64(nil), e.Seeds...),
		Stratified: e.Stratified,
	}
	if e.Seeds == nil {
		cp.Seeds = nil
	}
	return cp
}
