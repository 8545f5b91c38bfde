// Package knn implements the k-nearest-neighbour classifier, the
// canonical distance-based consumer of the evaluation engine.
package knn

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tseval/tseval/eval"
)

// Classifier labels a query series with the majority label among its k
// nearest training series under the configured distance kernel.
//
// A single instance is not thread-safe; the engine produces independent
// copies via the Copyable capability before classifying in parallel.
type Classifier struct {
	k       int
	kernel  eval.DistanceKernel
	threads int
	train   *eval.Dataset
}

// NewClassifier creates a k-nearest-neighbour classifier over the given
// kernel. k must be >= 1.
func NewClassifier(k int, kernel eval.DistanceKernel) (*Classifier, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: neighbour count must be >= 1, got %d", eval.ErrInvalidParameter, k)
	}
	if kernel == nil {
		return nil, fmt.Errorf("%w: classifier needs a distance kernel", eval.ErrInvalidParameter)
	}
	return &Classifier{k: k, kernel: kernel, threads: 1}, nil
}

// K returns the neighbour count.
func (c *Classifier) K() int { return c.k }

// SetK changes the neighbour count.
func (c *Classifier) SetK(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: neighbour count must be >= 1, got %d", eval.ErrInvalidParameter, k)
	}
	c.k = k
	return nil
}

// Fit implements eval.Classifier. The training set is referenced, not
// copied; it is treated as read-only until the next Fit or Reset.
func (c *Classifier) Fit(trainset *eval.Dataset) error {
	if trainset.Len() == 0 {
		return eval.ErrEmptyDataset
	}
	c.train = trainset
	return nil
}

// neighbour pairs a training index with its distance to the query.
type neighbour struct {
	idx  int
	dist float64
}

// Classify implements eval.Classifier.
func (c *Classifier) Classify(series *eval.TimeSeries) (float64, error) {
	if c.train == nil || c.train.Len() == 0 {
		return 0, eval.ErrEmptyDataset
	}
	dists, err := c.distances(series)
	if err != nil {
		return 0, err
	}

	neighbours := make([]neighbour, c.train.Len())
	for i, d := range dists {
		neighbours[i] = neighbour{idx: i, dist: d}
	}
	sort.SliceStable(neighbours, func(i, j int) bool {
		return neighbours[i].dist < neighbours[j].dist
	})
	k := c.k
	if k > len(neighbours) {
		k = len(neighbours)
	}

	if k == 1 {
		return c.train.At(neighbours[0].idx).Label, nil
	}

	// Majority vote; ties go to the label whose best neighbour ranks
	// first.
	votes := make(map[float64]int, k)
	firstRank := make(map[float64]int, k)
	for rank, nb := range neighbours[:k] {
		label := c.train.At(nb.idx).Label
		votes[label]++
		if _, ok := firstRank[label]; !ok {
			firstRank[label] = rank
		}
	}
	best := c.train.At(neighbours[0].idx).Label
	for label, count := range votes {
		switch {
		case count > votes[best]:
			best = label
		case count == votes[best] && firstRank[label] < firstRank[best]:
			best = label
		}
	}
	return best, nil
}

// distances computes the query's distance to every training series,
// fanning out over kernel copies when more than one internal thread is
// configured.
func (c *Classifier) distances(series *eval.TimeSeries) ([]float64, error) {
	n := c.train.Len()
	dists := make([]float64, n)

	if c.threads <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			d, err := c.kernel.Distance(series, c.train.At(i))
			if err != nil {
				return nil, &eval.KernelError{Err: err}
			}
			dists[i] = d
		}
		return dists, nil
	}

	workers := c.threads
	if workers > n {
		workers = n
	}
	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		kernel := c.kernel
		if w > 0 {
			if cp, ok := c.kernel.(eval.Copyable); ok {
				if kc, ok := cp.Copy(false).(eval.DistanceKernel); ok {
					kernel = kc
				}
			}
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				d, err := kernel.Distance(series, c.train.At(i))
				if err != nil {
					return &eval.KernelError{Err: err}
				}
				dists[i] = d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dists, nil
}

// Distance implements eval.DistanceBased.
func (c *Classifier) Distance() eval.DistanceKernel { return c.kernel }

// SetDistance implements eval.DistanceBased.
func (c *Classifier) SetDistance(k eval.DistanceKernel) { c.kernel = k }

// Threads implements eval.Multithreaded.
func (c *Classifier) Threads() int { return c.threads }

// SetThreads implements eval.Multithreaded.
func (c *Classifier) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	c.threads = n
}

// Reset implements eval.Resumable: it drops the fitted training set and
// any distances memoized during the last fit/classify cycle.
func (c *Classifier) Reset() {
	c.train = nil
	c.kernel.ClearMemo()
}

// Copy implements eval.Copyable. The kernel is always copied when it
// supports copying, so every classifier copy classifies through its own
// memo; deep propagates to the kernel's own sub-state. The training set
// reference is shared, it is read-only during evaluation.
func (c *Classifier) Copy(deep bool) eval.Copyable {
	kernel := c.kernel
	if cp, ok := c.kernel.(eval.Copyable); ok {
		if kc, ok := cp.Copy(deep).(eval.DistanceKernel); ok {
			kernel = kc
		}
	}
	return &Classifier{k: c.k, kernel: kernel, threads: c.threads, train: c.train}
}

var (
	_ eval.Classifier    = (*Classifier)(nil)
	_ eval.DistanceBased = (*Classifier)(nil)
	_ eval.Multithreaded = (*Classifier)(nil)
	_ eval.Resumable     = (*Classifier)(nil)
	_ eval.Copyable      = (*Classifier)(nil)
)
