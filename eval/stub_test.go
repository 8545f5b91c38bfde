package eval

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// stubKernel scores |meanY(a) - meanY(b)| scaled by a tunable factor, so
// tests can observe parameter changes without a real DP kernel.
type stubKernel struct {
	memo    map[[2]*TimeSeries]float64
	storing bool
	factor  float64
}

func newStubKernel() *stubKernel { return &stubKernel{factor: 1} }

func (k *stubKernel) Distance(a, b *TimeSeries) (float64, error) {
	if k.storing {
		if v, ok := k.memo[[2]*TimeSeries{a, b}]; ok {
			return v, nil
		}
	}
	v := math.Abs(a.MeanY()-b.MeanY()) * k.factor
	if k.storing {
		if k.memo == nil {
			k.memo = make(map[[2]*TimeSeries]float64)
		}
		k.memo[[2]*TimeSeries{a, b}] = v
		k.memo[[2]*TimeSeries{b, a}] = v
	}
	return v, nil
}

func (k *stubKernel) ClearMemo() { k.memo = nil }

func (k *stubKernel) SetMemoizing(on bool) {
	k.storing = on
	if !on {
		k.memo = nil
	}
}

func (k *stubKernel) SetFactor(f float64) {
	k.memo = nil
	k.factor = f
}

func (k *stubKernel) Copy(deep bool) Copyable {
	return &stubKernel{storing: k.storing, factor: k.factor}
}

// stubClassifier is a nearest-mean classifier over a stubKernel. It
// advertises every optional capability so tests can exercise all engine
// paths.
type stubClassifier struct {
	mu      sync.Mutex
	kernel  *stubKernel
	train   *Dataset
	threads int

	fits       int
	classifies int

	// onClassify, when set, runs before each classification; tests use
	// it to trigger cancellation mid-fold.
	onClassify func()

	failFit      error
	failClassify error
}

func newStubClassifier() *stubClassifier {
	return &stubClassifier{kernel: newStubKernel(), threads: 1}
}

func (c *stubClassifier) Fit(trainset *Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFit != nil {
		return c.failFit
	}
	c.train = trainset
	c.fits++
	return nil
}

func (c *stubClassifier) Classify(series *TimeSeries) (float64, error) {
	c.mu.Lock()
	hook := c.onClassify
	fail := c.failClassify
	train := c.train
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	if fail != nil {
		return 0, fail
	}
	if train == nil || train.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	best, bestDist := 0.0, math.Inf(1)
	for i := 0; i < train.Len(); i++ {
		d, err := c.kernel.Distance(series, train.At(i))
		if err != nil {
			return 0, err
		}
		if d < bestDist {
			bestDist = d
			best = train.At(i).Label
		}
	}
	c.mu.Lock()
	c.classifies++
	c.mu.Unlock()
	return best, nil
}

func (c *stubClassifier) Distance() DistanceKernel     { return c.kernel }
func (c *stubClassifier) SetDistance(k DistanceKernel) { c.kernel = k.(*stubKernel) }

func (c *stubClassifier) Threads() int     { return c.threads }
func (c *stubClassifier) SetThreads(n int) { c.threads = n }

func (c *stubClassifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.train = nil
	c.kernel.ClearMemo()
}

func (c *stubClassifier) Copy(deep bool) Copyable {
	c.mu.Lock()
	defer c.mu.Unlock()
	kernel := c.kernel
	if deep {
		kernel = c.kernel.Copy(true).(*stubKernel)
	} else {
		kernel = &stubKernel{storing: c.kernel.storing, factor: c.kernel.factor}
	}
	return &stubClassifier{
		kernel:       kernel,
		train:        c.train,
		threads:      c.threads,
		onClassify:   c.onClassify,
		failFit:      c.failFit,
		failClassify: c.failClassify,
	}
}

// factorModifier writes its value into the stub kernel's scale factor.
type factorModifier struct{}

func (factorModifier) Set(c Classifier, v ParamValue) error {
	sc, ok := c.(*stubClassifier)
	if !ok {
		return fmt.Errorf("%w: not a stub classifier", ErrInvalidParameter)
	}
	sc.kernel.SetFactor(v.Real())
	return nil
}

func (factorModifier) AffectsDistance() bool { return true }

// scriptedEvaluator returns a preprogrammed error per factor value; it
// lets tuner tests pin the sweep outcome without real resampling.
type scriptedEvaluator struct {
	scores map[float64]float64
	calls  int
}

func (s *scriptedEvaluator) Evaluate(ctx context.Context, tuner Tuner, c Classifier, d *Dataset) (float64, error) {
	s.calls++
	sc := c.(*stubClassifier)
	if v, ok := s.scores[sc.kernel.factor]; ok {
		return v, nil
	}
	return 1, nil
}

func (s *scriptedEvaluator) Results() []FoldResult { return nil }
func (s *scriptedEvaluator) Misclassified() int    { return 0 }
func (s *scriptedEvaluator) Reset()                {}
func (s *scriptedEvaluator) Done() bool            { return true }
func (s *scriptedEvaluator) InProgress() bool      { return false }

func (s *scriptedEvaluator) Copy(deep bool) Copyable {
	return &scriptedEvaluator{scores: s.scores}
}
