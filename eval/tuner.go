package eval

import (
	"context"
	"math"
	"sync"
)

// Modifier writes one hyperparameter value into a classifier, possibly
// reaching through its distance kernel. AffectsDistance reports whether
// the write changes the distance function (and therefore invalidates
// distance memos), which decides between shallow and deep classifier
// copies on the parallel tuning path.
type Modifier interface {
	Set(c Classifier, v ParamValue) error
	AffectsDistance() bool
}

// Tuner sweeps one hyperparameter and delegates the remaining parameters
// down the chain, terminating in an evaluator. Tune leaves the classifier
// configured with the winning full parameter vector.
type Tuner interface {
	Tune(ctx context.Context, c Classifier, d *Dataset) (float64, error)

	// Parameters returns the winning parameter vector of the last Tune,
	// one entry per tuner in the chain.
	Parameters() []ParamValue

	// SetParameters applies a full parameter vector to the classifier,
	// one entry per tuner in the chain.
	SetParameters(c Classifier, params []ParamValue) error

	// AffectsDistance reports whether any modifier in the chain changes
	// the distance function.
	AffectsDistance() bool
}

// GridTuner sweeps the ordered candidate values of a single parameter.
// Non-terminal tuners delegate the rest of the configuration to their
// subtuner; the last tuner in the chain scores each fully-configured
// classifier with its evaluator.
type GridTuner struct {
	values    []ParamValue
	modifier  Modifier
	subtuner  Tuner
	evaluator Evaluator

	threads int

	mu      sync.Mutex
	best    []ParamValue
	bestErr float64
	pool    *Pool
}

// NewGridTuner creates a tuner over the candidate values. Exactly one of
// subtuner and evaluator must be non-nil: a subtuner chains, an evaluator
// terminates.
func NewGridTuner(values []ParamValue, modifier Modifier, subtuner Tuner, evaluator Evaluator, threads int) (*GridTuner, error) {
	if len(values) == 0 {
		return nil, invalidParamf("tuner needs at least one candidate value")
	}
	if modifier == nil {
		return nil, invalidParamf("tuner needs a modifier")
	}
	if (subtuner == nil) == (evaluator == nil) {
		return nil, invalidParamf("tuner needs exactly one of subtuner and evaluator")
	}
	if threads < 1 {
		threads = 1
	}
	vs := make([]ParamValue, len(values))
	copy(vs, values)
	return &GridTuner{
		values:    vs,
		modifier:  modifier,
		subtuner:  subtuner,
		evaluator: evaluator,
		threads:   threads,
		bestErr:   math.NaN(),
	}, nil
}

// Depth returns the number of tuners in the chain rooted here.
func (g *GridTuner) Depth() int {
	if g.subtuner == nil {
		return 1
	}
	type depther interface{ Depth() int }
	if d, ok := g.subtuner.(depther); ok {
		return 1 + d.Depth()
	}
	return 1 + len(g.subtuner.Parameters())
}

// Parameters implements Tuner.
func (g *GridTuner) Parameters() []ParamValue {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ParamValue, len(g.best))
	copy(out, g.best)
	return out
}

// SetParameters implements Tuner: params[0] goes through this tuner's
// modifier, the suffix recurses down the chain.
func (g *GridTuner) SetParameters(c Classifier, params []ParamValue) error {
	if len(params) == 0 {
		return invalidParamf("parameter vector shorter than tuner chain")
	}
	if err := g.modifier.Set(c, params[0]); err != nil {
		return err
	}
	if g.subtuner != nil {
		return g.subtuner.SetParameters(c, params[1:])
	}
	if len(params) != 1 {
		return invalidParamf("parameter vector longer than tuner chain")
	}
	return nil
}

// AffectsDistance implements Tuner.
func (g *GridTuner) AffectsDistance() bool {
	if g.modifier.AffectsDistance() {
		return true
	}
	return g.subtuner != nil && g.subtuner.AffectsDistance()
}

// Reset implements Resumable: it clears the recorded winner and resets
// the rest of the chain.
func (g *GridTuner) Reset() {
	g.mu.Lock()
	g.best = nil
	g.bestErr = math.NaN()
	g.mu.Unlock()
	resetIfResumable(g.subtuner)
	if g.evaluator != nil {
		g.evaluator.Reset()
	}
}

// Copy implements Copyable. A Copyable subtuner or evaluator is cloned so
// that parallel sweeps hold independent bookkeeping; one that is not
// Copyable is shared with the copy. deep propagates to sub-components
// that distinguish shallow from deep cloning.
func (g *GridTuner) Copy(deep bool) Copyable {
	cp := &GridTuner{
		values:    append([]ParamValue(nil), g.values...),
		modifier:  g.modifier,
		threads:   g.threads,
		bestErr:   math.NaN(),
	}
	if g.subtuner != nil {
		if c, ok := g.subtuner.(Copyable); ok {
			cp.subtuner = c.Copy(deep).(Tuner)
		} else {
			cp.subtuner = g.subtuner
		}
	}
	if g.evaluator != nil {
		if c, ok := g.evaluator.(Copyable); ok {
			cp.evaluator = c.Copy(deep).(Evaluator)
		} else {
			cp.evaluator = g.evaluator
		}
	}
	return cp
}

// score evaluates the classifier as currently configured: through the
// subtuner when one exists, through the terminal evaluator otherwise.
// The winning suffix of the chain below is returned alongside the error.
func (g *GridTuner) score(ctx context.Context, sub Tuner, ev Evaluator, c Classifier, d *Dataset) (float64, []ParamValue, error) {
	if sub != nil {
		e, err := sub.Tune(ctx, c, d)
		if err != nil {
			return 0, nil, err
		}
		suffix := sub.Parameters()
		resetIfResumable(sub)
		return e, suffix, nil
	}
	e, err := ev.Evaluate(ctx, nil, c, d)
	if err != nil {
		return 0, nil, err
	}
	ev.Reset()
	return e, nil, nil
}

// Tune implements Tuner.
func (g *GridTuner) Tune(ctx context.Context, c Classifier, d *Dataset) (float64, error) {
	if d.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	var (
		errs     []float64
		suffixes [][]ParamValue
		err      error
	)
	if g.parallelOK(c) {
		errs, suffixes, err = g.tuneParallel(ctx, c, d)
	} else {
		errs, suffixes, err = g.tuneSequential(ctx, c, d)
	}
	if err != nil {
		return 0, err
	}

	// Ties break on the lowest candidate index: strict < keeps the first
	// winner regardless of completion order.
	bestIdx := 0
	for i := 1; i < len(errs); i++ {
		if errs[i] < errs[bestIdx] {
			bestIdx = i
		}
	}
	best := append([]ParamValue{g.values[bestIdx]}, suffixes[bestIdx]...)

	g.mu.Lock()
	g.best = best
	g.bestErr = errs[bestIdx]
	g.mu.Unlock()

	// Leave the caller's classifier configured with the winning vector.
	if err := g.SetParameters(c, best); err != nil {
		return 0, err
	}
	return errs[bestIdx], nil
}

// tuneSequential sweeps the candidates in the caller goroutine with the
// caller's classifier.
func (g *GridTuner) tuneSequential(ctx context.Context, c Classifier, d *Dataset) ([]float64, [][]ParamValue, error) {
	errs := make([]float64, len(g.values))
	suffixes := make([][]ParamValue, len(g.values))
	for i, v := range g.values {
		if err := checkCancelled(ctx); err != nil {
			return nil, nil, err
		}
		if err := g.modifier.Set(c, v); err != nil {
			return nil, nil, err
		}
		e, suffix, err := g.score(ctx, g.subtuner, g.evaluator, c, d)
		if err != nil {
			return nil, nil, err
		}
		errs[i] = e
		suffixes[i] = suffix
		resetIfResumable(c)
	}
	return errs, suffixes, nil
}

// parallelOK reports whether the parallel sweep may run: more than one
// thread requested, a Copyable classifier, and a Copyable chain below.
func (g *GridTuner) parallelOK(c Classifier) bool {
	if g.threads <= 1 || len(g.values) <= 1 {
		return false
	}
	if _, ok := c.(Copyable); !ok {
		return false
	}
	if g.subtuner != nil {
		_, ok := g.subtuner.(Copyable)
		return ok
	}
	_, ok := g.evaluator.(Copyable)
	return ok
}

// workset is one independent (chain-below, classifier) pair drawn from
// the free list by parallel sweep tasks.
type workset struct {
	sub        Tuner
	ev         Evaluator
	classifier Classifier
}

// tuneParallel sweeps the candidates over a free list of independent
// worksets, one task per candidate value. The classifier is deep-copied
// only when the chain reaches through the distance kernel.
func (g *GridTuner) tuneParallel(ctx context.Context, c Classifier, d *Dataset) ([]float64, [][]ParamValue, error) {
	width := g.threads
	if width > len(g.values) {
		width = len(g.values)
	}
	deep := g.AffectsDistance()

	free := make(chan workset, width)
	restores := make([]func(), 0, width)
	for i := 0; i < width; i++ {
		ws := workset{classifier: copyClassifier(c, deep)}
		if ws.classifier == nil {
			return g.tuneSequential(ctx, c, d)
		}
		if g.subtuner != nil {
			ws.sub = g.subtuner.(Copyable).Copy(deep).(Tuner)
		} else {
			ws.ev = g.evaluator.(Copyable).Copy(deep).(Evaluator)
		}
		restores = append(restores, forceSingleThread(ws.classifier))
		free <- ws
	}
	defer func() {
		for _, restore := range restores {
			restore()
		}
	}()

	errs := make([]float64, len(g.values))
	suffixes := make([][]ParamValue, len(g.values))
	tasks := make([]func(ctx context.Context) error, 0, len(g.values))
	for i, v := range g.values {
		i, v := i, v
		tasks = append(tasks, func(ctx context.Context) error {
			ws := <-free
			defer func() { free <- ws }()
			if err := g.modifier.Set(ws.classifier, v); err != nil {
				return err
			}
			e, suffix, err := g.score(ctx, ws.sub, ws.ev, ws.classifier, d)
			if err != nil {
				return err
			}
			errs[i] = e
			suffixes[i] = suffix
			resetIfResumable(ws.classifier)
			return nil
		})
	}
	if err := g.lazyPool().Run(ctx, tasks); err != nil {
		return nil, nil, err
	}
	return errs, suffixes, nil
}

func (g *GridTuner) lazyPool() *Pool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pool == nil {
		g.pool = NewPool(g.threads)
	}
	return g.pool
}

// Shutdown tears down the tuner's worker pool. Safe to call multiple
// times.
func (g *GridTuner) Shutdown() {
	g.mu.Lock()
	pool := g.pool
	g.mu.Unlock()
	if pool != nil {
		pool.Shutdown()
	}
}

var (
	_ Tuner     = (*GridTuner)(nil)
	_ Copyable  = (*GridTuner)(nil)
	_ Resumable = (*GridTuner)(nil)
)
