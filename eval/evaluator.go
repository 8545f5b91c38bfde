package eval

import (
	"context"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// FoldResult captures the outcome of one (seed x fold) iteration. It is
// owned by the evaluator while evaluation runs and read-only afterwards.
type FoldResult struct {
	Train *Dataset
	Test  *Dataset

	// Misclassified is the number of test series whose predicted label
	// differed from their true label.
	Misclassified int

	// Error is Misclassified / |Test|.
	Error float64

	// ExpectedError is the best training-set error the tuner observed on
	// this fold, or NaN when no tuner ran.
	ExpectedError float64

	// BestParams is the winning parameter vector the tuner chain produced
	// for this fold, in chain order. Empty when no tuner ran.
	BestParams []ParamValue
}

// Evaluator estimates out-of-sample error by resampling. Implementations
// are resumable: a Cancelled Evaluate leaves per-item progress behind and
// a later Evaluate replays only unfinished work. Reset clears that state.
type Evaluator interface {
	// Evaluate tunes (when tuner is non-nil), fits, and classifies across
	// all resampling iterations, returning the micro-averaged error
	// sum(misclassified) / sum(|testset|).
	Evaluate(ctx context.Context, tuner Tuner, classifier Classifier, dataset *Dataset) (float64, error)

	// Results returns the per-iteration FoldResults of the last run.
	Results() []FoldResult

	// Misclassified returns the total misclassification count.
	Misclassified() int

	// Reset discards all resumable state.
	Reset()

	// Done reports whether the last Evaluate ran to completion.
	Done() bool

	// InProgress reports whether an Evaluate was interrupted mid-run.
	InProgress() bool
}

// iteration is one unit of resampling work: a test set and a lazily-built
// training set. Lazy construction keeps leave-one-out from materializing
// n trainsets up front and keeps the shared dataset unmutated in parallel
// mode.
type iteration struct {
	train func() *Dataset
	test  *Dataset
}

// harness carries the state shared by all resampling evaluators: the
// resumable per-iteration bookkeeping, the worker pool, and the three
// scheduling modes from which every evaluator picks.
type harness struct {
	mu sync.Mutex

	threads      int
	fullParallel bool
	callback     Callback
	pool         *Pool

	insideLoop bool
	done       bool

	// Per-iteration resumable state, indexed by iteration number.
	labels          [][]float64
	classified      [][]bool
	classifiedCount []int
	tuned           []bool
	expected        []float64
	bestParams      [][]ParamValue
	folded          []bool
	results         []FoldResult

	emitter *progressEmitter
}

func newHarness(threads int, fullParallel bool, callback Callback) harness {
	if threads < 1 {
		threads = 1
	}
	return harness{threads: threads, fullParallel: fullParallel, callback: callback}
}

// SetCallback installs the progress sink used by subsequent Evaluate calls.
func (h *harness) SetCallback(cb Callback) { h.callback = cb }

// Results returns the per-iteration results recorded so far.
func (h *harness) Results() []FoldResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]FoldResult, 0, len(h.results))
	for t, r := range h.results {
		if h.folded[t] {
			out = append(out, r)
		}
	}
	return out
}

// Misclassified returns the total misclassification count across all
// finished iterations.
func (h *harness) Misclassified() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for t, r := range h.results {
		if h.folded[t] {
			total += r.Misclassified
		}
	}
	return total
}

// Reset discards all resumable state.
func (h *harness) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clearStateLocked()
}

func (h *harness) clearStateLocked() {
	h.labels = nil
	h.classified = nil
	h.classifiedCount = nil
	h.tuned = nil
	h.expected = nil
	h.bestParams = nil
	h.folded = nil
	h.results = nil
	h.insideLoop = false
	h.done = false
}

// Done reports whether the last Evaluate ran to completion.
func (h *harness) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// InProgress reports whether an Evaluate was interrupted mid-run.
func (h *harness) InProgress() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.insideLoop && !h.done
}

// Shutdown tears down the evaluator's worker pool. Safe to call multiple
// times; only ever needed after parallel runs.
func (h *harness) Shutdown() {
	h.mu.Lock()
	pool := h.pool
	h.mu.Unlock()
	if pool != nil {
		pool.Shutdown()
	}
}

// ensureState sizes the resumable bookkeeping for the iteration list. A
// fresh run (or a changed iteration count) discards previous state; a
// resumed run keeps it.
func (h *harness) ensureState(iters []iteration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done || len(h.labels) != len(iters) {
		h.clearStateLocked()
	}
	if h.labels != nil {
		return
	}
	n := len(iters)
	h.labels = make([][]float64, n)
	h.classified = make([][]bool, n)
	h.classifiedCount = make([]int, n)
	h.tuned = make([]bool, n)
	h.expected = make([]float64, n)
	h.bestParams = make([][]ParamValue, n)
	h.folded = make([]bool, n)
	h.results = make([]FoldResult, n)
	for t, it := range iters {
		h.labels[t] = make([]float64, it.test.Len())
		h.classified[t] = make([]bool, it.test.Len())
		h.expected[t] = math.NaN()
	}
}

// lazyPool returns the worker pool, creating it on the first
// multi-threaded call.
func (h *harness) lazyPool() *Pool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool == nil {
		h.pool = NewPool(h.threads)
	}
	h.pool.SetThreads(h.threads)
	return h.pool
}

// run executes all iterations and returns the micro-averaged error. It
// picks between the three scheduling modes:
//
//   - full parallel tuning: one task per iteration does tune + fit +
//     classify on its own (tuner, classifier) pair
//   - sequential tuning, parallel classification: tune + fit with the
//     caller's classifier, classify each test set on classifier copies
//   - fully sequential: everything in the caller goroutine
func (h *harness) run(ctx context.Context, tuner Tuner, c Classifier, iters []iteration) (float64, error) {
	if len(iters) == 0 {
		return 0, ErrEmptyDataset
	}
	h.ensureState(iters)

	totalUnits := 0
	for _, it := range iters {
		totalUnits += it.test.Len()
	}
	h.emitter = newProgressEmitter(h.callback, totalUnits)

	h.mu.Lock()
	h.insideLoop = true
	h.done = false
	h.mu.Unlock()

	var err error
	switch {
	case h.threads > 1 && h.fullParallel && h.copyableChain(tuner, c):
		err = h.runFullParallel(ctx, tuner, c, iters)
	case h.threads > 1:
		err = h.runParallelClassify(ctx, tuner, c, iters)
	default:
		err = h.runSequential(ctx, tuner, c, iters)
	}
	if err != nil {
		// Cancelled (and any terminal error) leaves insideLoop raised so
		// a later Evaluate resumes from the next unfinished unit. The
		// consumed resumables are handed back clean either way.
		resetIfResumable(tuner)
		resetIfResumable(c)
		return 0, err
	}

	h.mu.Lock()
	h.insideLoop = false
	h.done = true
	miss, total := 0, 0
	for t := range h.results {
		miss += h.results[t].Misclassified
		total += h.results[t].Test.Len()
	}
	h.mu.Unlock()
	if total == 0 {
		return 0, nil
	}
	return float64(miss) / float64(total), nil
}

// copyableChain reports whether the parallel-tuning branch may run: the
// classifier and the tuner (when present) must both be Copyable.
func (h *harness) copyableChain(tuner Tuner, c Classifier) bool {
	if _, ok := c.(Copyable); !ok {
		return false
	}
	if tuner != nil {
		if _, ok := tuner.(Copyable); !ok {
			return false
		}
	}
	return true
}

// finishedIteration reports whether iteration t has a finalized FoldResult.
func (h *harness) finishedIteration(t int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.folded[t]
}

// recordLabel stores one classification outcome. Each (t, j) is owned by
// exactly one task; the lock only protects the aggregate counters.
func (h *harness) recordLabel(t, j int, label float64) {
	h.mu.Lock()
	h.labels[t][j] = label
	h.classified[t][j] = true
	h.classifiedCount[t]++
	h.mu.Unlock()
	h.emitter.tick(h)
}

// finalize closes out iteration t: counts misclassifications against the
// true labels and stores the FoldResult.
func (h *harness) finalize(t int, train, test *Dataset) {
	h.mu.Lock()
	defer h.mu.Unlock()
	miss := 0
	for j := 0; j < test.Len(); j++ {
		if h.labels[t][j] != test.At(j).Label {
			miss++
		}
	}
	errRate := 0.0
	if test.Len() > 0 {
		errRate = float64(miss) / float64(test.Len())
	}
	h.results[t] = FoldResult{
		Train:         train,
		Test:          test,
		Misclassified: miss,
		Error:         errRate,
		ExpectedError: h.expected[t],
		BestParams:    h.bestParams[t],
	}
	h.folded[t] = true
	logrus.Debugf("fold %d done: %d/%d misclassified", t, miss, test.Len())
}

// tuneIteration runs (or resumes) the tuning step of iteration t with the
// given tuner and classifier, leaving the classifier configured with the
// winning parameter vector.
func (h *harness) tuneIteration(ctx context.Context, t int, tuner Tuner, c Classifier, train *Dataset) error {
	if tuner == nil {
		return nil
	}
	h.mu.Lock()
	alreadyTuned := h.tuned[t]
	best := h.bestParams[t]
	h.mu.Unlock()

	if alreadyTuned {
		// Resume path: the winning vector is known, re-apply it instead
		// of re-running the sweep.
		if len(best) > 0 {
			if err := tuner.SetParameters(c, best); err != nil {
				return err
			}
		}
		return nil
	}

	expected, err := tuner.Tune(ctx, c, train)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.tuned[t] = true
	h.expected[t] = expected
	h.bestParams[t] = tuner.Parameters()
	h.mu.Unlock()
	resetIfResumable(tuner)
	return nil
}

// classifyIteration fits c on the training set and classifies every not
// yet classified member of the test set, checking for cancellation before
// each item.
func (h *harness) classifyIteration(ctx context.Context, t int, c Classifier, train, test *Dataset) error {
	if err := c.Fit(train); err != nil {
		return &ClassifierError{Op: "fit", Err: err}
	}
	for j := 0; j < test.Len(); j++ {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		h.mu.Lock()
		skip := h.classified[t][j]
		h.mu.Unlock()
		if skip {
			continue
		}
		label, err := c.Classify(test.At(j))
		if err != nil {
			return &ClassifierError{Op: "classify", Err: err}
		}
		h.recordLabel(t, j, label)
	}
	return nil
}

// runSequential executes every iteration in the caller goroutine.
func (h *harness) runSequential(ctx context.Context, tuner Tuner, c Classifier, iters []iteration) error {
	for t, it := range iters {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		if h.finishedIteration(t) {
			continue
		}
		train := it.train()
		if err := h.tuneIteration(ctx, t, tuner, c, train); err != nil {
			return err
		}
		if err := h.classifyIteration(ctx, t, c, train, it.test); err != nil {
			return err
		}
		h.finalize(t, train, it.test)
		resetIfResumable(c)
	}
	return nil
}

// pair is one (tuner, classifier) working set checked in and out of the
// free list by full-parallel tasks.
type pair struct {
	tuner      Tuner
	classifier Classifier
}

// makePairs builds n independent working sets. The classifier is
// deep-copied only when the tuner chain reaches through the distance
// kernel; otherwise shallow copies (shared kernel parameters, per-copy
// memo) suffice.
func (h *harness) makePairs(tuner Tuner, c Classifier, n int) []pair {
	deep := tuner != nil && tuner.AffectsDistance()
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		cc := copyClassifier(c, deep)
		if cc == nil {
			return nil
		}
		var tc Tuner
		if tuner != nil {
			tcp, ok := tuner.(Copyable)
			if !ok {
				return nil
			}
			tc, ok = tcp.Copy(deep).(Tuner)
			if !ok {
				return nil
			}
		}
		pairs = append(pairs, pair{tuner: tc, classifier: cc})
	}
	return pairs
}

// runFullParallel schedules one task per iteration; each task draws an
// independent (tuner, classifier) pair from the free list, tunes, fits,
// classifies its test set, and returns the pair.
func (h *harness) runFullParallel(ctx context.Context, tuner Tuner, c Classifier, iters []iteration) error {
	width := h.threads
	if width > len(iters) {
		width = len(iters)
	}
	pairs := h.makePairs(tuner, c, width)
	if pairs == nil {
		// Copy support vanished under us (a Copy returned the wrong
		// type); fall back rather than fail.
		logrus.Warnf("full-parallel tuning unavailable, falling back to sequential tuning")
		return h.runParallelClassify(ctx, tuner, c, iters)
	}

	free := make(chan pair, len(pairs))
	restores := make([]func(), 0, len(pairs))
	for _, p := range pairs {
		restores = append(restores, forceSingleThread(p.classifier))
		free <- p
	}
	defer func() {
		for _, restore := range restores {
			restore()
		}
	}()

	tasks := make([]func(ctx context.Context) error, 0, len(iters))
	for t := range iters {
		t := t
		it := iters[t]
		tasks = append(tasks, func(ctx context.Context) error {
			if h.finishedIteration(t) {
				return nil
			}
			p := <-free
			defer func() { free <- p }()
			train := it.train()
			if err := h.tuneIteration(ctx, t, p.tuner, p.classifier, train); err != nil {
				return err
			}
			if err := h.classifyIteration(ctx, t, p.classifier, train, it.test); err != nil {
				return err
			}
			h.finalize(t, train, it.test)
			resetIfResumable(p.classifier)
			return nil
		})
	}
	return h.lazyPool().Run(ctx, tasks)
}

// runParallelClassify tunes and fits each iteration in the caller
// goroutine with the shared classifier, then classifies the iteration's
// test set in parallel on fitted copies. The fallback when the classifier
// is not Copyable degrades to per-item sequential classification.
func (h *harness) runParallelClassify(ctx context.Context, tuner Tuner, c Classifier, iters []iteration) error {
	for t, it := range iters {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		if h.finishedIteration(t) {
			continue
		}
		train := it.train()
		if err := h.tuneIteration(ctx, t, tuner, c, train); err != nil {
			return err
		}
		if err := c.Fit(train); err != nil {
			return &ClassifierError{Op: "fit", Err: err}
		}
		if err := h.classifyParallel(ctx, t, c, it.test); err != nil {
			return err
		}
		h.finalize(t, train, it.test)
		resetIfResumable(c)
	}
	return nil
}

// classifyParallel fans the test set of iteration t out over copies of
// the already-fitted classifier.
func (h *harness) classifyParallel(ctx context.Context, t int, c Classifier, test *Dataset) error {
	width := h.threads
	if width > test.Len() {
		width = test.Len()
	}
	copies := make([]Classifier, 0, width)
	for i := 0; i < width; i++ {
		cc := copyClassifier(c, false)
		if cc == nil {
			break
		}
		copies = append(copies, cc)
	}
	if len(copies) == 0 {
		// Not Copyable: classify in the caller goroutine.
		for j := 0; j < test.Len(); j++ {
			if err := checkCancelled(ctx); err != nil {
				return err
			}
			h.mu.Lock()
			skip := h.classified[t][j]
			h.mu.Unlock()
			if skip {
				continue
			}
			label, err := c.Classify(test.At(j))
			if err != nil {
				return &ClassifierError{Op: "classify", Err: err}
			}
			h.recordLabel(t, j, label)
		}
		return nil
	}

	free := make(chan Classifier, len(copies))
	restores := make([]func(), 0, len(copies))
	for _, cc := range copies {
		restores = append(restores, forceSingleThread(cc))
		free <- cc
	}
	defer func() {
		for _, restore := range restores {
			restore()
		}
	}()

	tasks := make([]func(ctx context.Context) error, 0, test.Len())
	for j := 0; j < test.Len(); j++ {
		j := j
		h.mu.Lock()
		skip := h.classified[t][j]
		h.mu.Unlock()
		if skip {
			continue
		}
		tasks = append(tasks, func(ctx context.Context) error {
			cc := <-free
			defer func() { free <- cc }()
			label, err := cc.Classify(test.At(j))
			if err != nil {
				return &ClassifierError{Op: "classify", Err: err}
			}
			h.recordLabel(t, j, label)
			return nil
		})
	}
	return h.lazyPool().Run(ctx, tasks)
}
