package eval

import "context"

// DistanceMatrixGenerator precomputes the symmetric pairwise distance
// matrix of a dataset. Each row is one task on the generator's pool; the
// kernel is copied per worker when it supports copying so memos stay
// thread-local.
type DistanceMatrixGenerator struct {
	threads  int
	callback Callback
	pool     *Pool
}

// NewDistanceMatrixGenerator creates a generator running on the given
// number of worker threads.
func NewDistanceMatrixGenerator(threads int) *DistanceMatrixGenerator {
	if threads < 1 {
		threads = 1
	}
	return &DistanceMatrixGenerator{threads: threads}
}

// SetCallback installs the progress sink; one unit of work is one row.
func (g *DistanceMatrixGenerator) SetCallback(cb Callback) { g.callback = cb }

// Generate returns the full n x n matrix of kernel distances over the
// dataset. The matrix is symmetric with a zero-filled diagonal computed
// once per pair: entry (i, j) for j < i is mirrored from (j, i).
func (g *DistanceMatrixGenerator) Generate(ctx context.Context, kernel DistanceKernel, d *Dataset) ([][]float64, error) {
	n := d.Len()
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	emitter := newProgressEmitter(g.callback, n)

	kernels := make(chan DistanceKernel, g.threads)
	for w := 0; w < g.threads; w++ {
		k := kernel
		if w > 0 {
			if c, ok := kernel.(Copyable); ok {
				if kc, ok := c.Copy(false).(DistanceKernel); ok {
					k = kc
				}
			}
		}
		kernels <- k
	}

	tasks := make([]func(ctx context.Context) error, 0, n)
	for i := 0; i < n; i++ {
		i := i
		tasks = append(tasks, func(ctx context.Context) error {
			k := <-kernels
			defer func() { kernels <- k }()
			for j := i + 1; j < n; j++ {
				if err := checkCancelled(ctx); err != nil {
					return err
				}
				dist, err := k.Distance(d.At(i), d.At(j))
				if err != nil {
					return &KernelError{Err: err}
				}
				matrix[i][j] = dist
			}
			emitter.tick(g)
			return nil
		})
	}

	if g.threads > 1 {
		if g.pool == nil {
			g.pool = NewPool(g.threads)
		}
		if err := g.pool.Run(ctx, tasks); err != nil {
			return nil, err
		}
	} else {
		for _, task := range tasks {
			if err := task(ctx); err != nil {
				return nil, err
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			matrix[i][j] = matrix[j][i]
		}
	}
	return matrix, nil
}

// Shutdown tears down the generator's pool. Safe to call multiple times.
func (g *DistanceMatrixGenerator) Shutdown() {
	if g.pool != nil {
		g.pool.Shutdown()
	}
}
