package eval

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Callback receives progress notifications from long-running components.
// The sink is shared between workers; the emitter serializes invocations
// so no Callback call overlaps another.
type Callback interface {
	// DesiredCallbacks returns how many notifications the sink wants over
	// a whole run.
	DesiredCallbacks() int

	// SetPossibleCallbacks tells the sink how many units of work the
	// emitting component will perform.
	SetPossibleCallbacks(n int)

	// SetCallbackCount tells the sink how many notifications it will
	// actually receive.
	SetCallbackCount(c int)

	// Callback delivers one notification. src is the emitting component.
	Callback(src any)

	// Progress returns the fraction of work completed so far in [0,1].
	Progress() float64
}

// progressEmitter turns units of completed work into Callback invocations.
//
// stepSize = desired/possible is computed once at construction. Each
// completed unit advances a float progress counter; whenever it reaches
// the next step boundary the sink is notified. A stepSize of 0 or >= 1
// degenerates to one callback per unit of work.
type progressEmitter struct {
	mu       sync.Mutex
	sink     Callback
	stepSize float64
	progress float64
	steps    float64
	possible int
	desired  int
	done     int
}

// newProgressEmitter prepares an emitter for possible units of work.
// A nil sink yields an emitter whose tick is a no-op.
func newProgressEmitter(sink Callback, possible int) *progressEmitter {
	e := &progressEmitter{sink: sink, possible: possible, steps: 1}
	if sink == nil || possible <= 0 {
		return e
	}
	desired := sink.DesiredCallbacks()
	e.desired = desired
	e.stepSize = float64(desired) / float64(possible)
	sink.SetPossibleCallbacks(possible)
	if e.stepSize >= 1 || e.stepSize == 0 {
		sink.SetCallbackCount(possible)
	} else {
		sink.SetCallbackCount(desired)
	}
	return e
}

// tick records one completed unit of work, invoking the sink when the
// accumulated progress crosses the next step boundary. Safe for
// concurrent use; invocations never overlap.
func (e *progressEmitter) tick(src any) {
	if e.sink == nil || e.possible <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.done++
	if e.stepSize >= 1 || e.stepSize == 0 {
		e.sink.Callback(src)
		return
	}
	e.progress = float64(e.done*e.desired) / float64(e.possible)
	if e.progress >= e.steps {
		e.sink.Callback(src)
		e.steps++
	}
}

// fraction returns completed/possible work in [0,1].
func (e *progressEmitter) fraction() float64 {
	if e.possible <= 0 {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.done) / float64(e.possible)
}

// LogCallback is a Callback sink that reports progress through logrus.
// Used by the CLI; handy as a default sink in tests too.
type LogCallback struct {
	mu       sync.Mutex
	Desired  int // notifications wanted over a full run (default 10)
	possible int
	count    int
	received int
}

// NewLogCallback creates a sink that logs roughly desired progress lines.
func NewLogCallback(desired int) *LogCallback {
	if desired <= 0 {
		desired = 10
	}
	return &LogCallback{Desired: desired}
}

func (l *LogCallback) DesiredCallbacks() int { return l.Desired }

func (l *LogCallback) SetPossibleCallbacks(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.possible = n
}

func (l *LogCallback) SetCallbackCount(c int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = c
}

func (l *LogCallback) Callback(src any) {
	l.mu.Lock()
	l.received++
	received, count := l.received, l.count
	l.mu.Unlock()
	logrus.Infof("progress: %d/%d (%T)", received, count, src)
}

func (l *LogCallback) Progress() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return 0
	}
	return float64(l.received) / float64(l.count)
}
