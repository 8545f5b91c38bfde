// Package testutil provides shared test fixtures for the evaluation
// engine: compact builders for labelled series and datasets.
package testutil

import (
	"github.com/tseval/tseval/eval"
)

// Series builds a labelled series from y values at x = 0, 1, 2, ...
func Series(label float64, ys ...float64) *eval.TimeSeries {
	return eval.NewTimeSeriesOf(label, ys...)
}

// Dataset builds a dataset and assigns each series its insertion index.
func Dataset(series ...*eval.TimeSeries) *eval.Dataset {
	d := eval.NewDataset(series...)
	for i := 0; i < d.Len(); i++ {
		d.At(i).Index = i
	}
	return d
}

// TwoClassDataset builds 2n single-feature series: n with label 0 and
// y values around lowCenter, n with label 1 around highCenter. Handy for
// separable-classes scenarios.
func TwoClassDataset(n int, lowCenter, highCenter float64) *eval.Dataset {
	d := eval.NewDataset()
	for i := 0; i < n; i++ {
		off := float64(i) * 0.01
		d.Append(Series(0, lowCenter+off, lowCenter-off))
		d.Append(Series(1, highCenter+off, highCenter-off))
	}
	for i := 0; i < d.Len(); i++ {
		d.At(i).Index = i
	}
	return d
}
