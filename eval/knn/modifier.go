package knn

import (
	"fmt"

	"github.com/tseval/tseval/eval"
)

// NeighbourCountModifier tunes the classifier's k. Changing k never
// touches the distance kernel, so memos survive the sweep.
type NeighbourCountModifier struct{}

// Set implements eval.Modifier.
func (NeighbourCountModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	kc, ok := c.(*Classifier)
	if !ok {
		return fmt.Errorf("%w: %T is not a k-nearest-neighbour classifier", eval.ErrInvalidParameter, c)
	}
	return kc.SetK(int(v.Int()))
}

// AffectsDistance implements eval.Modifier.
func (NeighbourCountModifier) AffectsDistance() bool { return false }

var _ eval.Modifier = NeighbourCountModifier{}
