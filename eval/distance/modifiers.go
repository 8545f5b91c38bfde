package distance

import (
	"fmt"

	"github.com/tseval/tseval/eval"
)

// Setter interfaces satisfied by the kernels above. Modifiers reach a
// kernel through the classifier's DistanceBased capability and write one
// parameter via the matching setter.

// EpsilonSetter is satisfied by the EDR family.
type EpsilonSetter interface {
	SetEpsilon(epsilon float64) error
}

// GapSetter is satisfied by the ERP family.
type GapSetter interface {
	SetGap(g float64) error
}

// WidthSetter is satisfied by every window-constrained kernel.
type WidthSetter interface {
	SetRelativeWidth(r float64) error
	SetAbsoluteWidth(w int) error
}

// StiffnessSetter is satisfied by TWED.
type StiffnessSetter interface {
	SetStiffness(nu float64) error
	SetPenalty(lambda float64) error
}

// kernelOf extracts the distance kernel from a classifier, or fails when
// the classifier is not distance-based.
func kernelOf(c eval.Classifier) (eval.DistanceKernel, error) {
	db, ok := c.(eval.DistanceBased)
	if !ok {
		return nil, fmt.Errorf("%w: classifier is not distance-based", eval.ErrInvalidParameter)
	}
	return db.Distance(), nil
}

// EpsilonModifier tunes the matching threshold of an EDR-family kernel.
type EpsilonModifier struct{}

// Set implements eval.Modifier.
func (EpsilonModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	k, err := kernelOf(c)
	if err != nil {
		return err
	}
	s, ok := k.(EpsilonSetter)
	if !ok {
		return fmt.Errorf("%w: kernel %T has no epsilon", eval.ErrInvalidParameter, k)
	}
	return s.SetEpsilon(v.Real())
}

// AffectsDistance implements eval.Modifier.
func (EpsilonModifier) AffectsDistance() bool { return true }

// GapModifier tunes the gap value of an ERP-family kernel.
type GapModifier struct{}

// Set implements eval.Modifier.
func (GapModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	k, err := kernelOf(c)
	if err != nil {
		return err
	}
	s, ok := k.(GapSetter)
	if !ok {
		return fmt.Errorf("%w: kernel %T has no gap value", eval.ErrInvalidParameter, k)
	}
	return s.SetGap(v.Real())
}

// AffectsDistance implements eval.Modifier.
func (GapModifier) AffectsDistance() bool { return true }

// WidthModifier tunes the relative window width of a constrained kernel.
type WidthModifier struct{}

// Set implements eval.Modifier.
func (WidthModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	k, err := kernelOf(c)
	if err != nil {
		return err
	}
	s, ok := k.(WidthSetter)
	if !ok {
		return fmt.Errorf("%w: kernel %T has no warping window", eval.ErrInvalidParameter, k)
	}
	return s.SetRelativeWidth(v.Real())
}

// AffectsDistance implements eval.Modifier.
func (WidthModifier) AffectsDistance() bool { return true }

// StiffnessModifier tunes the nu stiffness of a TWED kernel.
type StiffnessModifier struct{}

// Set implements eval.Modifier.
func (StiffnessModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	k, err := kernelOf(c)
	if err != nil {
		return err
	}
	s, ok := k.(StiffnessSetter)
	if !ok {
		return fmt.Errorf("%w: kernel %T has no stiffness", eval.ErrInvalidParameter, k)
	}
	return s.SetStiffness(v.Real())
}

// AffectsDistance implements eval.Modifier.
func (StiffnessModifier) AffectsDistance() bool { return true }

// PenaltyModifier tunes the lambda deletion penalty of a TWED kernel.
type PenaltyModifier struct{}

// Set implements eval.Modifier.
func (PenaltyModifier) Set(c eval.Classifier, v eval.ParamValue) error {
	k, err := kernelOf(c)
	if err != nil {
		return err
	}
	s, ok := k.(StiffnessSetter)
	if !ok {
		return fmt.Errorf("%w: kernel %T has no deletion penalty", eval.ErrInvalidParameter, k)
	}
	return s.SetPenalty(v.Real())
}

// AffectsDistance implements eval.Modifier.
func (PenaltyModifier) AffectsDistance() bool { return true }

var (
	_ eval.Modifier = EpsilonModifier{}
	_ eval.Modifier = GapModifier{}
	_ eval.Modifier = WidthModifier{}
	_ eval.Modifier = StiffnessModifier{}
	_ eval.Modifier = PenaltyModifier{}
)
