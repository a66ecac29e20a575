// Package attribution turns the per-class saliency maps produced by the
// explainer into a single map of evidence specific to the abnormal class.
package attribution

import (
	"errors"
	"fmt"
	"math"

	"gorgonia.org/tensor"

	"github.com/Brownie44l1/saliency/internal/arrays"
)

var (
	ErrShapeMismatch = errors.New("attribution shape mismatch")
	ErrDtype         = errors.New("attribution must be float32")
)

// Threshold returns the non-negative part of the normal-class attribution,
// the baseline of positive evidence already supporting the normal class.
func Threshold(normal *tensor.Dense) (*tensor.Dense, error) {
	n, err := prepare(normal)
	if err != nil {
		return nil, err
	}
	return clip(n)
}

// Combine subtracts the normal baseline from the abnormal attribution and
// clips the residual at zero. Inputs are left untouched.
func Combine(normal, abnormal *tensor.Dense) (*tensor.Dense, error) {
	if normal == nil || abnormal == nil {
		return nil, fmt.Errorf("%w: missing attribution", ErrShapeMismatch)
	}
	if !normal.Shape().Eq(abnormal.Shape()) {
		return nil, fmt.Errorf("%w: normal %v, abnormal %v", ErrShapeMismatch, normal.Shape(), abnormal.Shape())
	}

	threshold, err := Threshold(normal)
	if err != nil {
		return nil, err
	}
	a, err := prepare(abnormal)
	if err != nil {
		return nil, err
	}

	diff, err := tensor.Sub(a, threshold)
	if err != nil {
		return nil, fmt.Errorf("subtracting baseline: %w", err)
	}
	d, ok := diff.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("subtracting baseline: unexpected %T", diff)
	}
	return clip(d)
}

// prepare checks t is float32 and returns it in row-major layout.
func prepare(t *tensor.Dense) (*tensor.Dense, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: missing attribution", ErrShapeMismatch)
	}
	if t.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("%w: got %v", ErrDtype, t.Dtype())
	}
	return arrays.RowMajor(t), nil
}

func clip(t *tensor.Dense) (*tensor.Dense, error) {
	out, err := tensor.Clamp(t, float32(0), float32(math.Inf(1)))
	if err != nil {
		return nil, fmt.Errorf("clipping attribution: %w", err)
	}
	d, ok := out.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("clipping attribution: unexpected %T", out)
	}
	return d, nil
}
