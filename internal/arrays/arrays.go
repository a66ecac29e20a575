// Package arrays reads float32 values out of gorgonia tensors in logical
// row-major order, whatever view or lazy transpose the tensor carries.
package arrays

import "gorgonia.org/tensor"

// RowMajor returns t itself when its backing array is already laid out in
// row-major order, and a materialized copy otherwise.
func RowMajor(t *tensor.Dense) *tensor.Dense {
	if !t.IsMaterializable() {
		return t
	}
	if m, ok := t.Materialize().(*tensor.Dense); ok {
		return m
	}
	return t
}

// Float32s returns the values of t in row-major order. ok is false when t
// is nil or does not hold float32.
func Float32s(t *tensor.Dense) (data []float32, ok bool) {
	if t == nil {
		return nil, false
	}
	switch v := RowMajor(t).Data().(type) {
	case []float32:
		return v, true
	case float32:
		return []float32{v}, true
	}
	return nil, false
}
