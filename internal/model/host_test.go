package model

import (
	"errors"
	"testing"

	"gorgonia.org/tensor"
)

func TestLayoutRoundTrip(t *testing.T) {
	const size, channels = 2, 3
	src := make([]float32, size*size*channels)
	for i := range src {
		src[i] = float32(i)
	}

	chw := make([]float32, len(src))
	toCHW(chw, src, size, channels)

	// First plane holds the red channel of every pixel.
	wantRed := []float32{0, 3, 6, 9}
	for i, v := range wantRed {
		if chw[i] != v {
			t.Errorf("chw[%d] = %v, want %v", i, chw[i], v)
		}
	}

	back := make([]float32, len(src))
	fromCHW(back, chw, size, channels)
	for i := range src {
		if back[i] != src[i] {
			t.Errorf("round trip [%d] = %v, want %v", i, back[i], src[i])
		}
	}
}

func TestCheckImage(t *testing.T) {
	good := tensor.New(tensor.WithShape(4, 4, 3), tensor.WithBacking(make([]float32, 48)))
	if data, err := CheckImage(good, 4); err != nil || len(data) != 48 {
		t.Errorf("CheckImage(good) = %d values, %v", len(data), err)
	}

	tests := []struct {
		name  string
		image *tensor.Dense
	}{
		{"nil", nil},
		{"wrong size", tensor.New(tensor.WithShape(8, 8, 3), tensor.WithBacking(make([]float32, 192)))},
		{"single channel", tensor.New(tensor.WithShape(4, 4, 1), tensor.WithBacking(make([]float32, 16)))},
		{"float64", tensor.New(tensor.WithShape(4, 4, 3), tensor.WithBacking(make([]float64, 48)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CheckImage(tt.image, 4); !errors.Is(err, ErrInputShape) {
				t.Errorf("err = %v, want ErrInputShape", err)
			}
		})
	}
}

func TestNewHost_RequiresExplainer(t *testing.T) {
	_, err := NewHost(HostConfig{
		BackbonePath: "vgg16.onnx",
		HeadPath:     "head.onnx",
		Metadata:     DefaultMetadata(),
	})
	if err == nil {
		t.Fatal("expected error without an explainer model")
	}
}

func TestCheckImage_TransposedView(t *testing.T) {
	backing := make([]float32, 2*2*3)
	for i := range backing {
		backing[i] = float32(i)
	}
	img := tensor.New(tensor.WithShape(2, 2, 3), tensor.WithBacking(backing))
	if err := img.T(1, 0, 2); err != nil {
		t.Fatal(err)
	}

	data, err := CheckImage(img, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Pixel (y=0, x=1) of the view is pixel (y=1, x=0) of the backing.
	want := []float32{6, 7, 8}
	for c, v := range want {
		if data[3+c] != v {
			t.Errorf("channel %d = %v, want %v", c, data[3+c], v)
		}
	}
}
