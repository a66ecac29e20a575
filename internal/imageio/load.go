// Package imageio converts between image files on disk and the
// height×width×channel float32 arrays the model and explainer consume.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"gorgonia.org/tensor"

	"github.com/Brownie44l1/saliency/internal/arrays"
)

const channels = 3

var ErrShape = errors.New("array is not height×width×3 float32")

// Loader decodes images into model input arrays.
type Loader struct {
	Size  int
	Scale float32
}

// Load decodes the PNG at path, resizes it to Size×Size and scales each
// channel from [0,1] by Scale.
func (l Loader) Load(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return l.FromImage(img), nil
}

func (l Loader) FromImage(img image.Image) *tensor.Dense {
	size := l.Size
	if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
		img = resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
	}

	scale := l.Scale
	if scale == 0 {
		scale = 1
	}

	bounds := img.Bounds()
	data := make([]float32, size*size*channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := (y*size + x) * channels
			data[i] = float32(r) / 65535.0 * scale
			data[i+1] = float32(g) / 65535.0 * scale
			data[i+2] = float32(b) / 65535.0 * scale
		}
	}

	return tensor.New(tensor.WithShape(size, size, channels), tensor.WithBacking(data))
}

// dims validates arr and returns its height, width and values.
func dims(arr *tensor.Dense) (int, int, []float32, error) {
	if arr == nil {
		return 0, 0, nil, fmt.Errorf("%w: nil array", ErrShape)
	}
	shape := arr.Shape()
	if len(shape) != 3 || shape[2] != channels {
		return 0, 0, nil, fmt.Errorf("%w: got %v", ErrShape, shape)
	}
	data, ok := arrays.Float32s(arr)
	if !ok {
		return 0, 0, nil, fmt.Errorf("%w: got dtype %v", ErrShape, arr.Dtype())
	}
	return shape[0], shape[1], data, nil
}
