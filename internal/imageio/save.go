package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gorgonia.org/tensor"
)

var (
	heatZero     = colorful.Color{R: 0, G: 0, B: 0}
	heatPositive = colorful.Color{R: 1, G: 0, B: 0}
	heatNegative = colorful.Color{R: 0, G: 0, B: 1}
)

// SaveImage writes an input array back out as an 8-bit PNG, undoing the
// Loader's scale.
func SaveImage(path string, arr *tensor.Dense, scale float32) error {
	h, w, data, err := dims(arr)
	if err != nil {
		return err
	}
	if scale == 0 {
		scale = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * channels
			img.SetRGBA(x, y, color.RGBA{
				R: to8(data[i] / scale),
				G: to8(data[i+1] / scale),
				B: to8(data[i+2] / scale),
				A: 255,
			})
		}
	}
	return writePNG(path, img)
}

// SaveHeatmap renders an attribution array: channels are summed per pixel,
// normalized by the largest magnitude, positive evidence shades toward red
// and negative toward blue.
func SaveHeatmap(path string, arr *tensor.Dense) error {
	img, err := Heatmap(arr)
	if err != nil {
		return err
	}
	return writePNG(path, img)
}

func Heatmap(arr *tensor.Dense) (*image.RGBA, error) {
	h, w, data, err := dims(arr)
	if err != nil {
		return nil, err
	}

	sums := make([]float64, h*w)
	var peak float64
	for p := range sums {
		var s float64
		for c := 0; c < channels; c++ {
			s += float64(data[p*channels+c])
		}
		sums[p] = s
		peak = math.Max(peak, math.Abs(s))
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for p, s := range sums {
		c := heatZero
		if peak > 0 {
			v := s / peak
			if v >= 0 {
				c = heatZero.BlendRgb(heatPositive, v)
			} else {
				c = heatZero.BlendRgb(heatNegative, -v)
			}
		}
		r, g, b := c.Clamped().RGB255()
		img.SetRGBA(p%w, p/w, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return img, nil
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
