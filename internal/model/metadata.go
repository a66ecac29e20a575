package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMetadata describes the VGG16 backbone with a 25088-wide feature
// vector feeding the two-class head.
func DefaultMetadata() Metadata {
	return Metadata{
		ImageSize:  224,
		InputScale: 1,
		Layout:     LayoutNHWC,
		Classes:    []string{"normal", "abnormal"},
		Backbone: Stage{
			Input:       "images",
			Output:      "features",
			OutputShape: []int64{1, 25088},
		},
		Head: Stage{
			Input:       "features",
			Output:      "output",
			OutputShape: []int64{1, NumClasses},
		},
		Explainer: ExplainerStage{
			Input:   "images",
			Weights: "class_weights",
			Output:  "attribution",
		},
	}
}

// LoadMetadata reads a YAML (or JSON) metadata file over the defaults.
// An empty path returns the defaults.
func LoadMetadata(path string) (Metadata, error) {
	meta := DefaultMetadata()
	if path == "" {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return meta, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return meta, nil
}

func (m Metadata) Validate() error {
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive, got %d", m.ImageSize)
	}
	if m.InputScale <= 0 {
		return fmt.Errorf("input_scale must be positive, got %v", m.InputScale)
	}
	if m.Layout != LayoutNHWC && m.Layout != LayoutNCHW {
		return fmt.Errorf("unknown layout %q", m.Layout)
	}
	if len(m.Classes) != NumClasses {
		return fmt.Errorf("expected %d classes, got %d", NumClasses, len(m.Classes))
	}
	if len(m.Backbone.OutputShape) == 0 {
		return fmt.Errorf("backbone.output_shape is required")
	}
	if got := elements(m.Head.OutputShape); got != NumClasses {
		return fmt.Errorf("head.output_shape must hold %d scores, got %d", NumClasses, got)
	}

	names := []struct{ key, name string }{
		{"backbone.input", m.Backbone.Input},
		{"backbone.output", m.Backbone.Output},
		{"head.input", m.Head.Input},
		{"head.output", m.Head.Output},
		{"explainer.input", m.Explainer.Input},
		{"explainer.weights", m.Explainer.Weights},
		{"explainer.output", m.Explainer.Output},
	}
	for _, n := range names {
		if n.name == "" {
			return fmt.Errorf("%s must not be empty", n.key)
		}
	}
	return nil
}

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}
