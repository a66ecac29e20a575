package model

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"

	"github.com/Brownie44l1/saliency/internal/arrays"
)

var ErrInputShape = errors.New("image does not match model input")

type HostConfig struct {
	BackbonePath string
	HeadPath     string
	// ExplainerPath overrides Metadata.Explainer.Model when set.
	ExplainerPath string
	// LibraryPath points at the onnxruntime shared library; empty uses
	// the platform default.
	LibraryPath string
	Metadata    Metadata
}

// Host owns the onnxruntime environment and every session and tensor used
// for a batch. The backbone writes into the feature tensor the head reads,
// so a forward pass needs no copy between stages.
type Host struct {
	Metadata Metadata

	backbone  *ort.AdvancedSession
	head      *ort.AdvancedSession
	explainer *ort.AdvancedSession

	inputTensor       *ort.Tensor[float32]
	featureTensor     *ort.Tensor[float32]
	outputTensor      *ort.Tensor[float32]
	weightTensor      *ort.Tensor[float32]
	attributionTensor *ort.Tensor[float32]
}

func NewHost(cfg HostConfig) (*Host, error) {
	meta := cfg.Metadata
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	explainerPath := meta.Explainer.Model
	if cfg.ExplainerPath != "" {
		explainerPath = cfg.ExplainerPath
	}
	if explainerPath == "" {
		return nil, fmt.Errorf("no explainer model configured")
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	h := &Host{Metadata: meta}
	if err := h.init(cfg.BackbonePath, cfg.HeadPath, explainerPath); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *Host) init(backbonePath, headPath, explainerPath string) error {
	meta := h.Metadata
	inputShape := ort.NewShape(meta.InputShape()...)

	var err error
	if h.inputTensor, err = ort.NewEmptyTensor[float32](inputShape); err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	if h.featureTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.Backbone.OutputShape...)); err != nil {
		return fmt.Errorf("failed to create feature tensor: %w", err)
	}
	if h.outputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.Head.OutputShape...)); err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	if h.weightTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(1, NumClasses)); err != nil {
		return fmt.Errorf("failed to create weight tensor: %w", err)
	}
	if h.attributionTensor, err = ort.NewEmptyTensor[float32](inputShape); err != nil {
		return fmt.Errorf("failed to create attribution tensor: %w", err)
	}

	h.backbone, err = ort.NewAdvancedSession(backbonePath,
		[]string{meta.Backbone.Input}, []string{meta.Backbone.Output},
		[]ort.ArbitraryTensor{h.inputTensor}, []ort.ArbitraryTensor{h.featureTensor},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create backbone session: %w", err)
	}

	h.head, err = ort.NewAdvancedSession(headPath,
		[]string{meta.Head.Input}, []string{meta.Head.Output},
		[]ort.ArbitraryTensor{h.featureTensor}, []ort.ArbitraryTensor{h.outputTensor},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create head session: %w", err)
	}

	h.explainer, err = ort.NewAdvancedSession(explainerPath,
		[]string{meta.Explainer.Input, meta.Explainer.Weights}, []string{meta.Explainer.Output},
		[]ort.ArbitraryTensor{h.inputTensor, h.weightTensor}, []ort.ArbitraryTensor{h.attributionTensor},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create explainer session: %w", err)
	}
	return nil
}

// Predict runs the backbone and head on one image array.
func (h *Host) Predict(image *tensor.Dense) (Scores, error) {
	var scores Scores
	if err := h.feed(image); err != nil {
		return scores, err
	}

	if err := h.backbone.Run(); err != nil {
		return scores, fmt.Errorf("backbone inference failed: %w", err)
	}
	if err := h.head.Run(); err != nil {
		return scores, fmt.Errorf("head inference failed: %w", err)
	}

	copy(scores[:], h.outputTensor.GetData())
	return scores, nil
}

// Explain returns the attribution of the weighted class scores with
// respect to each input element, in the image's height×width×channel order.
func (h *Host) Explain(image *tensor.Dense, weights ClassWeights) (*tensor.Dense, error) {
	if err := h.feed(image); err != nil {
		return nil, err
	}
	copy(h.weightTensor.GetData(), weights[:])

	if err := h.explainer.Run(); err != nil {
		return nil, fmt.Errorf("attribution failed: %w", err)
	}

	size := h.Metadata.ImageSize
	out := make([]float32, size*size*3)
	if h.Metadata.Layout == LayoutNCHW {
		fromCHW(out, h.attributionTensor.GetData(), size, 3)
	} else {
		copy(out, h.attributionTensor.GetData())
	}
	return tensor.New(tensor.WithShape(size, size, 3), tensor.WithBacking(out)), nil
}

func (h *Host) feed(image *tensor.Dense) error {
	size := h.Metadata.ImageSize
	data, err := CheckImage(image, size)
	if err != nil {
		return err
	}

	if h.Metadata.Layout == LayoutNCHW {
		toCHW(h.inputTensor.GetData(), data, size, 3)
	} else {
		copy(h.inputTensor.GetData(), data)
	}
	return nil
}

// CheckImage verifies image is a size×size×3 float32 array and returns its
// values in row-major order.
func CheckImage(image *tensor.Dense, size int) ([]float32, error) {
	if image == nil {
		return nil, fmt.Errorf("%w: no image", ErrInputShape)
	}
	want := tensor.Shape{size, size, 3}
	if !image.Shape().Eq(want) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrInputShape, image.Shape(), want)
	}
	data, ok := arrays.Float32s(image)
	if !ok {
		return nil, fmt.Errorf("%w: got dtype %v, want float32", ErrInputShape, image.Dtype())
	}
	return data, nil
}

func (h *Host) Close() {
	for _, s := range []*ort.AdvancedSession{h.explainer, h.head, h.backbone} {
		if s != nil {
			s.Destroy()
		}
	}
	for _, t := range []*ort.Tensor[float32]{h.attributionTensor, h.weightTensor, h.outputTensor, h.featureTensor, h.inputTensor} {
		if t != nil {
			t.Destroy()
		}
	}
	ort.DestroyEnvironment()
}
