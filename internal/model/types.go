package model

// NumClasses is the width of the head output: normal, abnormal.
const NumClasses = 2

// Scores holds the raw head output for one image, indexed by class.
type Scores [NumClasses]float32

// ClassWeights selects which class score the explainer attributes.
type ClassWeights [NumClasses]float32

var (
	NormalWeights   = ClassWeights{1, 0}
	AbnormalWeights = ClassWeights{0, 1}
)

const (
	LayoutNHWC = "NHWC"
	LayoutNCHW = "NCHW"
)

type Stage struct {
	Input       string  `yaml:"input" json:"input"`
	Output      string  `yaml:"output" json:"output"`
	OutputShape []int64 `yaml:"output_shape" json:"output_shape"`
}

type ExplainerStage struct {
	Model   string `yaml:"model" json:"model"`
	Input   string `yaml:"input" json:"input"`
	Weights string `yaml:"weights" json:"weights"`
	Output  string `yaml:"output" json:"output"`
}

type Metadata struct {
	ImageSize  int            `yaml:"image_size" json:"image_size"`
	InputScale float32        `yaml:"input_scale" json:"input_scale"`
	Layout     string         `yaml:"layout" json:"layout"`
	Classes    []string       `yaml:"classes" json:"classes"`
	Backbone   Stage          `yaml:"backbone" json:"backbone"`
	Head       Stage          `yaml:"head" json:"head"`
	Explainer  ExplainerStage `yaml:"explainer" json:"explainer"`
}

// InputShape is the batched model input shape for the configured layout.
func (m Metadata) InputShape() []int64 {
	s := int64(m.ImageSize)
	if m.Layout == LayoutNCHW {
		return []int64{1, 3, s, s}
	}
	return []int64{1, s, s, 3}
}
