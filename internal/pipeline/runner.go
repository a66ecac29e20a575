// Package pipeline drives one sequential pass over an example list:
// load, predict, explain both classes, combine and write the artifacts.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Brownie44l1/saliency/internal/attribution"
	"github.com/Brownie44l1/saliency/internal/imageio"
	"github.com/Brownie44l1/saliency/internal/model"
	"gorgonia.org/tensor"
)

// Model is the capability the pipeline needs from the model host.
type Model interface {
	Predict(image *tensor.Dense) (model.Scores, error)
	Explain(image *tensor.Dense, weights model.ClassWeights) (*tensor.Dense, error)
}

type Runner struct {
	Model     Model
	Loader    imageio.Loader
	InputDir  string
	OutputDir string
	// LegacyNames writes the combined map under the historical
	// "attriution" suffix.
	LegacyNames bool
	Logger      *log.Logger
}

type Result struct {
	Name   string
	Scores model.Scores
	Paths  []string
}

// Run processes ids in order and stops at the first failure.
func (r *Runner) Run(ids []string) error {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, id := range ids {
		res, err := r.Process(id)
		if err != nil {
			return fmt.Errorf("example %q: %w", id, err)
		}
		r.logger().Printf("[%d/%d] %s", i+1, len(ids), res.Name)
	}

	r.logger().Printf("Processed %d examples into %s", len(ids), r.OutputDir)
	return nil
}

// Process runs the full pipeline for a single example.
func (r *Runner) Process(id string) (Result, error) {
	image, err := r.Loader.Load(filepath.Join(r.InputDir, id+".png"))
	if err != nil {
		return Result{}, err
	}

	scores, err := r.Model.Predict(image)
	if err != nil {
		return Result{}, err
	}
	r.logger().Printf("%s scores: %v", id, scores)

	normal, err := r.Model.Explain(image, model.NormalWeights)
	if err != nil {
		return Result{}, fmt.Errorf("explaining normal class: %w", err)
	}
	abnormal, err := r.Model.Explain(image, model.AbnormalWeights)
	if err != nil {
		return Result{}, fmt.Errorf("explaining abnormal class: %w", err)
	}

	combined, err := attribution.Combine(normal, abnormal)
	if err != nil {
		return Result{}, err
	}

	res := Result{Name: ResultName(id, scores), Scores: scores}
	roles := Roles(r.LegacyNames)
	for i, arr := range []*tensor.Dense{image, normal, abnormal, combined} {
		path := filepath.Join(r.OutputDir, res.Name+"_"+roles[i]+".png")
		if i == 0 {
			err = imageio.SaveImage(path, arr, r.Loader.Scale)
		} else {
			err = imageio.SaveHeatmap(path, arr)
		}
		if err != nil {
			return Result{}, err
		}
		res.Paths = append(res.Paths, path)
	}
	return res, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}
