package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseArgs([]string{
		"--legacy-names", "-m", "meta.yml", "-e", "deeplift.onnx",
		"vgg16.onnx", "head.onnx", "examples.json", "images", "results",
	}, &stderr)
	if err != nil {
		t.Fatal(err)
	}

	if !opts.legacyNames || opts.metadataPath != "meta.yml" || opts.explainerPath != "deeplift.onnx" {
		t.Errorf("flags = %+v", opts)
	}
	got := []string{opts.backbonePath, opts.headPath, opts.examplesPath, opts.inputDir, opts.outputDir}
	want := []string{"vgg16.onnx", "head.onnx", "examples.json", "images", "results"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseArgs_WrongCount(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseArgs([]string{"vgg16.onnx", "head.onnx"}, &stderr)
	if err == nil || !strings.Contains(err.Error(), "expected 5 arguments") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage: visualize") {
		t.Errorf("usage not printed:\n%s", stderr.String())
	}
}

func TestParseArgs_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseArgs([]string{"--help"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want ErrHelp", err)
	}
}

func TestRun_UsageErrorExitCode(t *testing.T) {
	if code := run([]string{"--no-such-flag"}); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}
