package main

import (
	"os"
	"path/filepath"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// championFile is the config fragment the backend reads with -config.
type championFile struct {
	Heuristics engine.ShapeWeights `yaml:"heuristics"`
}

func writeChampion(path string, weights engine.ShapeWeights) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	raw, err := yaml.Marshal(championFile{Heuristics: weights})
	if err != nil {
		return errors.Wrap(err, "encode champion")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "write champion")
	}
	return errors.Wrap(os.Rename(tmp, path), "publish champion")
}

func readChampion(path string) (engine.ShapeWeights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return engine.ShapeWeights{}, errors.Wrapf(err, "read %s", path)
	}
	file := championFile{Heuristics: engine.DefaultShapeWeights()}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return engine.ShapeWeights{}, errors.Wrapf(err, "parse %s", path)
	}
	if err := file.Heuristics.Validate(); err != nil {
		return engine.ShapeWeights{}, errors.Wrapf(err, "weights in %s", path)
	}
	return file.Heuristics, nil
}
