// Package config loads YAML job files describing a graph source and the walk
// and holdout tasks to run on it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphwalk/pkg/algorithms"
	"github.com/dd0wney/cluso-graphwalk/pkg/holdout"
	"github.com/dd0wney/cluso-graphwalk/pkg/validation"
	"github.com/dd0wney/cluso-graphwalk/pkg/walks"
)

var ErrNoTask = errors.New("job has neither walks nor holdout")

// Walk modes.
const (
	ModeComplete = "complete"
	ModeRandom   = "random"
)

// Dataset names a catalogue graph.
type Dataset struct {
	Repository string `yaml:"repository" validate:"required,identifier"`
	Name       string `yaml:"name" validate:"required,identifier"`
}

// EdgeList points at delimited files on disk.
type EdgeList struct {
	Path      string `yaml:"path" validate:"required"`
	NodesPath string `yaml:"nodes_path,omitempty"`
	Separator string `yaml:"separator,omitempty" validate:"omitempty,separator"`
	Header    bool   `yaml:"header"`

	// Column names, used when Header is set; indices otherwise.
	Sources      string `yaml:"sources,omitempty" validate:"omitempty,column"`
	Destinations string `yaml:"destinations,omitempty" validate:"omitempty,column"`
	Weights      string `yaml:"weights,omitempty" validate:"omitempty,column"`
	EdgeTypes    string `yaml:"edge_types,omitempty" validate:"omitempty,column"`
	NodeNames    string `yaml:"node_names,omitempty" validate:"omitempty,column"`
	NodeTypes    string `yaml:"node_types,omitempty" validate:"omitempty,column"`
}

// Source selects where the graph comes from; exactly one field is set.
type Source struct {
	Dataset  *Dataset  `yaml:"dataset,omitempty"`
	EdgeList *EdgeList `yaml:"edge_list,omitempty"`
	Directed bool      `yaml:"directed"`
}

// WalkJob generates walks and writes them one per line.
type WalkJob struct {
	walks.Parameters `yaml:",inline"`
	Mode             string `yaml:"mode" validate:"oneof=complete random"`
	// Quantity is the number of walks in random mode.
	Quantity int    `yaml:"quantity"`
	Output   string `yaml:"output" validate:"required"`
}

// UnmarshalYAML fills unset fields with the walk defaults.
func (w *WalkJob) UnmarshalYAML(node *yaml.Node) error {
	type plain WalkJob
	p, err := walks.NewParameters(DefaultWalkLength)
	if err != nil {
		return err
	}
	job := plain{Parameters: p, Mode: ModeComplete}
	if err := decodeStrict(node, &job); err != nil {
		return err
	}
	*w = WalkJob(job)
	return nil
}

// decodeStrict decodes node into v rejecting unknown keys. Node.Decode
// does not inherit KnownFields from the outer decoder.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// DefaultWalkLength is used when a walk job sets no length.
const DefaultWalkLength = 80

// HoldoutJob splits the graph, writes both sides and optionally scores the
// validation edges against the training graph.
type HoldoutJob struct {
	holdout.Options `yaml:",inline"`
	Kind            string   `yaml:"kind" validate:"oneof=connected random"`
	Output          string   `yaml:"output" validate:"required"`
	Metrics         []string `yaml:"metrics,omitempty"`
}

// UnmarshalYAML fills unset fields with the holdout defaults.
func (h *HoldoutJob) UnmarshalYAML(node *yaml.Node) error {
	type plain HoldoutJob
	job := plain{Options: holdout.DefaultOptions(), Kind: holdout.KindConnected}
	if err := decodeStrict(node, &job); err != nil {
		return err
	}
	*h = HoldoutJob(job)
	return nil
}

// ParsedMetrics resolves the metric names.
func (h HoldoutJob) ParsedMetrics() ([]algorithms.Metric, error) {
	out := make([]algorithms.Metric, 0, len(h.Metrics))
	for _, name := range h.Metrics {
		m, err := algorithms.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Job is a complete job file.
type Job struct {
	Name      string      `yaml:"name"`
	Source    Source      `yaml:"source"`
	CachePath string      `yaml:"cache_path,omitempty"`
	Walks     *WalkJob    `yaml:"walks,omitempty"`
	Holdout   *HoldoutJob `yaml:"holdout,omitempty"`
}

// Validate checks the whole job and reports every problem found.
func (j *Job) Validate() error {
	cv := validation.NewConfigValidator("job").Struct(j)
	src := j.Source
	cv.Custom("source", func() error {
		if (src.Dataset == nil) == (src.EdgeList == nil) {
			return errors.New("set exactly one of dataset and edge_list")
		}
		return nil
	})
	cv.When(src.EdgeList != nil && src.EdgeList.Header, func(cv *validation.ConfigValidator) {
		cv.Required("source.edge_list.sources", src.EdgeList.Sources).
			Required("source.edge_list.destinations", src.EdgeList.Destinations)
	})
	cv.When(j.Walks == nil && j.Holdout == nil, func(cv *validation.ConfigValidator) {
		cv.Custom("tasks", func() error { return ErrNoTask })
	})
	if w := j.Walks; w != nil {
		cv.Custom("walks", w.Parameters.Validate)
		cv.When(w.Mode == ModeRandom, func(cv *validation.ConfigValidator) {
			cv.Positive("walks.quantity", w.Quantity)
		})
		cv.When(w.IsNode2Vec() && src.Directed, func(cv *validation.ConfigValidator) {
			cv.Custom("walks", func() error { return walks.ErrDirectedNode2Vec })
		})
	}
	if h := j.Holdout; h != nil {
		cv.Custom("holdout", h.Options.Validate)
		cv.Custom("holdout.metrics", func() error {
			_, err := h.ParsedMetrics()
			return err
		})
	}
	return cv.Validate()
}

// Parse decodes and validates a job, rejecting unknown keys.
func Parse(r io.Reader) (*Job, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var job Job
	if err := dec.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("job file is empty")
		}
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Load reads a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	job, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}
