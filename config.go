package gocas

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Options
// ============================================================

// Options holds the work ceilings and tolerances of a Solver. Zero fields
// take the defaults of DefaultOptions.
type Options struct {
	// MaxSolveDepth bounds the isolation moves of a single solve.
	MaxSolveDepth int `yaml:"max_solve_depth"`
	// MaxFactorDegree is the highest degree Factor attempts.
	MaxFactorDegree int `yaml:"max_factor_degree"`
	// MaxRootCandidates bounds the rational-root candidates tried per
	// polynomial.
	MaxRootCandidates int `yaml:"max_root_candidates"`
	// MaxGroebnerPairs bounds the S-polynomials Buchberger reduces.
	MaxGroebnerPairs int `yaml:"max_groebner_pairs"`
	// Tolerance is the relative error accepted when a candidate root can
	// only be checked numerically.
	Tolerance    float64 `yaml:"tolerance"`
	DisableCache bool    `yaml:"disable_cache"`

	Recorder Recorder     `yaml:"-"`
	Logger   *slog.Logger `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		MaxSolveDepth:     64,
		MaxFactorDegree:   64,
		MaxRootCandidates: 4096,
		MaxGroebnerPairs:  2048,
		Tolerance:         1e-7,
	}
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxSolveDepth <= 0 {
		o.MaxSolveDepth = d.MaxSolveDepth
	}
	if o.MaxFactorDegree <= 0 {
		o.MaxFactorDegree = d.MaxFactorDegree
	}
	if o.MaxRootCandidates <= 0 {
		o.MaxRootCandidates = d.MaxRootCandidates
	}
	if o.MaxGroebnerPairs <= 0 {
		o.MaxGroebnerPairs = d.MaxGroebnerPairs
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.Recorder == nil {
		o.Recorder = NopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// LoadOptions reads Options from a YAML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes YAML options; unknown keys are rejected.
func ParseOptions(data []byte) (Options, error) {
	var o Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	return o.withDefaults(), nil
}
