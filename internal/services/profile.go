// Package services wires the standardization pipeline stages together and
// carries the tunable scoring profile.
package services

import (
	"fmt"
	"os"

	"github.com/ortelius/advisor-backend/internal/plan"
	"github.com/ortelius/advisor-backend/internal/standardize"
	"gopkg.in/yaml.v2"
)

// Profile holds the tunable constants of the pipeline: similarity-tier
// thresholds, per-category confidence weights, and the OS family preference
// order. Fields a profile file leaves out keep the documented default.
type Profile struct {
	HighThreshold   float64
	MediumThreshold float64
	SimilarityFloor float64
	Weights         plan.Weights
	OSPreference    []string
}

// profileFile mirrors Profile with pointer fields so a key that is present
// with a zero value is distinguishable from a key that is absent.
type profileFile struct {
	HighThreshold   *float64    `yaml:"high_threshold"`
	MediumThreshold *float64    `yaml:"medium_threshold"`
	SimilarityFloor *float64    `yaml:"similarity_floor"`
	Weights         weightsFile `yaml:"weights"`
	OSPreference    []string    `yaml:"os_preference"`
}

type weightsFile struct {
	OS        *float64 `yaml:"os"`
	App       *float64 `yaml:"app"`
	AppServer *float64 `yaml:"app_server"`
	Runtime   *float64 `yaml:"runtime"`
	Lang      *float64 `yaml:"lang"`
	Unknown   *float64 `yaml:"unknown"`
}

// DefaultProfile returns the documented defaults.
func DefaultProfile() Profile {
	return Profile{
		HighThreshold:   0.8,
		MediumThreshold: 0.3,
		SimilarityFloor: 0.0,
		Weights:         plan.DefaultWeights(),
		OSPreference:    []string{"Linux", "Windows"},
	}
}

// LoadProfile reads a YAML scoring profile, filling unset fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("scoring profile %s: %w", path, err)
	}
	var loaded profileFile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return p, fmt.Errorf("scoring profile %s: %w", path, err)
	}
	p.merge(loaded)
	return p, nil
}

func (p *Profile) merge(o profileFile) {
	setFloat(&p.HighThreshold, o.HighThreshold)
	setFloat(&p.MediumThreshold, o.MediumThreshold)
	setFloat(&p.SimilarityFloor, o.SimilarityFloor)
	setFloat(&p.Weights.OS, o.Weights.OS)
	setFloat(&p.Weights.App, o.Weights.App)
	setFloat(&p.Weights.AppServer, o.Weights.AppServer)
	setFloat(&p.Weights.Runtime, o.Weights.Runtime)
	setFloat(&p.Weights.Lang, o.Weights.Lang)
	setFloat(&p.Weights.Unknown, o.Weights.Unknown)
	if len(o.OSPreference) > 0 {
		p.OSPreference = o.OSPreference
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// StandardizerConfig maps the profile onto the standardizer's thresholds.
func (p Profile) StandardizerConfig() standardize.Config {
	return standardize.Config{
		HighThreshold:   p.HighThreshold,
		MediumThreshold: p.MediumThreshold,
		SimilarityFloor: p.SimilarityFloor,
	}
}
