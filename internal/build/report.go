package build

import (
	"time"

	"github.com/conneroisu/targetforge/internal/target"
)

// Report summarizes one directive build.
type Report struct {
	Target          target.Target    `json:"target" yaml:"target"`
	Bundles         []BundleReport   `json:"bundles" yaml:"bundles"`
	NativeArtifacts []NativeArtifact `json:"native_artifacts,omitempty" yaml:"native_artifacts,omitempty"`
	Duration        time.Duration    `json:"duration" yaml:"duration"`
}

// BundleReport summarizes one bundle of a build.
type BundleReport struct {
	Name       string        `json:"name" yaml:"name"`
	OutDir     string        `json:"out_dir" yaml:"out_dir"`
	Privileged bool          `json:"privileged,omitempty" yaml:"privileged,omitempty"`
	Outputs    []OutputFile  `json:"outputs" yaml:"outputs"`
	TotalBytes int           `json:"total_bytes" yaml:"total_bytes"`
	Analysis   *Analysis     `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Warnings   []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// OutputFile is one file the bundler emitted.
type OutputFile struct {
	Path  string `json:"path" yaml:"path"`
	Bytes int    `json:"bytes" yaml:"bytes"`
}

// TotalBytes sums the bytes of every bundle.
func (r *Report) TotalBytes() int {
	total := 0
	for _, b := range r.Bundles {
		total += b.TotalBytes
	}
	return total
}

// Bundle returns the report of the named bundle.
func (r *Report) Bundle(name string) (BundleReport, bool) {
	for _, b := range r.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return BundleReport{}, false
}
