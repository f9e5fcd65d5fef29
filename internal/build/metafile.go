package build

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Metafile represents the esbuild metafile JSON structure
type Metafile struct {
	Inputs  map[string]MetafileInput  `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileInput represents an input file in the metafile
type MetafileInput struct {
	Bytes   int              `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
	Format  string           `json:"format,omitempty"`
}

// MetafileImport represents an import in the metafile
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Original string `json:"original,omitempty"`
}

// MetafileOutput represents an output file in the metafile
type MetafileOutput struct {
	Bytes      int                     `json:"bytes"`
	Inputs     map[string]InputContrib `json:"inputs"`
	Imports    []MetafileImport        `json:"imports"`
	Exports    []string                `json:"exports"`
	EntryPoint string                  `json:"entryPoint,omitempty"`
}

// InputContrib represents the contribution of an input to an output
type InputContrib struct {
	BytesInOutput int `json:"bytesInOutput"`
}

// InputAnalysis describes one input's share of a bundle's output.
type InputAnalysis struct {
	Path          string  `json:"path" yaml:"path"`
	Bytes         int     `json:"bytes" yaml:"bytes"`
	BytesInOutput int     `json:"bytes_in_output" yaml:"bytes_in_output"`
	Percentage    float64 `json:"percentage" yaml:"percentage"`
	ImportCount   int     `json:"import_count" yaml:"import_count"`
}

// Analysis is the metafile summary of one bundle.
type Analysis struct {
	TotalBytes      int             `json:"total_bytes" yaml:"total_bytes"`
	Inputs          []InputAnalysis `json:"inputs" yaml:"inputs"`
	ExternalImports []string        `json:"external_imports,omitempty" yaml:"external_imports,omitempty"`
}

// ParseMetafile decodes esbuild's metafile JSON.
func ParseMetafile(raw string) (*Metafile, error) {
	var meta Metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	return &meta, nil
}

// Analyze summarizes every output of the metafile. Input paths are shown
// relative to root; paths in a plugin namespace keep their prefix.
func (m *Metafile) Analyze(root string) Analysis {
	var result Analysis
	externals := map[string]struct{}{}
	contributions := map[string]int{}

	for outPath, output := range m.Outputs {
		if strings.HasSuffix(outPath, ".map") {
			continue
		}
		result.TotalBytes += output.Bytes

		for _, imp := range output.Imports {
			if imp.External {
				externals[imp.Path] = struct{}{}
			}
		}
		for inputPath, contrib := range output.Inputs {
			contributions[inputPath] += contrib.BytesInOutput
		}
	}

	for inputPath, bytesInOutput := range contributions {
		info := m.Inputs[inputPath]

		percentage := 0.0
		if result.TotalBytes > 0 {
			percentage = float64(bytesInOutput) / float64(result.TotalBytes) * 100
		}

		result.Inputs = append(result.Inputs, InputAnalysis{
			Path:          displayPath(root, inputPath),
			Bytes:         info.Bytes,
			BytesInOutput: bytesInOutput,
			Percentage:    percentage,
			ImportCount:   len(info.Imports),
		})
	}

	// Largest contribution first, ties by path
	sort.Slice(result.Inputs, func(i, j int) bool {
		a, b := result.Inputs[i], result.Inputs[j]
		if a.BytesInOutput != b.BytesInOutput {
			return a.BytesInOutput > b.BytesInOutput
		}
		return a.Path < b.Path
	})

	for path := range externals {
		result.ExternalImports = append(result.ExternalImports, path)
	}
	sort.Strings(result.ExternalImports)

	return result
}

func displayPath(root, inputPath string) string {
	namespace, path, found := strings.Cut(inputPath, ":")
	if !found || filepath.IsAbs(inputPath) || len(namespace) == 1 {
		namespace, path = "", inputPath
	}

	if filepath.IsAbs(path) && root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}

	if namespace != "" {
		return namespace + ":" + path
	}
	return path
}
