package build

import (
	"encoding/hex"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/zeebo/blake3"
)

// NativeArtifact is a platform binary copied into a bundle's output
// directory.
type NativeArtifact struct {
	Bundle string `json:"bundle" yaml:"bundle"`
	Path   string `json:"path" yaml:"path"`
	Size   int    `json:"size" yaml:"size"`
	Digest string `json:"digest" yaml:"digest"`
}

// Digest returns the hex BLAKE3 digest of content.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func nativeArtifacts(bundle, extension string, outputs []api.OutputFile) []NativeArtifact {
	var artifacts []NativeArtifact
	for _, out := range outputs {
		if filepath.Ext(out.Path) != extension {
			continue
		}
		artifacts = append(artifacts, NativeArtifact{
			Bundle: bundle,
			Path:   out.Path,
			Size:   len(out.Contents),
			Digest: Digest(out.Contents),
		})
	}
	return artifacts
}
