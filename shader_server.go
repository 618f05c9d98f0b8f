package rendergraph

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/gekko3d/rendergraph/shaders"
)

type ShaderId string

func makeShaderId() ShaderId {
	return ShaderId(uuid.NewString())
}

type ShaderAsset struct {
	Id     ShaderId
	URI    string
	Source string
}

// ShaderServer resolves shader URIs to WGSL source. Supported schemes:
//   - builtin://blit_color, builtin://blit_depth: embedded sources
//   - file://path or a bare path: read from the filesystem
//
// Sources registered with Register take precedence over all schemes, which
// lets applications ship their shaders embedded.
type ShaderServer struct {
	assets map[string]*ShaderAsset
}

func NewShaderServer() *ShaderServer {
	return &ShaderServer{assets: map[string]*ShaderAsset{}}
}

// Register associates WGSL source with a URI ahead of any Load call.
func (s *ShaderServer) Register(uri string, source string) *ShaderAsset {
	asset := &ShaderAsset{Id: makeShaderId(), URI: uri, Source: source}
	s.assets[uri] = asset
	return asset
}

// Load returns the source for uri, reading and caching it on first use.
func (s *ShaderServer) Load(uri string) (*ShaderAsset, error) {
	if asset, ok := s.assets[uri]; ok {
		return asset, nil
	}

	var source string
	switch {
	case strings.HasPrefix(uri, "builtin://"):
		switch strings.TrimPrefix(uri, "builtin://") {
		case "blit_color":
			source = shaders.BlitColorWGSL
		case "blit_depth":
			source = shaders.BlitDepthWGSL
		default:
			return nil, fmt.Errorf("unknown builtin shader %q", uri)
		}
	default:
		path := strings.TrimPrefix(uri, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read shader %q: %w", uri, err)
		}
		source = string(data)
	}

	return s.Register(uri, source), nil
}
