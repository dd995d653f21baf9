package sources

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-listview/components/listview"
)

// FactoryOptions configures the manifest source factory.
type FactoryOptions struct {
	// BaseDir resolves relative fixture paths, usually the manifest's directory.
	BaseDir    string
	Token      string
	HTTPClient *http.Client
}

// NewFactory returns a listview.SourceFactory that understands the "fixture"
// and "http" manifest source kinds.
func NewFactory(opts FactoryOptions) listview.SourceFactory {
	return func(src listview.ManifestSource) (listview.Source, error) {
		switch strings.ToLower(strings.TrimSpace(src.Kind)) {
		case "fixture", "file":
			if src.Path == "" {
				return nil, fmt.Errorf("sources: fixture source requires path")
			}
			path := src.Path
			if !filepath.IsAbs(path) && opts.BaseDir != "" {
				path = filepath.Join(opts.BaseDir, path)
			}
			return FixtureSource{Path: path}, nil
		case "http", "https":
			return NewHTTPSource(HTTPConfig{
				URL:        src.URL,
				Token:      opts.Token,
				Headers:    src.Headers,
				HTTPClient: opts.HTTPClient,
			})
		default:
			return nil, fmt.Errorf("sources: unsupported source kind %q", src.Kind)
		}
	}
}
