// Package site embeds the static assets and the index page template.
package site

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"

	"github.com/pkg/errors"

	plate "github.com/weegigs/steel-plate-go"
)

const IndexTemplate = "index.html"

//go:embed public
var embedded embed.FS

var _ plate.Site = (*Site)(nil)

type Site struct {
	files fs.FS
	index *template.Template
}

// Load builds the Site from the embedded public directory.
func Load() (*Site, error) {
	files, err := fs.Sub(embedded, "public")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded assets")
	}

	return New(files)
}

// New builds a Site from files, which must contain the index template at its
// root. Assets are served by their path within files.
func New(files fs.FS) (*Site, error) {
	source, err := fs.ReadFile(files, IndexTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read index template")
	}

	index, err := template.New(IndexTemplate).Parse(string(source))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse index template")
	}

	return &Site{files: files, index: index}, nil
}

func (s *Site) Asset(name string) ([]byte, bool) {
	if !fs.ValidPath(name) {
		return nil, false
	}

	data, err := fs.ReadFile(s.files, name)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (s *Site) RenderIndex(total plate.Total) ([]byte, error) {
	var page bytes.Buffer
	if err := s.index.Execute(&page, total); err != nil {
		return nil, errors.Wrap(err, "failed to render index")
	}

	return page.Bytes(), nil
}
