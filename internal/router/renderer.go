package router

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// TemplateRenderer plugs html/template into Echo's Renderer interface.
type TemplateRenderer struct {
	templates *template.Template
}

// NewRenderer parses every template matching the glob.
func NewRenderer(glob string) (*TemplateRenderer, error) {
	tmpl, err := template.ParseGlob(glob)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// Render implements echo.Renderer.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
