package httpx

import (
	"bytes"
	"errors"
	"html"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
// The filesystem layout is layout/error templates at the root plus pages/ and partials/.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}

	t, err := template.New("root").Funcs(templateFuncs()).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("template parsing failed",
				slog.Any("error", err),
				slog.String("phase", "initialization"),
			)
		}
		return nil, err
	}

	return &TemplateRenderer{t: t, logger: cfg.Logger}, nil
}

// RenderPage renders the full page: layout plus the named page content block.
func (r *TemplateRenderer) RenderPage(w http.ResponseWriter, name string, data *PageData) error {
	if data == nil {
		data = &PageData{}
	}
	data.ContentTemplate = name + "-content"
	return r.renderTemplate(w, http.StatusOK, "layout", data)
}

// RenderError renders the error page with the given HTTP status.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, status int, data *ErrorData) error {
	return r.renderTemplate(w, status, "error-layout", data)
}

func (r *TemplateRenderer) renderTemplate(w http.ResponseWriter, status int, templateName string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, templateName, data); err != nil {
		r.logTemplateError(templateName, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logTemplateError(templateName, err)
		return err
	}

	return nil
}

func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}

// templateFuncs returns the helper functions available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"excerpt": excerpt,
		"imgsrc":  imageDataURL,
		"markup":  trustedMarkup,
	}
}

// trustedMarkup marks stored post content as safe for rendering. Content is
// sanitized with bluemonday before it is persisted, never at render time.
func trustedMarkup(s string) template.HTML {
	//nolint:gosec // input passed through the sanitizer policy at write time
	return template.HTML(s)
}

// stripTags reduces stored markup to plain text for list views.
var stripTags = bluemonday.StrictPolicy()

// excerpt shortens post content to plain text for list views.
func excerpt(s string, maxRunes int) string {
	runes := []rune(strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s))))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

// imageDataURL turns a stored base64 image payload into an inline data URL.
func imageDataURL(encoded string) template.URL {
	//nolint:gosec // payload is base64 produced by our own upload handler
	return template.URL("data:image;base64," + encoded)
}
