package markup

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const pkg = "markup/"

// ImageScheme is the URL scheme of stored image references, as in
// ![alt](img:diagram).
const ImageScheme = "img"

//go:embed default.css
var defaultStylesheet string

type Renderer struct {
	md         goldmark.Markdown
	policy     *bluemonday.Policy
	stylesheet string
}

// New builds a renderer. An empty stylesheet selects the built-in one.
func New(stylesheet string) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowURLSchemes(ImageScheme)

	if stylesheet == "" {
		stylesheet = defaultStylesheet
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy:     policy,
		stylesheet: stylesheet,
	}
}

// ToHTML renders markdown to a sanitised HTML fragment. Raw HTML in the
// source passes through goldmark and is then filtered by the UGC policy.
func (r *Renderer) ToHTML(source []byte) ([]byte, error) {
	op := pkg + "ToHTML"

	var buf bytes.Buffer

	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.policy.SanitizeBytes(buf.Bytes()), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
{{ .Stylesheet }}
</style>
</head>
<body>
<article class="markdown-body">
{{ .Body }}
</article>
</body>
</html>
`))

// Wrap places an HTML fragment into a complete styled page.
func (r *Renderer) Wrap(title string, body []byte) ([]byte, error) {
	op := pkg + "Wrap"

	var buf bytes.Buffer

	err := pageTemplate.Execute(&buf, struct {
		Title      string
		Stylesheet template.CSS
		Body       template.HTML
	}{
		Title:      title,
		Stylesheet: template.CSS(r.stylesheet),
		Body:       template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}
