package gallery

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="gallery.css">
</head>
<body>
<nav><a href="index.html">All galleries</a></nav>
<h1>{{.Title}}</h1>
<div class="gallery">
{{- range .Images}}
<figure><a href="{{.Src}}"><img src="{{.Src}}" alt="{{.Alt}}" loading="lazy"></a>{{if .Alt}}<figcaption>{{.Alt}}</figcaption>{{end}}</figure>
{{- end}}
</div>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="gallery.css">
</head>
<body>
<h1>{{.Title}}</h1>
<ul class="galleries">
{{- range .Pages}}
<li><a href="{{.Slug}}.html">{{if .Images}}<img src="{{(index .Images 0).Src}}" alt="" loading="lazy">{{end}}<span>{{.Title}}</span></a> ({{len .Images}})</li>
{{- end}}
</ul>
</body>
</html>
`))

// Builder writes gallery pages into an output directory.
type Builder struct {
	OutDir     string
	IndexTitle string
	Log        *slog.Logger
}

// uniqueSlug returns slug, or the first slug-N not yet taken.
func uniqueSlug(used map[string]bool, slug string) string {
	if !used[slug] {
		return slug
	}
	for n := 2; ; n++ {
		if candidate := slug + "-" + strconv.Itoa(n); !used[candidate] {
			return candidate
		}
	}
}

// Build writes one page per gallery plus index.html and returns the files written.
// Pages without images are skipped. Slugs are made unique with a numeric suffix.
func (b *Builder) Build(pages []*Page) ([]string, error) {
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var kept []*Page
	// index.html is written last.
	used := map[string]bool{"index": true}
	for _, p := range pages {
		if len(p.Images) == 0 {
			b.logger().Warn("skipping page without images", "source", p.Source)
			continue
		}
		if p.Slug == "" {
			p.Slug = "gallery"
		}
		p.Slug = uniqueSlug(used, p.Slug)
		used[p.Slug] = true
		if p.Title == "" {
			p.Title = p.Slug
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Title < kept[j].Title })

	var written []string
	for _, p := range kept {
		path := filepath.Join(b.OutDir, p.Slug+".html")
		if err := writeTemplate(path, pageTemplate, p); err != nil {
			return written, err
		}
		written = append(written, path)
		b.logger().Info("gallery page written", "file", path, "images", len(p.Images))
	}

	title := b.IndexTitle
	if title == "" {
		title = "Photo Gallery"
	}
	index := filepath.Join(b.OutDir, "index.html")
	if err := writeTemplate(index, indexTemplate, map[string]any{"Title": title, "Pages": kept}); err != nil {
		return written, err
	}
	return append(written, index), nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Log
}

func writeTemplate(path string, t *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}
