// Package gallery rebuilds static gallery pages from scraped HTML.
package gallery

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Image is one picture on a gallery page.
type Image struct {
	Src string
	Alt string
}

// Page is the gallery content extracted from one scraped document.
type Page struct {
	Title  string
	Slug   string
	Source string
	Images []Image
}

// Scrape extracts the page title and the images of an HTML document.
// Relative image URLs are resolved against base when it is set. Duplicate
// and inline (data:) images are dropped.
func Scrape(r io.Reader, base *url.URL) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var (
		title, heading string
		images         []Image
		seen           = map[string]bool{}
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if title == "" {
					title = textOf(n)
				}
			case atom.H1:
				if heading == "" {
					heading = textOf(n)
				}
			case atom.Img:
				src := attr(n, "src")
				if src == "" {
					src = attr(n, "data-src")
				}
				if src = resolve(base, src); src != "" && !seen[src] {
					seen[src] = true
					images = append(images, Image{Src: src, Alt: strings.TrimSpace(attr(n, "alt"))})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title == "" {
		title = heading
	}
	return &Page{Title: title, Slug: Slugify(title), Images: images}, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func resolve(base *url.URL, src string) string {
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}

// Slugify lowercases s, strips diacritics and joins alphanumeric runs with hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
