package notionclient

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Bodies mix markdown image syntax, inline <img> tags and bare links, so they are
// rendered to HTML first and then scanned as one document.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".svg": {},
}

// firstImageURL returns the first absolute http(s) image URL found in body.
func firstImageURL(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return ""
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return ""
	}

	if src := findAttr(doc, "img", "src", isHTTPURL); src != "" {
		return src
	}
	return findAttr(doc, "a", "href", func(s string) bool {
		if !isHTTPURL(s) {
			return false
		}
		u, _ := url.Parse(s)
		_, ok := imageExts[strings.ToLower(path.Ext(u.Path))]
		return ok
	})
}

func findAttr(root *html.Node, tag, attr string, accept func(string) bool) string {
	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, attr) && accept(strings.TrimSpace(a.Val)) {
					result = strings.TrimSpace(a.Val)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return result
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
