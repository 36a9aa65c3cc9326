package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteLightbox prepares entry markup for the lightbox viewer. Gallery
// blocks are top-level <figure> elements whose direct children are
// <figure>s; each of their images and videos is wrapped in
// <a href=src data-gallery="gallery" class="glightbox"> and those links
// replace the gallery's children. Everything else is left alone.
func RewriteLightbox(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("parsing content: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		if isElement(n, atom.Figure) {
			rewriteGallery(n)
		}
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("rendering content: %w", err)
		}
	}
	return b.String(), nil
}

func rewriteGallery(figure *html.Node) {
	var nested []*html.Node
	for c := figure.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Figure) {
			nested = append(nested, c)
		}
	}
	if len(nested) == 0 {
		return
	}

	var links []*html.Node
	for _, f := range nested {
		media := findMedia(f)
		if media == nil {
			continue
		}
		media.Parent.RemoveChild(media)
		a := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.A,
			Data:     "a",
			Attr: []html.Attribute{
				{Key: "href", Val: mediaSource(media)},
				{Key: "data-gallery", Val: "gallery"},
				{Key: "class", Val: "glightbox"},
			},
		}
		a.AppendChild(media)
		links = append(links, a)
	}

	for c := figure.FirstChild; c != nil; c = figure.FirstChild {
		figure.RemoveChild(c)
	}
	for _, a := range links {
		figure.AppendChild(a)
	}
}

// findMedia returns the first img or video under n, depth first.
func findMedia(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Img) || isElement(c, atom.Video) {
			return c
		}
		if m := findMedia(c); m != nil {
			return m
		}
	}
	return nil
}

// mediaSource returns the element's src, or for videos without one, the src
// of their first <source>.
func mediaSource(n *html.Node) string {
	if src := attr(n, "src"); src != "" {
		return src
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Source) {
			return attr(c, "src")
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}
