package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetAttrs maps elements whose attribute references a file a cover may
// embed: photos, stylesheets, SVG images and picture sources.
var assetAttrs = map[string]string{
	"img":    "src",
	"link":   "href",
	"image":  "href",
	"source": "src",
}

// RewriteRelativePaths turns relative asset references into file:// URLs
// under sourceDir, so markup rendered from a temp file keeps its images.
// Absolute paths, URLs and references escaping sourceDir are left as is.
// An empty sourceDir returns the markup unchanged.
func RewriteRelativePaths(markup, sourceDir string) (string, error) {
	if sourceDir == "" {
		return markup, nil
	}
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := parseMarkup(markup)
	if err != nil {
		return "", err
	}
	walk(doc, func(n *html.Node) {
		if attr, ok := assetAttrs[n.Data]; ok {
			rewriteAttr(n, attr, root)
		}
	})

	var buf strings.Builder
	if !fragment {
		err = html.Render(&buf, doc)
		return buf.String(), err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// parseMarkup parses a full document, or a fragment in body context.
// Fragment nodes are hung under a synthetic document node.
func parseMarkup(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	doc := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		doc.AppendChild(n)
	}
	return doc, true, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func rewriteAttr(n *html.Node, key, root string) {
	for i := range n.Attr {
		if n.Attr[i].Key != key || !isRelativePath(n.Attr[i].Val) {
			continue
		}
		abs := filepath.Join(root, n.Attr[i].Val)
		if !isPathUnderDir(abs, root) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(abs)
	}
}

// isRelativePath reports whether ref is a local relative file reference.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(ref)
}

// isPathUnderDir reports whether path equals dir or lies beneath it.
func isPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func pathToFileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
