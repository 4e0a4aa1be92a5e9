package crawl

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Elements stripped before content selection: scripts, styling, and page
// chrome that would otherwise pollute the extracted text.
var strippedElements = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {},
	"nav": {}, "header": {}, "footer": {}, "aside": {}, "form": {},
}

// blockElements delimit paragraph-level text during extraction.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "li": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"td": {}, "th": {}, "blockquote": {}, "pre": {},
}

// Extraction holds the text pulled from one page.
type Extraction struct {
	Title string
	Text  string
}

// ExtractContent extracts the page title and the main content text.
//
// Content selection tries a ranked list of structural heuristics: semantic
// containers first (main, article, role=main), then the child of body with
// the most text, then the whole body as a fallback. Paragraph-level text is
// joined with newlines.
func ExtractContent(body []byte) (*Extraction, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	title := findTitle(doc)
	pruned := prune(doc)

	content := findSemanticContainer(pruned)
	if content == nil {
		content = findDensestBlock(pruned)
	}
	if content == nil {
		content = findElement(pruned, "body")
	}
	if content == nil {
		content = pruned
	}

	return &Extraction{
		Title: title,
		Text:  collectText(content),
	}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// prune removes stripped elements in place and returns the root.
func prune(n *html.Node) *html.Node {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode {
			if _, strip := strippedElements[c.Data]; strip {
				n.RemoveChild(c)
				continue
			}
		}
		prune(c)
	}
	return n
}

// findSemanticContainer looks for main/article elements or role="main".
func findSemanticContainer(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if n.Data == "main" || n.Data == "article" {
			return n
		}
		for _, attr := range n.Attr {
			if attr.Key == "role" && attr.Val == "main" {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSemanticContainer(c); found != nil {
			return found
		}
	}
	return nil
}

// findDensestBlock returns the direct child of body carrying the most text,
// provided it carries a meaningful share of it.
func findDensestBlock(n *html.Node) *html.Node {
	body := findElement(n, "body")
	if body == nil {
		return nil
	}
	var best *html.Node
	bestLen := 0
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		l := len(collectText(c))
		if l > bestLen {
			best, bestLen = c, l
		}
	}
	if bestLen == 0 {
		return nil
	}
	return best
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// collectText walks the subtree gathering paragraph-level text.
func collectText(n *html.Node) string {
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			paragraphs = append(paragraphs, s)
		}
		current.Reset()
	}

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if current.Len() > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(text)
			}
			return
		}
		isBlock := false
		if n.Type == html.ElementNode {
			_, isBlock = blockElements[n.Data]
		}
		if isBlock {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
		if isBlock {
			flush()
		}
	}
	walker(n)
	flush()

	return strings.Join(paragraphs, "\n")
}
