package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Page is a rendered page: its HTML and the outbound links already resolved
// to absolute URLs.
type Page struct {
	URL   string
	HTML  []byte
	Links []string
}

// Renderer fetches and renders a page. The production deployment plugs in a
// headless browser so client-side content is captured; HTTPRenderer is the
// plain-HTTP default.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*Page, error)
}

// HTTPRenderer renders pages with a plain HTTP GET and static HTML parsing.
type HTTPRenderer struct {
	client *http.Client
}

var _ Renderer = (*HTTPRenderer)(nil)

// NewHTTPRenderer creates a renderer with a sane default timeout.
func NewHTTPRenderer() *HTTPRenderer {
	return &HTTPRenderer{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Render fetches the page and extracts its outbound links.
func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	// Many sites return 403 for the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	links, err := extractLinks(pageURL, body)
	if err != nil {
		return nil, err
	}

	return &Page{URL: pageURL, HTML: body, Links: links}, nil
}

// extractLinks collects href targets resolved against the base URL.
func extractLinks(baseURL string, body []byte) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []string
	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				absolute := base.ResolveReference(ref)
				if absolute.Scheme == "http" || absolute.Scheme == "https" {
					links = append(links, absolute.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	return links, nil
}
