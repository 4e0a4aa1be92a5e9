package crawl

import (
	"strings"
	"testing"
)

func TestExtractContentPrefersSemanticContainer(t *testing.T) {
	page := `<html><head><title>Docs: Intro</title></head><body>
		<nav><a href="/">Home</a><a href="/docs">Docs</a></nav>
		<main>
			<h1>Introduction</h1>
			<p>This is the main content of the page.</p>
			<p>It spans several paragraphs.</p>
		</main>
		<footer>Copyright notice</footer>
	</body></html>`

	extraction, err := ExtractContent([]byte(page))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	if extraction.Title != "Docs: Intro" {
		t.Fatalf("Expected title from head, got %q", extraction.Title)
	}
	if !strings.Contains(extraction.Text, "main content of the page") {
		t.Fatalf("Expected main content, got %q", extraction.Text)
	}
	if strings.Contains(extraction.Text, "Home") || strings.Contains(extraction.Text, "Copyright") {
		t.Fatalf("Expected nav and footer to be stripped, got %q", extraction.Text)
	}
}

func TestExtractContentStripsScripts(t *testing.T) {
	page := `<html><body><article>
		<script>var tracking = true;</script>
		<style>.hidden { display: none }</style>
		<p>Visible text only.</p>
	</article></body></html>`

	extraction, err := ExtractContent([]byte(page))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	if strings.Contains(extraction.Text, "tracking") || strings.Contains(extraction.Text, "display") {
		t.Fatalf("Expected script and style content to be stripped, got %q", extraction.Text)
	}
	if extraction.Text != "Visible text only." {
		t.Fatalf("Expected clean paragraph text, got %q", extraction.Text)
	}
}

func TestExtractContentFallsBackToDensestBlock(t *testing.T) {
	// No main/article: the body child with the most text wins.
	page := `<html><body>
		<div class="sidebar"><p>Short menu</p></div>
		<div class="content">
			<p>A much longer run of body text that carries the actual substance
			of the page and should be selected as the densest block.</p>
		</div>
	</body></html>`

	extraction, err := ExtractContent([]byte(page))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	if !strings.Contains(extraction.Text, "actual substance") {
		t.Fatalf("Expected densest block content, got %q", extraction.Text)
	}
	if strings.Contains(extraction.Text, "Short menu") {
		t.Fatalf("Expected sidebar to lose to the content block, got %q", extraction.Text)
	}
}

func TestExtractContentParagraphJoining(t *testing.T) {
	page := `<html><body><main>
		<h1>Heading</h1>
		<p>First    paragraph with
		collapsed   whitespace.</p>
		<p>Second paragraph.</p>
	</main></body></html>`

	extraction, err := ExtractContent([]byte(page))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	lines := strings.Split(extraction.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 paragraph lines, got %d: %q", len(lines), extraction.Text)
	}
	if lines[1] != "First paragraph with collapsed whitespace." {
		t.Fatalf("Expected whitespace collapse, got %q", lines[1])
	}
}

func TestExtractContentEmptyPage(t *testing.T) {
	extraction, err := ExtractContent([]byte("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	if extraction.Text != "" {
		t.Fatalf("Expected empty text, got %q", extraction.Text)
	}
	if extraction.Title != "" {
		t.Fatalf("Expected empty title, got %q", extraction.Title)
	}
}

func TestExtractLinksResolvesRelative(t *testing.T) {
	page := `<html><body>
		<a href="/docs/intro">Intro</a>
		<a href="guide">Guide</a>
		<a href="https://other.com/page">External</a>
		<a href="mailto:team@example.com">Mail</a>
		<a href="">Empty</a>
	</body></html>`

	links, err := extractLinks("https://example.com/docs/", []byte(page))
	if err != nil {
		t.Fatalf("Failed to extract links: %v", err)
	}

	want := []string{
		"https://example.com/docs/intro",
		"https://example.com/docs/guide",
		"https://other.com/page",
	}
	if len(links) != len(want) {
		t.Fatalf("Expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("Link %d = %q, want %q", i, links[i], want[i])
		}
	}
}
