package crawl

import (
	"testing"
)

func TestFilterSameDomain(t *testing.T) {
	filter, err := NewFilter("https://example.com/docs", nil, nil)
	if err != nil {
		t.Fatalf("Failed to create filter: %v", err)
	}

	tests := []struct {
		name  string
		url   string
		admit bool
	}{
		{"seed domain page", "https://example.com/docs/intro", true},
		{"seed domain root", "https://example.com/", true},
		{"other domain", "https://other.com/docs", false},
		{"subdomain is a different host", "https://www.example.com/docs", false},
		{"non-http scheme", "mailto:team@example.com", false},
		{"image", "https://example.com/logo.png", false},
		{"stylesheet", "https://example.com/site.css", false},
		{"pdf", "https://example.com/whitepaper.pdf", false},
		{"login path", "https://example.com/login", false},
		{"nested admin path", "https://example.com/site/admin/panel", false},
		{"checkout path", "https://example.com/checkout/step-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admitted, reason := filter.Admit(tt.url)
			if admitted != tt.admit {
				t.Fatalf("Admit(%q) = %v (%s), want %v", tt.url, admitted, reason, tt.admit)
			}
		})
	}
}

func TestFilterCustomPatterns(t *testing.T) {
	filter, err := NewFilter("https://example.com/",
		[]string{"/docs/", "/blog/"},
		[]string{"/docs/legacy/"})
	if err != nil {
		t.Fatalf("Failed to create filter: %v", err)
	}

	tests := []struct {
		name  string
		url   string
		admit bool
	}{
		{"matches include", "https://example.com/docs/intro", true},
		{"matches other include", "https://example.com/blog/post", true},
		{"matches no include", "https://example.com/pricing", false},
		{"exclude beats include", "https://example.com/docs/legacy/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admitted, reason := filter.Admit(tt.url)
			if admitted != tt.admit {
				t.Fatalf("Admit(%q) = %v (%s), want %v", tt.url, admitted, reason, tt.admit)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/docs#section", "https://example.com/docs"},
		{"https://example.com/docs/", "https://example.com/docs"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/docs", "https://example.com/docs"},
	}

	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
