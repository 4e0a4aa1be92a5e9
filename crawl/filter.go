package crawl

import (
	"net/url"
	"path"
	"strings"
)

// Built-in exclusions applied to every crawl regardless of custom patterns.
var (
	// excludedExtensions are binary/media resources with no extractable text.
	excludedExtensions = map[string]struct{}{
		".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {},
		".ico": {}, ".bmp": {}, ".tif": {}, ".tiff": {},
		".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".webm": {},
		".wav": {}, ".ogg": {}, ".flac": {},
		".zip": {}, ".tar": {}, ".gz": {}, ".rar": {}, ".7z": {},
		".exe": {}, ".dmg": {}, ".iso": {}, ".bin": {},
		".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
		".css": {}, ".js": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
	}

	// excludedPathFragments are auth/admin-like paths that are never useful
	// content and frequently trip rate limits or CSRF protections.
	excludedPathFragments = []string{
		"/login", "/logout", "/signin", "/signout", "/sign-in", "/sign-up",
		"/signup", "/register", "/auth/", "/oauth", "/password",
		"/admin", "/wp-admin", "/wp-login", "/cart", "/checkout", "/account",
	}
)

// Filter is the per-URL admission filter, applied both before enqueue and
// before fetch. A URL is admitted when it survives the built-in exclusion
// list, the custom exclude patterns, the custom include patterns (when any
// are configured, at least one must match), and the same-domain rule.
type Filter struct {
	seedHost        string
	includePatterns []string
	excludePatterns []string
}

// NewFilter builds a filter scoped to the seed URL's domain.
func NewFilter(seedURL string, includePatterns, excludePatterns []string) (*Filter, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, err
	}
	return &Filter{
		seedHost:        u.Host,
		includePatterns: includePatterns,
		excludePatterns: excludePatterns,
	}, nil
}

// Admit reports whether a URL may be fetched, with the rejection reason.
func (f *Filter) Admit(rawURL string) (bool, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, "unparseable url"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, "non-http scheme"
	}

	// Cross-domain links are never followed.
	if u.Host != f.seedHost {
		return false, "outside seed domain"
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if _, excluded := excludedExtensions[ext]; excluded {
		return false, "binary or media extension"
	}

	lowerPath := strings.ToLower(u.Path)
	for _, fragment := range excludedPathFragments {
		if strings.Contains(lowerPath, fragment) {
			return false, "auth or admin path"
		}
	}

	for _, pattern := range f.excludePatterns {
		if pattern != "" && strings.Contains(rawURL, pattern) {
			return false, "matches exclude pattern"
		}
	}

	if len(f.includePatterns) > 0 {
		matched := false
		for _, pattern := range f.includePatterns {
			if pattern != "" && strings.Contains(rawURL, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false, "matches no include pattern"
		}
	}

	return true, ""
}

// normalizeURL canonicalizes a URL for the visited set: fragments dropped,
// trailing slash trimmed from non-root paths.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}
