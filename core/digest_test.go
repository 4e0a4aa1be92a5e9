package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestDigestDeterminism(t *testing.T) {
	a := DigestOf([]byte("the same content"))
	b := DigestOf([]byte("the same content"))
	if a != b {
		t.Fatalf("Expected identical digests, got %s and %s", a, b)
	}

	c := DigestOf([]byte("different content"))
	if a == c {
		t.Fatal("Expected different digests for different content")
	}
}

func TestDigestString(t *testing.T) {
	d := DigestOf([]byte("hello"))
	s := d.String()
	if len(s) != DigestSize*2 {
		t.Fatalf("Expected %d hex chars, got %d", DigestSize*2, len(s))
	}
	if s != strings.ToLower(s) {
		t.Fatal("Expected lowercase hex encoding")
	}
}

func TestDigestIsZero(t *testing.T) {
	var zero Digest
	if !zero.IsZero() {
		t.Fatal("Expected zero value to report IsZero")
	}
	if DigestOf([]byte("x")).IsZero() {
		t.Fatal("Expected computed digest to not be zero")
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	d := DigestOf([]byte("round trip"))
	parsed, err := ParseDigest(d.String())
	if err != nil {
		t.Fatalf("Failed to parse digest: %v", err)
	}
	if parsed != d {
		t.Fatalf("Expected %s, got %s", d, parsed)
	}
}

func TestParseDigestInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zzzz"},
		{"too short", "abcd"},
		{"too long", strings.Repeat("ab", DigestSize+1)},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDigest(tt.input); err == nil {
				t.Fatalf("Expected error parsing %q", tt.input)
			}
		})
	}
}

func TestDigestReaderMatchesDigestOf(t *testing.T) {
	// Larger than one read block so the streaming path gets exercised.
	data := bytes.Repeat([]byte("abcdefgh"), 16*1024)

	streamed, err := DigestReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to digest reader: %v", err)
	}
	if streamed != DigestOf(data) {
		t.Fatal("Expected streaming digest to match in-memory digest")
	}
}

func TestDigestReaderEmpty(t *testing.T) {
	d, err := DigestReader(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Failed to digest empty reader: %v", err)
	}
	if d != DigestOf(nil) {
		t.Fatal("Expected empty stream digest to match empty slice digest")
	}
}
