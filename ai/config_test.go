package ai

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
	if config.EmbeddingHost == "" || config.EmbeddingModel == "" {
		t.Fatal("Expected defaults to be populated")
	}
}

func TestNewConfigAppliesOptions(t *testing.T) {
	config := NewConfig(
		WithEmbeddingHost("http://embed.internal:8080/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
	)
	if config.EmbeddingHost != "http://embed.internal:8080/v1" {
		t.Fatalf("Unexpected host: %s", config.EmbeddingHost)
	}
	if config.EmbeddingModel != "text-embedding-3-small" {
		t.Fatalf("Unexpected model: %s", config.EmbeddingModel)
	}
}

func TestValidateRejectsBlankFields(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"empty host", Config{EmbeddingModel: "m"}},
		{"blank host", Config{EmbeddingHost: "   ", EmbeddingModel: "m"}},
		{"empty model", Config{EmbeddingHost: "http://localhost:11434/v1"}},
		{"blank model", Config{EmbeddingHost: "http://localhost:11434/v1", EmbeddingModel: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}
