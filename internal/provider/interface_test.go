package provider

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "groq with key",
			cfg:  Config{Backend: BackendGroq, APIKey: "gsk_x"},
		},
		{
			name:    "groq missing key",
			cfg:     Config{Backend: BackendGroq},
			wantErr: "GROQ_API_KEY",
		},
		{
			name:    "openai missing key",
			cfg:     Config{Backend: BackendOpenAI},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name: "azure complete",
			cfg: Config{
				Backend:         BackendAzure,
				APIKey:          "k",
				BaseURL:         "https://example.openai.azure.com",
				AzureDeployment: "gpt-4o",
			},
		},
		{
			name:    "azure missing endpoint",
			cfg:     Config{Backend: BackendAzure, APIKey: "k", AzureDeployment: "d"},
			wantErr: "AZURE_OPENAI_ENDPOINT",
		},
		{
			name: "azure missing deployment",
			cfg: Config{
				Backend: BackendAzure,
				APIKey:  "k",
				BaseURL: "https://example.openai.azure.com",
			},
			wantErr: "AZURE_OPENAI_DEPLOYMENT",
		},
		{
			name: "ollama needs no credentials",
			cfg:  Config{Backend: BackendOllama},
		},
		{
			name:    "gemini missing key",
			cfg:     Config{Backend: BackendGemini},
			wantErr: "GOOGLE_API_KEY",
		},
		{
			name:    "ark missing key",
			cfg:     Config{Backend: BackendArk},
			wantErr: "ARK_API_KEY",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: Backend("bedrock")},
			wantErr: "unknown backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("want error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("want error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}
