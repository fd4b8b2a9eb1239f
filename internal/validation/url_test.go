package validation

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"https host", "https://api.mottu.example", ""},
		{"localhost with port", "http://localhost:5000", ""},
		{"private ip", "http://192.168.0.10:8080/", ""},
		{"with base path", "https://example.com/mottu", ""},
		{"empty", "  ", "cannot be empty"},
		{"ftp", "ftp://example.com", "invalid URL scheme"},
		{"no host", "http://", "hostname"},
		{"query", "https://example.com?x=1", "query or fragment"},
		{"metadata ip", "http://169.254.169.254", "cloud metadata"},
		{"metadata host", "http://foo.metadata.google.internal", "cloud metadata"},
		{"unspecified", "http://0.0.0.0:5000", "unspecified"},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength), "maximum length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
