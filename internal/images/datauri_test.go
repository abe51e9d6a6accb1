package images

import (
	"strings"
	"testing"
)

func TestDataURI(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		prefix string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "data:image/jpeg;base64,"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A}, "data:image/png;base64,"},
		{"svg fallback", []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"), "data:image/svg+xml;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DataURI(tt.data)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Fatalf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestDataURIEmpty(t *testing.T) {
	if got := DataURI(nil); got != "" {
		t.Fatalf("expected empty string for nil payload, got %q", got)
	}
}
