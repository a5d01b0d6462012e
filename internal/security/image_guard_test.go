package security

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateURL_AllowsPublicHTTPURLs(t *testing.T) {
	g := NewImageGuard(time.Second)

	urls := []string{
		"http://example.com/camp.jpg",
		"https://images.example.com/path/to/photo.png?size=large",
		"HTTPS://EXAMPLE.COM/UPPER.JPG",
	}

	for _, u := range urls {
		if err := g.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

func TestValidateURL_RejectsDisallowedSchemes(t *testing.T) {
	g := NewImageGuard(time.Second)

	urls := []string{
		"javascript:alert(1)",
		"file:///etc/passwd",
		"ftp://example.com/a.jpg",
		"data:image/png;base64,AAAA",
	}

	for _, u := range urls {
		if err := g.ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestValidateURL_RejectsEmptyAndHostless(t *testing.T) {
	g := NewImageGuard(time.Second)

	if err := g.ValidateURL(""); err == nil {
		t.Error("empty URL should be rejected")
	}
	if err := g.ValidateURL("http://"); err == nil {
		t.Error("hostless URL should be rejected")
	}
}

// TestValidateURL_RejectsBlockedIPLiterals はプライベートIP・ループバック・
// メタデータIPのリテラルが拒否されることを検証する。
func TestValidateURL_RejectsBlockedIPLiterals(t *testing.T) {
	g := NewImageGuard(time.Second)

	tests := []struct {
		name string
		url  string
	}{
		{"loopback", "http://127.0.0.1/a.jpg"},
		{"private 10", "http://10.0.0.5/a.jpg"},
		{"private 172", "http://172.16.1.1/a.jpg"},
		{"private 192", "http://192.168.1.1/a.jpg"},
		{"metadata", "http://169.254.169.254/latest/meta-data"},
		{"current network", "http://0.0.0.0/a.jpg"},
		{"ipv6 loopback", "http://[::1]/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateURL(tt.url)
			if err == nil {
				t.Fatalf("ValidateURL(%q) = nil, want error", tt.url)
			}
			if !strings.Contains(err.Error(), "blocked IP") {
				t.Errorf("error = %v, want blocked IP error", err)
			}
		})
	}
}

// TestProbe_RejectsInvalidURLWithoutNetwork はProbeがネットワークに出る前に
// 静的検証で弾くことを検証する。
func TestProbe_RejectsInvalidURLWithoutNetwork(t *testing.T) {
	g := NewImageGuard(time.Second)

	err := g.Probe(context.Background(), "http://169.254.169.254/a.jpg")
	if err == nil {
		t.Fatal("expected error for blocked IP, got nil")
	}
}
