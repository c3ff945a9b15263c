package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthApply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"bearer", BearerAuth("my-token"), "Authorization", "Bearer my-token"},
		{"empty bearer disables auth", BearerAuth(""), "Authorization", ""},
		{"api key default header", APIKeyAuth("secret", ""), "X-API-Key", "secret"},
		{"api key custom header", APIKeyAuth("secret", "X-Axin-Key"), "X-Axin-Key", "secret"},
		{"nil auth", nil, "Authorization", ""},
		{"none", &AuthConfig{Type: AuthNone}, "Authorization", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tc.auth.apply(req)
			if got := req.Header.Get(tc.header); got != tc.want {
				t.Errorf("%s = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	BasicAuth("user", "pass").apply(req)
	u, p, ok := req.BasicAuth()
	if !ok || u != "user" || p != "pass" {
		t.Errorf("basic auth not set correctly: user=%q pass=%q ok=%v", u, p, ok)
	}
}
