package request

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
		{"padded token", "Bearer   abc123  ", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	t.Parallel()

	t.Run("header preferred", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")
		r.Header.Set("Cookie", "aserras_session=cookie-token")
		if got := SessionToken(r, "aserras_session"); got != "header-token" {
			t.Errorf("SessionToken() = %q, want header-token", got)
		}
	})

	t.Run("cookie fallback", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Cookie", "aserras_session=cookie-token")
		if got := SessionToken(r, "aserras_session"); got != "cookie-token" {
			t.Errorf("SessionToken() = %q, want cookie-token", got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		if got := SessionToken(r, "aserras_session"); got != "" {
			t.Errorf("SessionToken() = %q, want empty", got)
		}
	})
}

func TestTokenFromContext(t *testing.T) {
	t.Parallel()
	ctx := WithToken(context.Background(), "tok-1")
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	if got := TokenFromContext(r); got != "tok-1" {
		t.Errorf("TokenFromContext() = %q, want tok-1", got)
	}
}

func TestTokenFromContext_Missing(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/", nil)
	if got := TokenFromContext(r); got != "" {
		t.Errorf("TokenFromContext() = %q, want empty", got)
	}
}
