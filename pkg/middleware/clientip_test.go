package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/cadmdt/pkg/observability"
)

func TestParseTrustedProxies(t *testing.T) {
	trust, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}
	if len(trust.prefixes) != 3 {
		t.Errorf("prefixes = %v, want 3 entries", trust.prefixes)
	}

	for _, bad := range []string{"10.0.0.0/33", "proxy.internal"} {
		if _, err := ParseTrustedProxies([]string{bad}); err == nil {
			t.Errorf("ParseTrustedProxies(%q) should fail", bad)
		}
	}
}

func TestProxyTrust_Resolve(t *testing.T) {
	trust, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}

	tests := []struct {
		name       string
		trust      *ProxyTrust
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "port is dropped",
			remoteAddr: "203.0.113.7:40000",
			want:       "203.0.113.7",
		},
		{
			name:       "ipv6 peer",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
		{
			name:       "untrusted peer cannot forward",
			remoteAddr: "203.0.113.7:40000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1", "X-Real-IP": "198.51.100.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy forwards the caller",
			trust:      trust,
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:       "198.51.100.1",
		},
		{
			name:       "spoofed leading hops are skipped",
			trust:      trust,
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.1, 10.9.9.9"},
			want:       "198.51.100.1",
		},
		{
			name:       "garbled hop falls back to the proxy",
			trust:      trust,
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "10.1.2.3",
		},
		{
			name:       "x-real-ip from trusted proxy",
			trust:      trust,
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := tt.trust.Resolve(req); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	trust, _ := ParseTrustedProxies([]string{"10.0.0.0/8"})
	var got string
	handler := ClientIPMiddleware(trust)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "198.51.100.1" {
		t.Errorf("ClientIP() = %q, want 198.51.100.1", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	bare.RemoteAddr = "192.0.2.1:5555"
	bare.Header.Set("X-Forwarded-For", "198.51.100.1")
	if ip := ClientIP(bare); ip != "192.0.2.1" {
		t.Errorf("ClientIP() without middleware = %q, want 192.0.2.1", ip)
	}
}

func TestRateLimitMiddleware_OneBucketPerAddress(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	anon := newFrozenLimiter(&RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Hour}, &now)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler := ClientIPMiddleware(nil)(NewRateLimitMiddleware(anon, anon, metrics, "local").Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/servers/acme/dashboard", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", 40000+i)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Errorf("allowed %d requests from one address, want 1", allowed)
	}
	if _, ok := anon.buckets["ip:203.0.113.7"]; !ok {
		t.Errorf("buckets = %v, want key ip:203.0.113.7", anon.buckets)
	}
}
