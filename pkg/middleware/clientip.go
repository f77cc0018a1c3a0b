package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/platinummonkey/cadmdt/pkg/contextkeys"
)

// ProxyTrust lists the networks whose forwarding headers are believed. The zero
// value trusts nobody, so the peer address is always the caller.
type ProxyTrust struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies accepts CIDRs or bare addresses, e.g. "10.0.0.0/8,127.0.0.1"
func ParseTrustedProxies(entries []string) (*ProxyTrust, error) {
	trust := &ProxyTrust{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			addr, err := netip.ParseAddr(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			addr = addr.Unmap()
			trust.prefixes = append(trust.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		trust.prefixes = append(trust.prefixes, prefix.Masked())
	}
	return trust, nil
}

func (t *ProxyTrust) trusts(addr netip.Addr) bool {
	if t == nil || !addr.IsValid() {
		return false
	}
	for _, prefix := range t.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve returns the caller address for r. Forwarding headers are only read when
// the peer is a trusted proxy; X-Forwarded-For is walked from the nearest hop and
// the first untrusted address wins.
func (t *ProxyTrust) Resolve(r *http.Request) string {
	peer := peerAddr(r.RemoteAddr)
	if !t.trusts(peer) {
		return addrString(peer, r.RemoteAddr)
	}

	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				// a garbled hop ends the chain we can vouch for
				break
			}
			hop = hop.Unmap()
			if !t.trusts(hop) {
				return hop.String()
			}
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return peer.String()
}

func peerAddr(remoteAddr string) netip.Addr {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func addrString(addr netip.Addr, fallback string) string {
	if addr.IsValid() {
		return addr.String()
	}
	return fallback
}

// ClientIPMiddleware resolves the caller address once and stores it in the context
func ClientIPMiddleware(trust *ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextkeys.ClientIPKey, trust.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address stored by ClientIPMiddleware, or the peer address
// without its port when the middleware did not run
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(contextkeys.ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	var untrusted *ProxyTrust
	return untrusted.Resolve(r)
}
