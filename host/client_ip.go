package host

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxies is the set of reverse proxies whose forwarding headers are believed.
type Proxies []netip.Prefix

// ParseProxies accepts CIDRs or bare addresses.
func ParseProxies(values []string) (Proxies, error) {
	var res Proxies
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %v", v, err)
			}
			res = append(res, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %v", v, err)
		}
		res = append(res, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return res, nil
}

func (p Proxies) Trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP resolves the visitor's address. Forwarding headers are only read when the
// direct peer is a trusted proxy; X-Forwarded-For is walked right to left and the first
// untrusted hop wins.
func ClientIP(r *http.Request, proxies Proxies) string {
	remote := remoteAddr(r)

	peer, err := netip.ParseAddr(remote)
	if err != nil || !proxies.Trusts(peer) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		var leftmost string
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil {
				continue
			}
			leftmost = addr.Unmap().String()
			if !proxies.Trusts(addr) {
				return leftmost
			}
		}
		if leftmost != "" {
			return leftmost
		}
	}

	if realIp := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIp != "" {
		if addr, err := netip.ParseAddr(realIp); err == nil {
			return addr.Unmap().String()
		}
	}

	return remote
}

func remoteAddr(r *http.Request) string {
	h, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		h = r.RemoteAddr
	}
	if addr, err := netip.ParseAddr(h); err == nil {
		return addr.Unmap().String()
	}
	return h
}

type ctxKey struct{}

// WithClientIP stores the resolved address so handlers don't resolve it twice.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

// ClientIPFromContext falls back to the request's peer when the security middleware
// hasn't run (tests, or routes mounted outside it).
func ClientIPFromContext(r *http.Request) string {
	if ip, ok := r.Context().Value(ctxKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteAddr(r)
}
