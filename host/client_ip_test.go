package host

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxies(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", ""})
	require.NoError(t, err)
	require.Len(t, proxies, 2)

	_, err = ParseProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		realIp string
		want   string
	}{
		{name: "direct peer", remote: "203.0.113.9:5000", want: "203.0.113.9"},
		{name: "untrusted peer ignores headers", remote: "203.0.113.9:5000", xff: "1.2.3.4", want: "203.0.113.9"},
		{name: "trusted peer uses xff", remote: "10.0.0.2:80", xff: "198.51.100.7", want: "198.51.100.7"},
		{name: "spoofed leftmost is skipped", remote: "10.0.0.2:80", xff: "6.6.6.6, 198.51.100.7, 10.0.0.3", want: "198.51.100.7"},
		{name: "all hops trusted", remote: "10.0.0.2:80", xff: "10.1.1.1, 10.0.0.3", want: "10.1.1.1"},
		{name: "x-real-ip fallback", remote: "10.0.0.2:80", realIp: "198.51.100.8", want: "198.51.100.8"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIp != "" {
				r.Header.Set("X-Real-IP", tt.realIp)
			}
			assert.Equal(t, tt.want, ClientIP(r, proxies))
		})
	}
}

func TestClientIPFromContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.1:1234"
	assert.Equal(t, "203.0.113.1", ClientIPFromContext(r))

	r = r.WithContext(WithClientIP(r.Context(), "198.51.100.2"))
	assert.Equal(t, "198.51.100.2", ClientIPFromContext(r))
}
