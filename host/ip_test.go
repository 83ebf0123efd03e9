package host

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcsTaskIp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Networks":[{"IPv4Addresses":["bogus","10.1.2.3"]}]}`))
	}))
	defer srv.Close()

	addr, err := ecsTaskIp(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", addr.String())

	_, err = ecsTaskIp("")
	assert.Error(t, err)
}

func TestEcsTaskIpNoAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Networks":[]}`))
	}))
	defer srv.Close()

	_, err := ecsTaskIp(srv.URL)
	assert.ErrorContains(t, err, "no IPv4 address")
}

func TestLoadIp(t *testing.T) {
	t.Setenv("IS_CLOUD", "")
	t.Setenv("IP", "192.0.2.10")
	require.NoError(t, LoadIp("production"))
	assert.Equal(t, "192.0.2.10", Ip)

	t.Setenv("IP", "nope")
	assert.Error(t, LoadIp("production"))

	require.NoError(t, LoadIp("development"))
	assert.Equal(t, "localhost", Ip)
}
