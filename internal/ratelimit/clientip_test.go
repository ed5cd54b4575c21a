package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRequest(remoteAddr, xff string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set(HeaderXForwardedFor, xff)
	}
	return req
}

func TestExtractNoTrustedProxies(t *testing.T) {
	e := NewClientIPExtractor(nil)

	// Without trusted proxies the forwarded header must be ignored.
	req := newRequest("1.2.3.4:5678", "9.9.9.9")
	assert.Equal(t, "1.2.3.4", e.Extract(req))
}

func TestExtractTrustedProxyUsesXFF(t *testing.T) {
	e := NewClientIPExtractor([]string{"10.0.0.0/8"})

	req := newRequest("10.0.0.1:443", "1.2.3.4")
	assert.Equal(t, "1.2.3.4", e.Extract(req))
}

func TestExtractWalksRightToLeft(t *testing.T) {
	e := NewClientIPExtractor([]string{"10.0.0.0/8"})

	// The rightmost non-trusted hop wins; the client-supplied left
	// entries cannot spoof the result.
	req := newRequest("10.0.0.1:443", "6.6.6.6, 1.2.3.4, 10.0.0.2")
	assert.Equal(t, "1.2.3.4", e.Extract(req))
}

func TestExtractUntrustedRemoteIgnoresXFF(t *testing.T) {
	e := NewClientIPExtractor([]string{"10.0.0.0/8"})

	req := newRequest("8.8.8.8:1234", "1.2.3.4")
	assert.Equal(t, "8.8.8.8", e.Extract(req))
}

func TestExtractAllTrustedFallsBack(t *testing.T) {
	e := NewClientIPExtractor([]string{"10.0.0.0/8"})

	req := newRequest("10.0.0.1:443", "10.0.0.3, 10.0.0.2")
	assert.Equal(t, "10.0.0.1", e.Extract(req))
}

func TestExtractSingleIPTrustedProxy(t *testing.T) {
	e := NewClientIPExtractor([]string{"192.168.1.1"})

	req := newRequest("192.168.1.1:9090", "1.2.3.4")
	assert.Equal(t, "1.2.3.4", e.Extract(req))
}

func TestExtractIPv6(t *testing.T) {
	e := NewClientIPExtractor(nil)

	req := newRequest("[::1]:8080", "")
	assert.Equal(t, "::1", e.Extract(req))
}

func TestExtractInvalidCIDRSkipped(t *testing.T) {
	e := NewClientIPExtractor([]string{"not-a-cidr"})

	req := newRequest("1.2.3.4:5678", "9.9.9.9")
	assert.Equal(t, "1.2.3.4", e.Extract(req))
}
