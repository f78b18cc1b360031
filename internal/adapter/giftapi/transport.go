package giftapi

import (
	"net"
	"net/http"
	"time"
)

// Default client transport settings. The gift API is a single host, so the
// pool is small.
const (
	defaultDialTimeout     = 10 * time.Second
	defaultHeaderTimeout   = 30 * time.Second
	defaultMaxIdleConns    = 4
	defaultIdleConnTimeout = 90 * time.Second
)

// NewHTTPClient returns an *http.Client for the gift API. headerTimeout
// bounds the wait for response headers only: a trending stream may keep
// the body open for as long as the advisor is generating, so the client
// carries no overall Timeout and relies on request contexts instead.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	if headerTimeout <= 0 {
		headerTimeout = defaultHeaderTimeout
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   defaultDialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: headerTimeout,
			MaxIdleConns:          defaultMaxIdleConns,
			MaxIdleConnsPerHost:   defaultMaxIdleConns,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ForceAttemptHTTP2:     true,
		},
	}
}
