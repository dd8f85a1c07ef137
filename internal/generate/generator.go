// Package generate drafts marketplace proposals with an OpenAI chat
// model.
package generate

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 300
	requestTimeout   = 30 * time.Second
)

// newHTTPClient builds an HTTP client honoring the optional proxy URL.
// socks5:// URLs get a SOCKS5 dialer; http(s):// URLs use the standard
// proxy transport; empty means a direct connection.
func newHTTPClient(proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: requestTimeout}
	if proxyURL == "" {
		return client, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL %q: %w", proxyURL, err)
	}

	switch u.Scheme {
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		transport := &http.Transport{}
		if ctxDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = ctxDialer.DialContext
		} else {
			transport.Dial = dialer.Dial
		}
		client.Transport = transport
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	return client, nil
}
