// Package fetch implements the transport session used to reach a source.
//
// A Session wraps an http.Client configured for one repository (proxy,
// TLS policy, client certificates, extra headers) and additionally serves
// file:// URLs from the local filesystem, so local and remote repositories
// flow through the same GET path. Sessions are cheap to create and are
// meant to be acquired around a group of related calls and closed when the
// group is done.
package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const userAgent = "flatsource/1.0"

// DefaultTimeout bounds connection setup and response headers, not the
// body read, so streaming large blobs is unaffected.
const DefaultTimeout = 30 * time.Second

// Config describes how to reach one repository.
type Config struct {
	// BaseURL is the repository root (http://, https:// or file://).
	BaseURL string

	// Proxy is an optional proxy URL applied to http and https requests.
	Proxy string

	// CACertPath optionally replaces the system roots for server
	// verification.
	CACertPath string

	// ClientCertPath and ClientKeyPath optionally enable TLS client
	// authentication. Both must be set together.
	ClientCertPath string
	ClientKeyPath  string

	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool

	// Headers are sent with every request, in addition to the user agent.
	Headers map[string]string

	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration
}

// IsLocal reports whether the repository lives on the local filesystem.
func (c Config) IsLocal() bool {
	u, err := url.Parse(c.BaseURL)
	return err == nil && u.Scheme == "file"
}

// Session issues requests against a repository. Not safe for concurrent
// use; callers hold one session per group of calls.
type Session struct {
	client  *http.Client
	headers map[string]string
}

// NewSession builds a session from the repository configuration.
func NewSession(cfg Config) (*Session, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACertPath)
		}
		tlsCfg.RootCAs = pool
	}

	if cfg.ClientCertPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		TLSClientConfig: tlsCfg,
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		ResponseHeaderTimeout: timeout,
		Proxy:                 http.ProxyFromEnvironment,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	// file:// repositories are served straight off the local filesystem
	// so callers never special-case the scheme.
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &Session{
		client:  &http.Client{Transport: transport},
		headers: cfg.Headers,
	}, nil
}

// Get issues a GET for the given URL. The response body must be closed by
// the caller. Status checking is left to CheckStatus so callers can treat
// 404 specially.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	return resp, nil
}

// Close releases any idle connections held by the session.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// CheckStatus returns an error for any non-2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("get %s: unexpected status %s", resp.Request.URL, resp.Status)
}
