// Package client is a Go client for the Noona Vault HTTP API.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
	"github.com/The-Noona-Project/Noona-Vault/internal/tokens"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	signer     *tokens.Signer
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAuthToken sends a fixed bearer token with every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithSigner mints a fresh bearer token for every request.
// It takes precedence over WithAuthToken.
func WithSigner(signer *tokens.Signer) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

func New(addr string, opts ...Option) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) bearer() (string, error) {
	if c.signer != nil {
		token, err := c.signer.Sign("", nil)
		if err != nil {
			return "", fmt.Errorf("signing request token: %w", err)
		}
		return token, nil
	}
	return c.authToken, nil
}

type urlBuilder struct {
	base   string
	path   string
	params map[string]string
	query  url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{
		base:   c.baseURL,
		params: make(map[string]string),
		query:  url.Values{},
	}
}

func (u *urlBuilder) setPath(path string) *urlBuilder {
	u.path = path
	return u
}

func (u *urlBuilder) setPathParam(name, value string) *urlBuilder {
	u.params[name] = value
	return u
}

func (u *urlBuilder) addQueryParam(name string, value any) *urlBuilder {
	u.query.Add(name, fmt.Sprint(value))
	return u
}

func (u *urlBuilder) build() string {
	path := u.path
	for name, value := range u.params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	if len(u.query) > 0 {
		return u.base + path + "?" + u.query.Encode()
	}
	return u.base + path
}
