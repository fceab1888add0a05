package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
)

// DefaultTimeout bounds a single call to the auth API.
const DefaultTimeout = 15 * time.Second

// Client handles all authentication-related calls to the auth API.
type Client struct {
	host      string
	http      *resty.Client
	clock     clockwork.Clock
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithHTTPClient replaces the underlying *http.Client. Any timeout set on it is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithClock sets the clock used for the X-Request-Timestamp header.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a new Client against the API rooted at host.
func New(host string, opts ...Option) *Client {
	c := &Client{
		host:  strings.TrimRight(host, "/"),
		http:  resty.New().SetTimeout(DefaultTimeout),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the base URL requests are sent to.
func (c *Client) Host() string {
	return c.host
}

func (c *Client) buildHeaders(token string) map[string]string {
	headers := map[string]string{
		"Accept":              "application/json",
		"Content-Type":        "application/json",
		"X-Request-Nonce":     uuid.NewString(),
		"X-Request-Timestamp": fmt.Sprintf("%d", c.clock.Now().Unix()),
	}
	if c.userAgent != "" {
		headers["User-Agent"] = c.userAgent
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

// APIError represents an error given by the auth API.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"-"`
	Kind       string `json:"error"`
}

// Error complies with the error interface. It is the server-supplied message
// so callers can show it to the user as-is.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != "" {
		return e.Kind
	}
	return http.StatusText(e.StatusCode)
}

// UnmarshalJSON accepts "message" as either a string or a list of strings.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw struct {
		StatusCode int             `json:"statusCode"`
		Message    json.RawMessage `json:"message"`
		Kind       string          `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.StatusCode = raw.StatusCode
	e.Kind = raw.Kind
	if len(raw.Message) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Message, &single); err == nil {
		e.Message = single
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw.Message, &list); err != nil {
		return err
	}
	e.Message = strings.Join(list, "; ")
	return nil
}

// ConvertError formats an error response from the auth API. The returned error is always an *APIError.
func ConvertError(status int, body []byte) *APIError {
	ae := &APIError{}
	if err := json.Unmarshal(body, ae); err != nil {
		ae = &APIError{}
	}
	if ae.StatusCode == 0 {
		ae.StatusCode = status
	}
	return ae
}

func (c *Client) makeRequest(ctx context.Context, method, path, token string, body interface{}) (*Session, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeaders(c.buildHeaders(token))
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.host+path)
	if err != nil {
		return nil, oops.Code("AUTH_TRANSPORT").
			With("method", method).
			With("path", path).
			Wrap(err)
	}
	if !resp.IsSuccess() {
		return nil, ConvertError(resp.StatusCode(), resp.Body())
	}

	s := &Session{}
	if err := json.Unmarshal(resp.Body(), s); err != nil {
		return nil, oops.Code("AUTH_DECODE").With("path", path).Wrap(err)
	}
	if err := s.validate(); err != nil {
		return nil, oops.Code("AUTH_DECODE").With("path", path).Wrap(err)
	}
	return s, nil
}
