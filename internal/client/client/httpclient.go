package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	store   credstore.Store
	logger  logging.Logger
	limiter *rate.Limiter

	mu      sync.RWMutex
	handler UnauthorizedHandler
}

var _ Client = (*HTTPClient)(nil)

// Option customizes HTTPClient construction.
type Option func(*options)

type options struct {
	timeout   time.Duration
	rps       float64
	logger    logging.Logger
	transport http.RoundTripper
}

// WithTimeout sets the per-request deadline. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit throttles outbound requests to rps per second; 0 disables it.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBaseTransport replaces the pooled cleanhttp transport that sits below
// the credential interceptor.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil {
			o.transport = rt
		}
	}
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api/v1") reading credentials from store.
func NewHTTPClient(baseURL string, store credstore.Store, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	o := &options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = cleanhttp.DefaultPooledTransport()
	}

	c := &HTTPClient{baseURL: u, store: store, logger: o.logger}
	if o.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}
	c.http = &http.Client{
		Transport: &authTransport{next: o.transport, client: c},
		Timeout:   o.timeout,
	}
	return c, nil
}

func (c *HTTPClient) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

func (c *HTTPClient) unauthorizedHandler() UnauthorizedHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handler
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	if err := c.doJSON(withoutTeardown(ctx), http.MethodPost, "/auth/login", req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access_token in login response", ErrMalformedResponse)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", req, nil)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) error {
	req := struct {
		Token string `json:"token"`
	}{Token: token}
	return c.doJSON(ctx, http.MethodPost, "/auth/verify-email", req, nil)
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	req := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.doJSON(ctx, http.MethodPost, "/auth/password-reset/request", req, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}{Token: token, NewPassword: newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/password-reset", req, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, "", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Identity, error) {
	var id models.Identity
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", upd, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *HTTPClient) UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read picture: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var resp struct {
		ProfilePicture string `json:"profile_picture"`
		URL            string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/me/profile-picture", &body, mw.FormDataContentType(), &resp); err != nil {
		return "", err
	}

	switch {
	case resp.ProfilePicture != "":
		return resp.ProfilePicture, nil
	case resp.URL != "":
		return resp.URL, nil
	default:
		return "", fmt.Errorf("%w: no picture reference in upload response", ErrMalformedResponse)
	}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx answers become *APIError; failures to complete the call become
// ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrCredentialStore) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
