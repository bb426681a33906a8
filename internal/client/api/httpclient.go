package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/common"
)

const defaultTimeout = 10 * time.Second

// HTTPClient is the concrete Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the given base URL ("http://host:port").
// timeout <= 0 selects the default per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type cartPayload struct {
	Items []models.CartLine `json:"items"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authCall(ctx, "/auth/login", body, "")
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*models.Credential, error) {
	return c.authCall(ctx, "/auth/register", req, "")
}

func (c *HTTPClient) Refresh(ctx context.Context, token string) (*models.Credential, error) {
	return c.authCall(ctx, "/auth/refresh", struct{}{}, token)
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, token)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return c.mapStatus(resp)
	}
	return nil
}

func (c *HTTPClient) GetCart(ctx context.Context, token string) (models.Cart, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cart", nil, token)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return nil, c.mapStatus(resp)
	}

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding cart response: %w", err)
	}
	return models.Cart(payload.Items), nil
}

func (c *HTTPClient) PutCart(ctx context.Context, token string, cart models.Cart) error {
	resp, err := c.do(ctx, http.MethodPut, "/cart", cartPayload{Items: cart}, token)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return c.mapStatus(resp)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// authCall posts body to path and decodes a {token, user} response.
func (c *HTTPClient) authCall(ctx context.Context, path string, body any, token string) (*models.Credential, error) {
	resp, err := c.do(ctx, http.MethodPost, path, body, token)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return nil, c.mapStatus(resp)
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decoding auth response: %w", err)
	}
	if ar.Token == "" {
		return nil, fmt.Errorf("%w: empty token in auth response", common.ErrUnavailable)
	}
	return &models.Credential{Token: ar.Token, User: ar.User}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return resp, nil
}

// mapStatus converts a non-2xx response into a sentinel-wrapped error.
// 401/403 is the sole trigger for the caller's refresh path; other 4xx on
// auth endpoints carry the server's message for display.
func (c *HTTPClient) mapStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Message != "" {
			return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, er.Message)
		}
		return common.ErrInvalidCredentials
	default:
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
