package restclient

import (
	"bytes"
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/pkg/apperrors"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenPath        = "/api/token/"
	tokenRefreshPath = "/api/token/refresh/"
	currentUserPath  = "/api/users/me/"
	customersPath    = "/api/customers/"

	requestIDHeader = "X-Request-ID"

	// maxErrorBody caps how much of a failed response is kept for logs.
	maxErrorBody = 4 << 10
)

// Client talks to the CRM REST backend. It never retries; each call runs once
// and either succeeds or returns an error classified by apperrors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ customer.Gateway = (*Client)(nil)

// NewClient builds a client for baseURL. A zero timeout leaves the transport
// defaults in place.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "restclient")),
	}
}

// WithHTTPClient swaps the underlying http.Client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ExchangeCredentials trades a username and password for an access/refresh
// token pair.
func (c *Client) ExchangeCredentials(ctx context.Context, username, password string) (session.Tokens, error) {
	var tokens session.Tokens
	err := c.do(ctx, "exchange credentials", http.MethodPost, tokenPath, "", credentials{username, password}, &tokens)
	if err != nil {
		return session.Tokens{}, err
	}
	if tokens.Access == "" {
		return session.Tokens{}, fmt.Errorf("exchange credentials: %w: empty access token", apperrors.ErrUnexpectedStatus)
	}
	return tokens, nil
}

// RefreshAccessToken obtains a new access token from a refresh token.
func (c *Client) RefreshAccessToken(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	var out struct {
		Access string `json:"access"`
	}
	err := c.do(ctx, "refresh token", http.MethodPost, tokenRefreshPath, "", map[string]string{"refresh": refresh}, &out)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh token: %w: empty access token", apperrors.ErrUnexpectedStatus)
	}
	return out.Access, nil
}

func (c *Client) FetchCurrentUser(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	var u *user.User
	if err := c.do(ctx, "fetch current user", http.MethodGet, currentUserPath, token, nil, &u); err != nil {
		return nil, err
	}
	if u == nil || u.ID <= 0 {
		return nil, fmt.Errorf("fetch current user: %w: response carries no user id", apperrors.ErrUnexpectedStatus)
	}
	return u, nil
}

// ListCustomers fetches every customer. The endpoint is read without a
// bearer token.
func (c *Client) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	customers := []customer.Customer{}
	if err := c.do(ctx, "list customers", http.MethodGet, customersPath, "", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) ListReferenceData(ctx context.Context, kind customer.ReferenceKind, token string) ([]customer.ReferenceItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reference kind %s", apperrors.ErrInvalidArgument, kind)
	}
	items := []customer.ReferenceItem{}
	if err := c.do(ctx, "list "+kind.String(), http.MethodGet, kind.Path(), token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateCustomer posts req. Any 2xx is success; the created record is
// returned when the backend echoes one.
func (c *Client) CreateCustomer(ctx context.Context, req *customer.CreateRequest, token string) (*customer.Customer, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil create request", apperrors.ErrInvalidArgument)
	}
	var created customer.Customer
	if err := c.do(ctx, "create customer", http.MethodPost, customersPath, token, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// TokenExpiry reads the exp claim of an access token without verifying its
// signature. ok is false when the token carries no readable expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With(
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("requestID", requestID),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Request failed before a response arrived", slog.Any("error", err))
		return apperrors.WrapTransportError(op, err)
	}
	defer resp.Body.Close()

	logger = logger.With(slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.WarnContext(ctx, "Backend returned non-success status")
		return apperrors.NewStatusError(op, resp.StatusCode, string(snippet))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WarnContext(ctx, "Failed reading response body", slog.Any("error", err))
		return apperrors.WrapTransportError(op, err)
	}
	logger.DebugContext(ctx, "Request completed")

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
