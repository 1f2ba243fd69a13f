package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrMissingAPIURL   = errors.New("auth api url not set")
	ErrMissingAnonKey  = errors.New("auth anon key not set")
	ErrInvalidAPIURL   = errors.New("auth api url invalid")
	ErrUnexpectedReply = errors.New("unexpected auth service reply")
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	LastSignInAt string `json:"last_sign_in_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Client talks to the GoTrue compatible auth API of the hosted backend.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient validates the settings without touching the network.
// A nil httpClient gets a traced default one.
func NewClient(apiURL, anonKey string, httpClient *http.Client) (*Client, error) {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	anonKey = strings.TrimSpace(anonKey)
	if apiURL == "" {
		return nil, ErrMissingAPIURL
	}
	if anonKey == "" {
		return nil, ErrMissingAnonKey
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAPIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAPIURL, apiURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}

	return &Client{
		baseURL:    apiURL,
		anonKey:    anonKey,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// GetUser returns the user behind the access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) pkg.Result[User] {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.client.getUser")
	defer span.End()

	claims, err := ParseClaims(accessToken)
	if err != nil {
		return pkg.Fail[User](err)
	}
	if claims.Expired(c.now()) {
		return pkg.Fail[User](ErrTokenExpired)
	}

	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken)
	if err != nil {
		span.RecordError(err)
		return pkg.Fail[User](err)
	}
	defer closeBody(resp)

	if err := checkStatus(resp); err != nil {
		return pkg.Fail[User](err)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return pkg.Fail[User](fmt.Errorf("%w: decode user: %s", ErrUnexpectedReply, err))
	}
	if user.ID == "" {
		return pkg.Fail[User](fmt.Errorf("%w: user without id", ErrUnexpectedReply))
	}

	return pkg.Ok(user)
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) pkg.Result[struct{}] {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.client.signOut")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken)
	if err != nil {
		span.RecordError(err)
		return pkg.Fail[struct{}](err)
	}
	defer closeBody(resp)

	if err := checkStatus(resp); err != nil {
		return pkg.Fail[struct{}](err)
	}
	return pkg.Ok(struct{}{})
}

func (c *Client) do(ctx context.Context, method, path, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service %s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidToken
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpectedReply, resp.StatusCode)
	}
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
