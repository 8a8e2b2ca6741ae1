package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
	"user-console/pkg/logger"
)

// DefaultTimeout bounds one request when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 512

// Config holds the remote users API location.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to a JSON users API shaped as /users and /users/{id}.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. A nil httpClient gets a fresh one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: httpClient, logger: log}, nil
}

// userPayload is the request body for create and update.
type userPayload struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Company domain.Company `json:"company"`
}

// ListUsers fetches the whole collection.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, "list", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// CreateUser posts a new record and returns what the server echoed back.
func (c *Client) CreateUser(ctx context.Context, in domain.Input) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "create", http.MethodPost, "/users", toPayload(in), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces the record with the given id.
func (c *Client) UpdateUser(ctx context.Context, id int64, in domain.Input) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "update", http.MethodPut, userPath(id), toPayload(in), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes the record with the given id. Any 2xx counts as success.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, userPath(id), nil, nil)
}

func toPayload(in domain.Input) *userPayload {
	return &userPayload{Name: in.Name, Email: in.Email, Company: in.Company}
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

// do sends one request. Transport errors, non-2xx statuses and undecodable
// bodies all come back as *apperrors.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewNetworkError(op, 0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return apperrors.NewNetworkError(op, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set(logger.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("remote request cancelled", zap.String("op", op))
		} else {
			c.logger.Warn("remote request failed", zap.String("op", op), zap.Error(err))
		}
		return apperrors.NewNetworkError(op, 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", endpoint.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			cause = errors.New(msg)
		}
		return apperrors.NewNetworkError(op, resp.StatusCode, cause)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewNetworkError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
