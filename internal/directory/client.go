// Package directory is the client for the remote user-directory REST API.
package directory

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

	"github.com/open-sspm/userdesk/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxResponseBodySize = 1 << 20 // 1 MiB
	tracerName          = "github.com/open-sspm/userdesk/internal/directory"

	OpLogin  = "login"
	OpList   = "list_users"
	OpUpdate = "update_user"
	OpDelete = "delete_user"
)

// ErrMissingToken is returned when a login succeeds without yielding a token.
var ErrMissingToken = errors.New("directory login response did not include a token")

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	tracer trace.Tracer
}

// New creates a directory client. A zero timeout leaves requests bounded only by their context.
func New(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("directory base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("directory base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("directory base URL must be http or https, got %q", u.Scheme)
	}
	if timeout < 0 {
		timeout = 0
	}

	return &Client{
		BaseURL: base,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Login exchanges credentials for an opaque session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.do(ctx, OpLogin, http.MethodPost, "/api/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	token := strings.TrimSpace(payload.Token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// ListUsers fetches one page of users. Pages are 1-based.
func (c *Client) ListUsers(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.do(ctx, OpList, http.MethodGet, "/api/users", query, nil)
	if err != nil {
		return Page{}, err
	}
	var payload struct {
		Page       int    `json:"page"`
		PerPage    int    `json:"per_page"`
		Total      int    `json:"total"`
		TotalPages int    `json:"total_pages"`
		Data       []User `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Page{}, fmt.Errorf("decode users page %d: %w", page, err)
	}
	if payload.Page < 1 {
		payload.Page = page
	}
	if payload.TotalPages < 1 {
		payload.TotalPages = 1
	}
	users := payload.Data
	if users == nil {
		users = []User{}
	}
	return Page{
		Number:     payload.Page,
		PerPage:    payload.PerPage,
		Total:      payload.Total,
		TotalPages: payload.TotalPages,
		Users:      users,
	}, nil
}

// UpdateUser sends the draft for user id. The response body is ignored beyond its status.
func (c *Client) UpdateUser(ctx context.Context, id int, draft Draft) error {
	if id <= 0 {
		return fmt.Errorf("invalid user id %d", id)
	}
	_, err := c.do(ctx, OpUpdate, http.MethodPut, "/api/users/"+strconv.Itoa(id), nil, draft)
	return err
}

// DeleteUser removes user id.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid user id %d", id)
	}
	_, err := c.do(ctx, OpDelete, http.MethodDelete, "/api/users/"+strconv.Itoa(id), nil, nil)
	return err
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) (out []byte, err error) {
	if c.HTTP == nil {
		return nil, errors.New("directory http client is not configured")
	}
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	ctx, span := tracer.Start(ctx, "directory."+op, trace.WithSpanKind(trace.SpanKindClient))
	started := time.Now()
	defer func() {
		metrics.DirectoryRequestDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
		metrics.DirectoryRequestsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "userdesk")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", op, err)
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if readErr != nil {
		return nil, fmt.Errorf("directory %s: read response: %w", op, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(op, endpoint, resp, body)
	}
	return body, nil
}
