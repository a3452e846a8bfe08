// Package client talks to the todo REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/models"
)

const DefaultBaseURL = "http://localhost:5000/api"

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"dueDate"`
}

// UpdateInput carries the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

type todoEnvelope struct {
	Message string       `json:"message"`
	Todo    *models.Task `json:"todo"`
}

type todosEnvelope struct {
	Message string         `json:"message"`
	Todos   []*models.Task `json:"todos"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) List(ctx context.Context) ([]*models.Task, error) {
	var env todosEnvelope
	err := c.do(ctx, http.MethodGet, "/todos", nil, &env)
	if err != nil {
		return nil, err
	}
	if env.Todos == nil {
		env.Todos = []*models.Task{}
	}
	return env.Todos, nil
}

func (c *Client) Create(ctx context.Context, input CreateInput) (*models.Task, error) {
	var env todoEnvelope
	err := c.do(ctx, http.MethodPost, "/todos", input, &env)
	if err != nil {
		return nil, err
	}
	return env.Todo, nil
}

func (c *Client) Update(ctx context.Context, id string, input UpdateInput) (*models.Task, error) {
	var env todoEnvelope
	err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), input, &env)
	if err != nil {
		return nil, err
	}
	return env.Todo, nil
}

func (c *Client) SetStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	s := string(status)
	return c.Update(ctx, id, UpdateInput{Status: &s})
}

func (c *Client) Delete(ctx context.Context, id string) error {
	var env messageEnvelope
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, &env)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("request failed")
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request completed")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		apiErr.Message = env.Message
		apiErr.Detail = env.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
