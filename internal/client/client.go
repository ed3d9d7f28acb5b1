// Package client implements service.TodoService against a remote tada
// server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/service"
)

// Error is a failed call: a non-2xx response from the server.
type Error struct {
	Status  int
	Code    server.ErrorCode
	Reason  string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("todo service: HTTP %d", e.Status)
	}
	return fmt.Sprintf("todo service: %s: %s", e.Code, e.Message)
}

// Unwrap maps the response back to the service sentinel it stands for.
func (e *Error) Unwrap() error {
	switch e.Code {
	case server.ErrCodeNotFound:
		return service.ErrNotFound
	case server.ErrCodeUnauthorized:
		return service.ErrUnauthorized
	case server.ErrCodeValidation:
		switch e.Reason {
		case server.ReasonEmptyBody:
			return service.ErrEmptyBody
		case server.ReasonBodyTooLong:
			return service.ErrBodyTooLong
		case server.ReasonInvalidStatus:
			return service.ErrInvalidStatus
		}
	}
	return nil
}

type Options struct {
	BaseURL string
	Token   string
	// Timeout bounds each call; zero means no limit.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	base  string
	token string
	http  *http.Client
}

var _ service.TodoService = (*Client)(nil)

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		token: opts.Token,
		http:  hc,
	}
}

func (c *Client) ListTodos(ctx context.Context, statuses []model.Status) ([]model.Todo, error) {
	if statuses == nil {
		statuses = []model.Status{}
	}
	var out server.DataResponse[[]model.Todo]
	if err := c.call(ctx, server.PathGetAll, server.GetAllRequest{Statuses: statuses}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []model.Todo{}
	}
	return out.Data, nil
}

func (c *Client) CreateTodo(ctx context.Context, body string) (model.Todo, error) {
	var out server.DataResponse[model.Todo]
	if err := c.call(ctx, server.PathCreate, server.CreateRequest{Body: body}, &out); err != nil {
		return model.Todo{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Todo, error) {
	var out server.DataResponse[model.Todo]
	req := server.UpdateStatusRequest{TodoID: &id, Status: status}
	if err := c.call(ctx, server.PathUpdateStatus, req, &out); err != nil {
		return model.Todo{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.call(ctx, server.PathDelete, server.DeleteRequest{ID: &id}, nil)
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+server.PathHealth, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &Error{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) call(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(log.RequestIDHeader, reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Str("request_id", reqID).Msg("todo service call failed")
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", reqID).
		Msg("todo service call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}
	var body server.ErrorResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &body) == nil && body.Error.Code != "" {
		e.Code = body.Error.Code
		e.Reason = body.Error.Reason
		e.Message = body.Error.Message
	}
	return e
}

// IsTransport reports whether err is a failure to reach the server rather
// than an error response from it.
func IsTransport(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr)
}
