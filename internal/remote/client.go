// Package remote calls the church backend's tRPC procedures over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("remote api not configured")

// Error is a failure reported by the backend. Message is shown to the user as is.
type Error struct {
	Procedure  string
	Code       string
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Procedure, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

type Client struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		logger:  logger.With("component", "remote"),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

type envelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Data    struct {
			Code       string `json:"code"`
			HTTPStatus int    `json:"httpStatus"`
		} `json:"data"`
	} `json:"error"`
}

func (c *Client) query(ctx context.Context, proc string, input any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	u, err := url.Parse(c.baseURL + "/" + proc)
	if err != nil {
		return err
	}
	if input != nil {
		b, err := json.Marshal(input)
		if err != nil {
			return err
		}
		q := u.Query()
		q.Set("input", string(b))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, proc, out)
}

func (c *Client) mutate(ctx context.Context, proc string, input any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+proc, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, proc, out)
}

func (c *Client) do(req *http.Request, proc string, out any) error {
	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed", "procedure", proc, "error", err)
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return err
	}
	c.logger.Debug("remote call", "procedure", proc, "status", res.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if res.StatusCode >= 400 {
			return &Error{Procedure: proc, Message: http.StatusText(res.StatusCode), HTTPStatus: res.StatusCode}
		}
		return fmt.Errorf("decode %s response: %w", proc, err)
	}
	if env.Error != nil {
		status := env.Error.Data.HTTPStatus
		if status == 0 {
			status = res.StatusCode
		}
		return &Error{Procedure: proc, Code: env.Error.Data.Code, Message: env.Error.Message, HTTPStatus: status}
	}
	if res.StatusCode >= 400 {
		return &Error{Procedure: proc, Message: http.StatusText(res.StatusCode), HTTPStatus: res.StatusCode}
	}
	if out == nil {
		return nil
	}
	if env.Result == nil || len(env.Result.Data) == 0 {
		return fmt.Errorf("decode %s response: missing result", proc)
	}
	if err := json.Unmarshal(env.Result.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", proc, err)
	}
	return nil
}
