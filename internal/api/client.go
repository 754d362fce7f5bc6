// Package api is the REST client for the posts, shipment-ad and
// empty-truck-ad endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// TokenSource supplies the bearer credential. *auth.Session implements it.
type TokenSource interface {
	Token() (string, error)
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to the REST API. Safe for concurrent use.
type Client struct {
	baseURL  string
	tokens   TokenSource
	client   *http.Client
	limiter  *rate.Limiter
	backoffs []time.Duration // GET retry delays; mutations are never retried
}

// NewClient returns a client for baseURL. rps limits outgoing requests per
// second; zero or less disables limiting.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 2),
		backoffs: []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond},
	}
}

// BasePath returns the collection path for typ.
func BasePath(typ model.ItemType) (string, error) {
	switch typ {
	case model.TypeGeneral:
		return "/posts", nil
	case model.TypeShipmentAd:
		return "/shipment-ads", nil
	case model.TypeEmptyTruckAd:
		return "/empty-truck-ads", nil
	}
	return "", fmt.Errorf("%w: %q", model.ErrUnknownType, typ)
}

func itemPath(target model.Target, parts ...string) (string, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	base, err := BasePath(target.Type)
	if err != nil {
		return "", err
	}
	p := base + "/" + target.ID
	for _, part := range parts {
		p += "/" + part
	}
	return p, nil
}

type textBody struct {
	Text string `json:"text"`
}

// Fetch returns one content collection.
func (c *Client) Fetch(ctx context.Context, typ model.ItemType) (model.Collection, error) {
	path, err := BasePath(typ)
	if err != nil {
		return model.Collection{}, err
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return model.Collection{}, err
	}
	return decodeCollection(body)
}

// Detail returns a post or ad with its nested comments.
func (c *Client) Detail(ctx context.Context, target model.Target) (model.Record, error) {
	path, err := itemPath(target)
	if err != nil {
		return model.Record{}, err
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return model.Record{}, err
	}
	return decodeDetail(body)
}

// AddComment posts a comment and returns the updated parent.
func (c *Client) AddComment(ctx context.Context, target model.Target, text string) (model.Record, error) {
	path, err := itemPath(target, "comments")
	if err != nil {
		return model.Record{}, err
	}
	body, err := c.do(ctx, http.MethodPost, path, textBody{Text: text})
	if err != nil {
		return model.Record{}, err
	}
	return decodeDetail(body)
}

// AddReply posts a reply to commentID and returns the updated parent.
func (c *Client) AddReply(ctx context.Context, target model.Target, commentID, text string) (model.Record, error) {
	path, err := itemPath(target, "comments", commentID, "replies")
	if err != nil {
		return model.Record{}, err
	}
	body, err := c.do(ctx, http.MethodPost, path, textBody{Text: text})
	if err != nil {
		return model.Record{}, err
	}
	return decodeDetail(body)
}

// LikePost toggles the viewer's like on a post or ad.
func (c *Client) LikePost(ctx context.Context, target model.Target) error {
	return c.mutate(ctx, http.MethodPut, target, "like")
}

// ToggleCommentLike toggles the viewer's like on a comment.
func (c *Client) ToggleCommentLike(ctx context.Context, target model.Target, commentID string) error {
	return c.mutate(ctx, http.MethodPut, target, "comments", commentID, "like")
}

// ToggleReplyLike toggles the viewer's like on a reply.
func (c *Client) ToggleReplyLike(ctx context.Context, target model.Target, commentID, replyID string) error {
	return c.mutate(ctx, http.MethodPut, target, "comments", commentID, "replies", replyID, "like")
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, target model.Target, commentID string) error {
	return c.mutate(ctx, http.MethodDelete, target, "comments", commentID)
}

// DeleteReply deletes a reply.
func (c *Client) DeleteReply(ctx context.Context, target model.Target, commentID, replyID string) error {
	return c.mutate(ctx, http.MethodDelete, target, "comments", commentID, "replies", replyID)
}

// DeletePost deletes a post or ad.
func (c *Client) DeletePost(ctx context.Context, target model.Target) error {
	return c.mutate(ctx, http.MethodDelete, target)
}

func (c *Client) mutate(ctx context.Context, method string, target model.Target, parts ...string) error {
	path, err := itemPath(target, parts...)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, method, path, nil)
	return err
}

// get retries transient failures.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(c.backoffs); attempt++ {
		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var se *StatusError
		if !errors.As(err, &se) || !se.Temporary() || attempt == len(c.backoffs) {
			break
		}
		logging.Debug("api: retrying", "path", path, "status", se.Code, "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("api: cancelled during retry: %w", ctx.Err())
		case <-time.After(c.backoffs[attempt]):
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("api: rate limiter wait failed: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("api: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}
	logging.Debug("api: request", "method", method, "path", path, "status", resp.StatusCode, "dur", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage extracts {"message"} or {"error"} from an error body, or
// falls back to the trimmed text.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
