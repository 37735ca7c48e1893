package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// APIError is a non-2xx answer from the leaderboard service.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("leaderboard: %s (status %d)", e.Code, e.Status)
}

// Is maps well-known codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Code == ErrUnavailable.Error()
	case ErrBadPlayer:
		return e.Code == ErrBadPlayer.Error()
	case ErrBadScore:
		return e.Code == ErrBadScore.Error()
	}
	return false
}

// Client talks to a leaderboard service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Top fetches the current board.
func (c *Client) Top(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/leaderboard", nil)
	if err != nil {
		return nil, err
	}
	var out topResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Items), nil
}

// Submit posts a final score.
func (c *Client) Submit(ctx context.Context, player string, score int64) (SubmitResult, error) {
	body, err := json.Marshal(map[string]any{"player": player, "score": score})
	if err != nil {
		return SubmitResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit", bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out SubmitResult
	if err := c.do(req, &out); err != nil {
		return SubmitResult{}, err
	}
	out.Leaderboard = nonNil(out.Leaderboard)
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("leaderboard request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode leaderboard response: %w", err)
	}
	return nil
}

// Watch streams board updates until ctx ends or the connection drops. The
// first update arrives right after connecting.
func (c *Client) Watch(ctx context.Context, fn func([]Entry)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var update Update
		if err := conn.ReadJSON(&update); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read update: %w", err)
		}
		if update.Type == UpdateTypeLeaderboard {
			fn(nonNil(update.Items))
		}
	}
}

// Local serves a Store in process with the same calls as Client.
type Local struct {
	Store Store
	Size  int
}

func (l Local) size() int {
	if l.Size < 1 {
		return DefaultSize
	}
	return l.Size
}

// Top returns the current board.
func (l Local) Top(ctx context.Context) ([]Entry, error) {
	if l.Store == nil {
		return nil, ErrUnavailable
	}
	items, err := l.Store.Top(ctx, l.size())
	return nonNil(items), err
}

// Submit records a score.
func (l Local) Submit(ctx context.Context, player string, score int64) (SubmitResult, error) {
	if l.Store == nil {
		return SubmitResult{}, ErrUnavailable
	}
	res, err := l.Store.Submit(ctx, player, score, l.size())
	if err != nil && !errors.Is(err, ErrBadPlayer) {
		return SubmitResult{}, fmt.Errorf("submit score: %w", err)
	}
	return res, err
}
