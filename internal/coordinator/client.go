package coordinator

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

	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/domain"
)

// Client calls the quiz API over HTTP with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient swaps the transport, e.g. for httptest servers.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type wireError struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) StartAttempt(ctx context.Context, quizID string) (string, error) {
	var out struct {
		AttemptID string `json:"attemptId"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/attempts", map[string]string{"quizId": quizID}, &out); err != nil {
		return "", err
	}
	return out.AttemptID, nil
}

func (c *Client) SubmitAttempt(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error) {
	var out domain.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/v1/attempts/submit", req, &out); err != nil {
		return domain.SubmitResult{}, err
	}
	return out, nil
}

func (c *Client) GetQuiz(ctx context.Context, quizID string) (bank.PublicQuiz, error) {
	var out bank.PublicQuiz
	if err := c.do(ctx, http.MethodGet, "/v1/quizzes/"+url.PathEscape(quizID), nil, &out); err != nil {
		return bank.PublicQuiz{}, err
	}
	return out, nil
}

func (c *Client) GetAttempt(ctx context.Context, attemptID string) (domain.AttemptView, error) {
	var out domain.AttemptView
	if err := c.do(ctx, http.MethodGet, "/v1/attempts/"+url.PathEscape(attemptID), nil, &out); err != nil {
		return domain.AttemptView{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func decodeError(status int, raw []byte) error {
	var we wireError
	if err := json.Unmarshal(raw, &we); err != nil || we.Error.Status == "" {
		return fmt.Errorf("request failed with status %d", status)
	}
	if we.Error.Status == domain.CodeNotFound {
		for _, known := range []error{domain.ErrAttemptNotFound, domain.ErrQuizNotFound, domain.ErrProfileNotFound} {
			if we.Error.Message == known.Error() {
				return known
			}
		}
	}
	if kind := domain.KindForCode(we.Error.Status); kind != nil {
		return fmt.Errorf("%w: %s", kind, we.Error.Message)
	}
	return fmt.Errorf("%s: %s", we.Error.Status, we.Error.Message)
}
