package genre

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

	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

const (
	defaultTimeout              = 5 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errEndpointRequired = errors.New("genre classifier endpoint is required")

// Client calls the pre-trained classifier that maps a volunteer profile to an activity genre.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a classifier client for endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}

	client := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type predictRequest struct {
	Interests []string `json:"interests"`
	Strengths []string `json:"strengths"`
}

// Predict returns the genre the classifier assigns to the profile.
func (c *Client) Predict(ctx context.Context, interests, strengths []string) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "genre classifier not configured")
	}
	if len(interests) == 0 && len(strengths) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "interests or strengths required")
	}

	body := predictRequest{Interests: interests, Strengths: strengths}
	if body.Interests == nil {
		body.Interests = []string{}
	}
	if body.Strengths == nil {
		body.Strengths = []string{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal genre request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build genre request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute genre request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "genre request failed")
	}

	var apiResp struct {
		Genre string `json:"genre"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode genre response")
	}
	genre := strings.TrimSpace(apiResp.Genre)
	if genre == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "classifier returned no genre")
	}
	return genre, nil
}
