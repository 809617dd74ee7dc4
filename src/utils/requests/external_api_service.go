package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"papertrading/src/utils"

	"github.com/sethvargo/go-retry"
)

// ExternalAPIService performs JSON requests against third party APIs, retrying
// transport errors, 429 and 5xx responses with exponential backoff.
type ExternalAPIService struct {
	client  *http.Client
	retries uint64
	backoff time.Duration
}

// NewExternalAPIService creates a client with the given per-request timeout and
// number of retries after the first attempt.
func NewExternalAPIService(timeout time.Duration, retries uint64) *ExternalAPIService {
	return &ExternalAPIService{
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		backoff: 200 * time.Millisecond,
	}
}

// WithBackoff overrides the base delay between retries.
func (s *ExternalAPIService) WithBackoff(base time.Duration) *ExternalAPIService {
	s.backoff = base
	return s
}

func (s *ExternalAPIService) makeRequest(ctx context.Context, method, endpoint, token string, params url.Values, body interface{}) (*http.Response, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// GetJSON issues a GET and decodes a 2xx body into out.
func (s *ExternalAPIService) GetJSON(ctx context.Context, endpoint, token string, params url.Values, out interface{}) error {
	b := retry.WithMaxRetries(s.retries, retry.NewExponential(s.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		resp, err := s.makeRequest(ctx, http.MethodGet, endpoint, token, params, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(utils.NewHTTPError(resp.StatusCode, resp.Status))
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return utils.NewHTTPError(resp.StatusCode, resp.Status)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}
