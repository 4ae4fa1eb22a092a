package ors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json, application/geo+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, 500, 502, 503, 504:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff, stopping when ctx is done.
// makeReq is called once per attempt so request bodies can be rebuilt.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx)

	attempt := 0
	resp, err := backoff.RetryWithData(func() (*http.Response, error) {
		attempt++
		req, err := makeReq()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("make request: %w", err))
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("after %d attempt(s): %w", attempt, err)
	}
	return resp, nil
}
