package registry

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// handleHTTPError reads the response body and returns a formatted error
// for non-200 HTTP responses from registry APIs.
func handleHTTPError(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
}

// StatusError is a non-200 response from a registry API.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: registry returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

// doWithRetry executes an HTTP request with exponential backoff retry on
// transport errors. HTTP status codes are not retried.
func doWithRetry(client *http.Client, req *http.Request, backoff time.Duration) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff * time.Duration(1<<(attempt-1))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(wait):
			}
		}

		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}

		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		lastErr = err
	}

	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
