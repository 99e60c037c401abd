package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/felixbrock/flightprice/internal/app"
)

type reqConfig struct {
	Method  string
	Url     string
	Headers []string
	Body    []byte
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected response status code %d", e.Code)
	}
	return fmt.Sprintf("unexpected response status code %d: %s", e.Code, e.Detail)
}

func request[T any](ctx context.Context, hc *http.Client, config reqConfig, expectedResCode int) (*T, error) {
	var body io.Reader
	if config.Body != nil {
		body = bytes.NewReader(config.Body)
	}
	req, err := http.NewRequestWithContext(ctx, config.Method, config.Url, body)

	if err != nil {
		return nil, err
	}

	for i := 0; i < len(config.Headers); i++ {
		key, value, found := strings.Cut(config.Headers[i], ":")
		if !found {
			return nil, fmt.Errorf("malformed header %q", config.Headers[i])
		}
		req.Header.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	resp, err := hc.Do(req)

	if err != nil {
		return nil, err
	}

	content, err := app.Read(resp.Body)
	if err != nil && err != app.ErrEmptyBody {
		return nil, err
	}

	if resp.StatusCode != expectedResCode {
		statusErr := &StatusError{Code: resp.StatusCode}
		var d struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(content, &d) == nil {
			statusErr.Detail = d.Detail
		}
		return nil, statusErr
	}

	var t *T
	t, err = app.ReadJSON[T](content)

	if err != nil {
		return nil, err
	}

	return t, nil
}
