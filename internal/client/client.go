// Package client talks to a running flightprice server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixbrock/flightprice/internal/domain"
)

type Client struct {
	BaseUrl    string
	HTTPClient *http.Client
}

func New(baseUrl string) *Client {
	return &Client{
		BaseUrl:    strings.TrimRight(baseUrl, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type PredictResult struct {
	Id             string  `json:"id"`
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
}

func (c *Client) Predict(ctx context.Context, flight domain.FlightData) (*PredictResult, error) {
	body, err := json.Marshal(flight)
	if err != nil {
		return nil, err
	}
	return request[PredictResult](ctx, c.HTTPClient, reqConfig{
		Method:  http.MethodPost,
		Url:     c.BaseUrl + "/predict",
		Headers: []string{"Content-Type:application/json"},
		Body:    body,
	}, http.StatusOK)
}

// Options returns the labels behind one of the option routes, e.g.
// Options(ctx, "airlines").
func (c *Client) Options(ctx context.Context, name string) ([]string, error) {
	resp, err := request[map[string][]string](ctx, c.HTTPClient, reqConfig{
		Method: http.MethodGet,
		Url:    c.BaseUrl + "/" + url.PathEscape(name),
	}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	values, ok := (*resp)[name]
	if !ok {
		return nil, fmt.Errorf("response has no %q list", name)
	}
	return values, nil
}

func (c *Client) Recent(ctx context.Context, limit int) ([]domain.Prediction, error) {
	resp, err := request[map[string][]domain.Prediction](ctx, c.HTTPClient, reqConfig{
		Method: http.MethodGet,
		Url:    fmt.Sprintf("%s/predictions?limit=%d", c.BaseUrl, limit),
	}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return (*resp)["predictions"], nil
}
