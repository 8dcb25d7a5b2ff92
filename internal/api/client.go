// Package api talks to the registration/attendance backend over HTTP+JSON.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andresmejia3/attend/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// ErrTransport covers network failures and bodies that are not a JSON result.
var ErrTransport = errors.New("server connection error")

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps the body read; annotated images are a few hundred KB.
const maxResponseSize = 32 * 1024 * 1024

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client posts capture payloads to the backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a client for baseURL. A timeout of 0 disables the deadline.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logger,
	}
}

// Submit sends one POST to the endpoint of mode and decodes the result.
// The backend answers failures with 4xx/5xx and a JSON body, so the status
// code is not an error by itself; only transport and decode failures are.
func (c *Client) Submit(ctx context.Context, mode types.Mode, payload types.CapturePayload, requestID string) (*types.ServerResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	url := c.baseURL + mode.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var result types.ServerResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: status %d, invalid JSON: %v", ErrTransport, resp.StatusCode, err)
	}

	c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
		"status":     resp.StatusCode,
		"success":    result.Success,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Debug("submission answered")

	return &result, nil
}
