// Package client talks to the organization's donation REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/eventbus"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

type Config struct {
	BaseURL         string
	APIToken        string
	CreateOrderPath string
	ConfirmPath     string
	StatusPath      string
	HTTPTimeout     time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	bus    *eventbus.Bus
	logger logrus.FieldLogger
}

// New builds a client. Failed requests are published on bus when it is not nil.
func New(cfg Config, bus *eventbus.Bus) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.CreateOrderPath == "" {
		cfg.CreateOrderPath = "/donations/orders"
	}
	if cfg.ConfirmPath == "" {
		cfg.ConfirmPath = "/donations/confirm"
	}
	if cfg.StatusPath == "" {
		cfg.StatusPath = "/donations/orders/%s/status"
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		bus:    bus,
		logger: factory.NewModuleLogger("api-client"),
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	raw, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeData(raw, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := newTransportError(method, path, err)
		if !errors.Is(err, context.Canceled) {
			c.publish(apiErr)
		}
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := newTransportError(method, path, err)
		c.publish(apiErr)
		return nil, apiErr
	}

	if resp.StatusCode >= 400 {
		apiErr := newStatusError(method, path, resp.StatusCode, errorMessage(raw))
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("api_request_failed")
		c.publish(apiErr)
		return nil, apiErr
	}

	return raw, nil
}

func (c *Client) publish(apiErr *APIError) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(eventbus.HTTPError{
		Status:  apiErr.StatusCode,
		Path:    apiErr.Path,
		Method:  apiErr.Method,
		Message: apiErr.Message,
	})
}

func decodeData(raw []byte, out interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var envelope types.Envelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		data := bytes.TrimSpace(envelope.Data)
		if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			return json.Unmarshal(data, out)
		}
	}
	return json.Unmarshal(raw, out)
}

func errorMessage(raw []byte) string {
	var envelope types.Envelope
	if json.Unmarshal(raw, &envelope) == nil {
		if s := strings.TrimSpace(envelope.Message); s != "" {
			return s
		}
		if s := strings.TrimSpace(envelope.Error); s != "" {
			return s
		}
	}
	return truncate(strings.TrimSpace(string(raw)), 512)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
