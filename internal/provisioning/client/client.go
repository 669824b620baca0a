// Package client calls the privileged user-provisioning backend over HTTP.
package client

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

	"github.com/nexusverde/console/internal/config"
	"github.com/nexusverde/console/internal/provisioning/domain"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client is an HTTP implementation of domain.UserProvisioner. Calls are not
// retried: the backend may have partially created accounts and a blind retry
// could duplicate them.
type Client struct {
	httpClient *http.Client
	endpoint   string
	authToken  string
	log        *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Provisioner.Endpoint)
	if endpoint == "" {
		return nil, errors.New("provisioner endpoint is not configured")
	}

	timeout := time.Duration(cfg.Provisioner.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		authToken:  cfg.Provisioner.AuthToken,
		log:        log.Named("provisioning.client"),
	}, nil
}

func (c *Client) Provision(ctx context.Context, req domain.Request) (*domain.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode provision request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build provision request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call provisioning backend: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read provisioning response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.BackendError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(payload),
		}
	}

	var result domain.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode provisioning response: %w", err)
	}
	if result.CompanyID == "" {
		result.CompanyID = req.CompanyID
	}
	return &result, nil
}

func extractErrorMessage(payload []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		if msg := strings.TrimSpace(wrapped.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(wrapped.Message); msg != "" {
			return msg
		}
	}
	return ""
}
