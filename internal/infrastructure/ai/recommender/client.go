// Package recommender is the HTTP client for the external meal-plan
// recommendation service
package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/infrastructure/config"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

const (
	serviceName = "recommender"

	planPath   = "/ai"
	updatePath = "/ai_update"

	// maxErrorBody caps how much of a failed reply is logged
	maxErrorBody = 512
)

// Client implements outbound.RecommendationClient over HTTP. Calls are never
// retried.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	metrics   outbound.MetricsRecorder
	logger    *zap.Logger
}

// NewClient creates a recommender client from configuration
func NewClient(cfg config.AIConfig, metrics outbound.MetricsRecorder, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}

	logger.Info("Recommender client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		metrics: metrics,
		logger:  logger.Named("recommender-client"),
	}
}

// RecommendPlan asks for a fresh plan
func (c *Client) RecommendPlan(ctx context.Context, req outbound.PlanRequest) (json.RawMessage, error) {
	return c.post(ctx, planPath, req)
}

// UpdatePlan asks the recommender to reconcile a user-edited plan
func (c *Client) UpdatePlan(ctx context.Context, req outbound.UpdatePlanRequest) (json.RawMessage, error) {
	return c.post(ctx, updatePath, req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (reply json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecommenderCall(path, err, time.Since(start))
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, "Failed to send request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, "Failed to send request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Recommender request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.NewExternalServiceError(serviceName, "Failed to send request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, "Failed to parse response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Recommender returned an error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(raw, maxErrorBody)))
		return nil, errors.NewExternalServiceError(serviceName, "Failed to send request",
			fmt.Errorf("unexpected status %d", resp.StatusCode)).
			WithMetadata("status", resp.StatusCode)
	}

	if !json.Valid(raw) {
		c.logger.Warn("Recommender returned invalid JSON", zap.String("path", path))
		return nil, errors.NewExternalServiceError(serviceName, "Failed to parse response",
			fmt.Errorf("invalid JSON body"))
	}

	c.logger.Debug("Recommender call completed",
		zap.String("path", path),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)))

	return json.RawMessage(raw), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ outbound.RecommendationClient = (*Client)(nil)
