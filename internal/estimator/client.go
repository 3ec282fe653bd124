// Package estimator is the HTTP client for the external load estimation service.
package estimator

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

	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// ErrUnavailable wraps every failure to obtain a usable estimate.
var ErrUnavailable = errors.New("load estimator unavailable")

const (
	estimatePath   = "/estimate-load"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

var _ model.LoadEstimator = (*Client)(nil)

// Client calls POST {baseURL}/estimate-load. It does not retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type estimateRequest struct {
	TotalTime       int    `json:"total_time"`
	NumSessions     int    `json:"num_sessions"`
	Subject         string `json:"subject"`
	Focus           int    `json:"focus"`
	Fatigue         int    `json:"fatigue"`
	LateNight       int    `json:"late_night"`
	DurationMissing int    `json:"duration_missing"`
}

func (c *Client) Estimate(ctx context.Context, input model.SessionInput) (model.LoadResult, error) {
	body, err := json.Marshal(estimateRequest{
		TotalTime:       input.TotalTime,
		NumSessions:     input.NumSessions,
		Subject:         input.Subject,
		Focus:           input.Focus,
		Fatigue:         input.Fatigue,
		LateNight:       input.LateNight.Int(),
		DurationMissing: input.DurationMissing,
	})
	if err != nil {
		return model.LoadResult{}, fmt.Errorf("failed to marshal estimate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+estimatePath, bytes.NewReader(body))
	if err != nil {
		return model.LoadResult{}, fmt.Errorf("%w: failed to create request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Estimator client: request failed",
			"error", err.Error())
		return model.LoadResult{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.LoadResult{}, fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	c.logger.Debug("Estimator client: response received",
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.LoadResult{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var result model.LoadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.LoadResult{}, fmt.Errorf("%w: invalid response body: %w", ErrUnavailable, err)
	}
	if !result.Status.Valid() {
		return model.LoadResult{}, fmt.Errorf("%w: unknown status %q", ErrUnavailable, result.Status)
	}

	return result, nil
}
