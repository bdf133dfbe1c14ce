package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"greenia/internal/metrics"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Version    string
	Confidence int // percent, 0-100
	Overlap    int // percent, 0-100
	MaxBytes   int64
	MaxSide    int
	Timeout    time.Duration
}

// RoboflowClient calls the Roboflow hosted detect API.
type RoboflowClient struct {
	opts       Options
	httpClient *http.Client
}

var _ Detector = (*RoboflowClient)(nil)

func NewRoboflowClient(opts Options) *RoboflowClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &RoboflowClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// SetHTTPClient replaces the transport, e.g. to trust a private CA. nil is ignored.
func (c *RoboflowClient) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// Configured reports whether the client has everything needed to call the API.
func (c *RoboflowClient) Configured() bool {
	return c != nil && c.opts.BaseURL != "" && c.opts.APIKey != "" && c.opts.Model != "" && c.opts.Version != ""
}

func (c *RoboflowClient) Detect(ctx context.Context, image []byte) (*Result, error) {
	if !c.Configured() {
		log.Error().Msg("Detection client is not configured")
		return nil, ErrNotConfigured
	}
	if c.opts.MaxBytes > 0 && int64(len(image)) > c.opts.MaxBytes {
		log.Warn().Int("size_bytes", len(image)).Int64("max_bytes", c.opts.MaxBytes).Msg("Rejected oversized image")
		return nil, ErrImageTooLarge
	}

	prepared, err := PrepareImage(image, c.opts.MaxSide)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected image before detection")
		return nil, err
	}

	start := time.Now()
	res, err := c.post(ctx, prepared)
	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DetectionRequestsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("model", c.opts.Model).Msg("Detection request failed")
		return nil, err
	}
	res.Prepared = prepared
	metrics.DetectionRequestsTotal.WithLabelValues("ok").Inc()
	log.Debug().Int("predictions", len(res.Predictions)).Dur("took", time.Since(start)).Msg("Detection completed")
	return res, nil
}

func (c *RoboflowClient) endpoint() string {
	q := url.Values{}
	q.Set("api_key", c.opts.APIKey)
	q.Set("confidence", strconv.Itoa(c.opts.Confidence))
	q.Set("overlap", strconv.Itoa(c.opts.Overlap))
	return fmt.Sprintf("%s/%s/%s?%s", c.opts.BaseURL, url.PathEscape(c.opts.Model), url.PathEscape(c.opts.Version), q.Encode())
}

func (c *RoboflowClient) post(ctx context.Context, image []byte) (*Result, error) {
	body := base64.StdEncoding.EncodeToString(image)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send detection request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read detection response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode detection response: %w", err)
	}
	if out.Predictions == nil {
		out.Predictions = []Prediction{}
	}
	return &out, nil
}
