package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	warmupText     = "hello"
	warmupAttempts = 5
)

// errModelLoading 表示推理服务仍在冷启动加载模型（HTTP 503）。
var errModelLoading = errors.New("sentiment model is loading")

// ModelConfig 描述托管的预训练情感模型（Hugging Face Inference API 兼容）。
type ModelConfig struct {
	Endpoint   string
	Model      string
	APIToken   string
	Timeout    time.Duration
	HTTPClient *http.Client
	// LoadRetryDelay 为模型冷启动时两次预热之间的间隔，默认 5s。
	LoadRetryDelay time.Duration
}

// ModelClassifier calls a hosted text-classification model.
type ModelClassifier struct {
	url    string
	model  string
	token  string
	client *http.Client
}

// NewModelClassifier validates the configuration and warms the model up so
// that an unavailable model is detected at construction. A cold model is
// waited for.
func NewModelClassifier(ctx context.Context, cfg ModelConfig) (*ModelClassifier, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("sentiment model name is empty")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("sentiment endpoint is empty")
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("HF_API_TOKEN is not set")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	c := &ModelClassifier{
		url:    strings.TrimRight(cfg.Endpoint, "/") + "/" + strings.Trim(cfg.Model, "/"),
		model:  cfg.Model,
		token:  cfg.APIToken,
		client: client,
	}

	if err := c.warmUp(ctx, cfg.LoadRetryDelay); err != nil {
		return nil, fmt.Errorf("load sentiment model %s: %w", cfg.Model, err)
	}
	return c, nil
}

// warmUp blocks until the hosted model answers, retrying while it reports a cold start.
func (c *ModelClassifier) warmUp(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		delay = 5 * time.Second
	}
	var err error
	for attempt := 1; attempt <= warmupAttempts; attempt++ {
		if _, err = c.Classify(ctx, warmupText); err == nil || !errors.Is(err, errModelLoading) {
			return err
		}
		if attempt == warmupAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (c *ModelClassifier) Name() string { return SourceModel }

// Model returns the configured model identifier.
func (c *ModelClassifier) Model() string { return c.model }

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the top-scoring label paired with the model's confidence.
func (c *ModelClassifier) Classify(ctx context.Context, text string) (Result, error) {
	body, _ := json.Marshal(map[string]string{"inputs": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Wait-For-Model", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusServiceUnavailable && strings.Contains(strings.ToLower(e.Error), "loading") {
			return Result{}, fmt.Errorf("%w: %s", errModelLoading, e.Error)
		}
		if e.Error != "" {
			return Result{}, fmt.Errorf("sentiment model http %d: %s", resp.StatusCode, e.Error)
		}
		return Result{}, fmt.Errorf("sentiment model http %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("decode sentiment response: %w", err)
	}

	top, err := topPrediction(raw)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Label:  MapModelLabel(top.Label),
		Score:  top.Score,
		Source: SourceModel,
	}, nil
}

// topPrediction accepts both [[{label,score}]] and [{label,score}] payloads.
func topPrediction(raw json.RawMessage) (prediction, error) {
	var nested [][]prediction
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return best(nested[0])
	}

	var flat []prediction
	if err := json.Unmarshal(raw, &flat); err != nil {
		return prediction{}, fmt.Errorf("unexpected sentiment payload: %w", err)
	}
	return best(flat)
}

func best(predictions []prediction) (prediction, error) {
	if len(predictions) == 0 {
		return prediction{}, errors.New("sentiment model returned no predictions")
	}
	top := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	if top.Label == "" {
		return prediction{}, errors.New("sentiment model returned an empty label")
	}
	return top, nil
}
