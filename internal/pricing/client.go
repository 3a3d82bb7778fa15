package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const (
	DefaultCoinsURL  = "https://coins.llama.fi"
	DefaultYieldsURL = "https://yields.llama.fi"
	DefaultEnsoURL   = "https://api.enso.finance/api/v1"

	defaultChainID   = 8453
	defaultChainName = "base"
	defaultTimeout   = 15 * time.Second
	defaultAttempts  = 3
	defaultDelay     = 500 * time.Millisecond
)

// Config holds pricing endpoints and retry settings.
type Config struct {
	CoinsURL      string
	YieldsURL     string
	EnsoURL       string
	EnsoAPIKey    string
	ChainID       uint64
	ChainName     string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
}

// Client reads token prices and pool yields from DefiLlama and Enso.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

// NewClient fills unset config fields with defaults.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.CoinsURL == "" {
		cfg.CoinsURL = DefaultCoinsURL
	}
	if cfg.YieldsURL == "" {
		cfg.YieldsURL = DefaultYieldsURL
	}
	if cfg.EnsoURL == "" {
		cfg.EnsoURL = DefaultEnsoURL
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = defaultChainID
	}
	if cfg.ChainName == "" {
		cfg.ChainName = defaultChainName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = defaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultDelay
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.CoinsURL = strings.TrimRight(cfg.CoinsURL, "/")
	cfg.YieldsURL = strings.TrimRight(cfg.YieldsURL, "/")
	cfg.EnsoURL = strings.TrimRight(cfg.EnsoURL, "/")
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// getJSON fetches url and decodes the body into out, retrying transport
// failures, 429 and 5xx responses.
func (c *Client) getJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	body, err := retry.DoWithData(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, &StatusError{URL: url, Code: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying upstream request", zap.String("url", url), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
