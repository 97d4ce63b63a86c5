package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"sprint-tracker/pkg/circuitbreaker"
	"sprint-tracker/pkg/config"
	"sprint-tracker/pkg/logger"
	"sprint-tracker/pkg/metrics"
)

// Client talks to the remote document store:
// <base>/<collection>[/<key>].json?auth=<token>
type Client struct {
	http      *resty.Client
	breaker   *circuitbreaker.CircuitBreaker
	authToken string
	logger    *zap.Logger
}

func NewClient(cfg config.StoreConfig, breakerCfg config.BreakerConfig, log *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// a repeated POST would create a second record
			if resp == nil || resp.Request == nil || !idempotent(resp.Request.Method) {
				return false
			}
			if err != nil {
				retryable, _ := Classify(err)
				return retryable
			}
			return resp.StatusCode() >= http.StatusInternalServerError
		})

	breaker := circuitbreaker.NewCircuitBreaker("store", circuitbreaker.Config{
		FailureThreshold:    breakerCfg.FailureThreshold,
		SuccessThreshold:    breakerCfg.SuccessThreshold,
		Timeout:             breakerCfg.OpenTimeout,
		HalfOpenMaxRequests: breakerCfg.HalfOpenMaxRequests,
		IsFailure:           countsAgainstBreaker,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.IncrementBreakerStateChange(name, to.String())
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:      httpClient,
		breaker:   breaker,
		authToken: cfg.AuthToken,
		logger:    log,
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}

// List returns every record of collection in key order; an empty collection is not an error.
func (c *Client) List(ctx context.Context, collection string) ([]Document, error) {
	body, err := c.do(ctx, http.MethodGet, collection, "", nil, nil)
	if err != nil {
		return nil, err
	}
	docs, err := decodeCollection(body)
	if err != nil {
		c.logFailure(ctx, http.MethodGet, collection, "", err, 0)
		return nil, err
	}
	return docs, nil
}

func (c *Client) Get(ctx context.Context, collection, key string) (Document, error) {
	if key == "" {
		return Document{}, fmt.Errorf("%w: empty key", ErrNotFound)
	}
	body, err := c.do(ctx, http.MethodGet, collection, key, nil, nil)
	if err != nil {
		return Document{}, err
	}
	result := gjson.ParseBytes(body)
	if len(body) == 0 || result.Type == gjson.Null {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
	}
	if !gjson.ValidBytes(body) {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, key, ErrDecode)
	}
	return Document{Key: key, Raw: body}, nil
}

// Create appends body to collection and returns the key the store generated.
func (c *Client) Create(ctx context.Context, collection string, body any) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, collection, "", body, nil)
	if err != nil {
		return "", err
	}
	name := gjson.GetBytes(resp, "name")
	if !name.Exists() || name.String() == "" {
		err := fmt.Errorf("%w: create response has no name", ErrDecode)
		c.logFailure(ctx, http.MethodPost, collection, "", err, 0)
		return "", err
	}
	return name.String(), nil
}

// Replace overwrites the record at key.
func (c *Client) Replace(ctx context.Context, collection, key string, body any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrNotFound)
	}
	_, err := c.do(ctx, http.MethodPut, collection, key, body, nil)
	return err
}

func (c *Client) Delete(ctx context.Context, collection, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrNotFound)
	}
	_, err := c.do(ctx, http.MethodDelete, collection, key, nil, nil)
	return err
}

// Ping does a shallow read of the store root.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "", "", nil, map[string]string{"shallow": "true"})
	return err
}

func (c *Client) path(collection, key string) string {
	if collection == "" {
		return "/.json"
	}
	if key == "" {
		return "/" + url.PathEscape(collection) + ".json"
	}
	return "/" + url.PathEscape(collection) + "/" + url.PathEscape(key) + ".json"
}

func (c *Client) do(ctx context.Context, method, collection, key string, body any, query map[string]string) ([]byte, error) {
	start := time.Now()
	var respBody []byte

	err := c.breaker.Execute(func() error {
		req := c.http.R().SetContext(ctx)
		if c.authToken != "" {
			req.SetQueryParam("auth", c.authToken)
		}
		if query != nil {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := req.Execute(method, c.path(collection, key))
		if err != nil {
			return fmt.Errorf("%s %s: %w: %w", method, c.path(collection, key), ErrUnavailable, err)
		}
		respBody = resp.Body()
		return statusError(resp.StatusCode(), respBody)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	duration := time.Since(start)
	_, kind := Classify(err)
	metrics.RecordStoreRequest(collectionLabel(collection), method, kind, duration)

	if err != nil {
		c.logFailure(ctx, method, collection, key, err, duration)
		return nil, err
	}

	logger.WithTrace(ctx, c.logger).Debug("store request",
		zap.String("method", method),
		zap.String("collection", collection),
		zap.String("key", key),
		zap.Duration("duration", duration),
	)
	return respBody, nil
}

func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, status, remoteMessage(body))
	default:
		return fmt.Errorf("%w: status %d: %s", ErrRemote, status, remoteMessage(body))
	}
}

func remoteMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return msg.String()
	}
	if len(body) > 120 {
		return string(body[:120])
	}
	return string(body)
}

func collectionLabel(collection string) string {
	if collection == "" {
		return "root"
	}
	return collection
}

func (c *Client) logFailure(ctx context.Context, method, collection, key string, err error, duration time.Duration) {
	_, kind := Classify(err)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("collection", collection),
		zap.String("key", key),
		zap.String("error_type", kind),
		zap.Duration("duration", duration),
		zap.Error(err),
	}
	log := logger.WithTrace(ctx, c.logger)
	if kind == "not_found" {
		log.Debug("store request: not found", fields...)
		return
	}
	log.Warn("store request failed", fields...)
}
