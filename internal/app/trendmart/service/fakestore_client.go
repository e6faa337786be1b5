package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/pkg/logger"
	"trendmart/pkg/metrics"
)

// RetryPolicy - единая политика повторов для запросов к внешнему API
// Повторяются сетевые ошибки, 5xx, 429 и 403; остальные 4xx - отказ сразу
type RetryPolicy struct {
	MaxAttempts int           // Максимум попыток на один запрос
	BackoffBase time.Duration // База экспоненциального backoff: base, 2*base, 4*base...
}

// FakeStoreClient - HTTP клиент внешнего каталога (Fake Store API)
// Отвечает только за получение данных, upsert делает SyncService
type FakeStoreClient struct {
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy
}

// NewFakeStoreClient создает новый клиент внешнего каталога
func NewFakeStoreClient(baseURL string, requestTimeout time.Duration, policy RetryPolicy) *FakeStoreClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &FakeStoreClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		policy: policy,
	}
}

// FetchCategories получает плоский список имен категорий
func (c *FakeStoreClient) FetchCategories(ctx context.Context) ([]string, error) {
	body, err := c.getWithRetry(ctx, c.baseURL+"/products/categories")
	if err != nil {
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories response: %w", err)
	}

	return categories, nil
}

// FetchProducts получает список товаров внешнего каталога
func (c *FakeStoreClient) FetchProducts(ctx context.Context) ([]entity.ExternalProduct, error) {
	body, err := c.getWithRetry(ctx, c.baseURL+"/products")
	if err != nil {
		return nil, err
	}

	var products []entity.ExternalProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products response: %w", err)
	}

	return products, nil
}

// getWithRetry выполняет GET с ограниченным количеством попыток
// и экспоненциальным backoff между ними
func (c *FakeStoreClient) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.policy.BackoffBase << (attempt - 2)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(backoff):
			}

			metrics.RecordUpstreamRetry()
		}

		body, retryable, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable {
			return nil, err
		}

		logger.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", c.policy.MaxAttempts).
			Err(err).
			Msg("Upstream request failed, will retry")
	}

	return nil, fmt.Errorf("%w: %d attempts exhausted: %v", ErrUpstreamUnavailable, c.policy.MaxAttempts, lastErr)
}

// get выполняет один GET запрос
// Второе возвращаемое значение - можно ли повторять запрос
func (c *FakeStoreClient) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Сетевые ошибки и таймауты считаем временными
		return nil, true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, string(body))
		return nil, isRetryableStatus(resp.StatusCode), err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, false, nil
}

// isRetryableStatus определяет, является ли статус временной ошибкой
// 403 от этого upstream означает антибот-фильтр, а не запрет доступа,
// поэтому тоже попадает под retry policy
func isRetryableStatus(status int) bool {
	if status >= http.StatusInternalServerError {
		return true
	}
	return status == http.StatusTooManyRequests || status == http.StatusForbidden
}
