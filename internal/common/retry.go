package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc 是一次可重试的操作，返回 error 表示本次失败
type RetryableFunc func() error

// Config 重试行为配置
type Config struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	retryIf      func(error) bool
}

// Option 重试配置的函数式选项
type Option func(*Config)

// WithMaxRetries sets the maximum number of retry attempts (default 3).
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry (default 1s).
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay caps the delay between retries (default 30s).
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier sets the exponential backoff multiplier (default 2.0).
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithRetryIf 只有 predicate 返回 true 的错误才会触发重试，其余错误立即返回
func WithRetryIf(predicate func(error) bool) Option {
	return func(c *Config) {
		if predicate != nil {
			c.retryIf = predicate
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		maxRetries:   3,
		initialDelay: 1 * time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
		retryIf:      func(error) bool { return true },
	}
}

// Do 以指数退避方式执行 fn，直到成功、错误不可重试、重试耗尽或 ctx 结束。
//
//	err := common.Do(ctx, fetch,
//	    common.WithMaxRetries(2),
//	    common.WithRetryIf(isTransient),
//	)
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	lastErr := fn()
	if lastErr == nil {
		return nil
	}
	if !cfg.retryIf(lastErr) {
		return lastErr
	}

	for attempt := 1; attempt <= cfg.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		default:
		}

		delay := calculateDelay(attempt, cfg.initialDelay, cfg.maxDelay, cfg.multiplier)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
		case <-timer.C:
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !cfg.retryIf(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, lastErr)
}

// calculateDelay = initialDelay * multiplier^(attempt-1)，上限 maxDelay
func calculateDelay(attempt int, initialDelay, maxDelay time.Duration, multiplier float64) time.Duration {
	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt-1))
	if time.Duration(delay) > maxDelay {
		return maxDelay
	}
	return time.Duration(delay)
}
