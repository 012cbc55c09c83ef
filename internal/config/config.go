// Package config 在进程启动时构建一次只读配置，之后各组件通过构造函数拿到它
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github-readme-generator/internal/common"
)

const (
	DefaultGitHubAPIURL         = "https://api.github.com/"
	DefaultRequestTimeout       = 15 * time.Second
	DefaultWebhookTimeout       = 10 * time.Second
	DefaultTraversalConcurrency = 6
	DefaultListenAddress        = "127.0.0.1:8080"
	DefaultLogLevel             = "info"

	// 深度遍历并发上限的取值范围
	MinTraversalConcurrency = 1
	MaxTraversalConcurrency = 8
)

// Config 应用配置
type Config struct {
	GitHubToken          string        `mapstructure:"github_token"`
	GitHubAPIURL         string        `mapstructure:"github_api_url"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	TraversalConcurrency int           `mapstructure:"traversal_concurrency"`
	WebhookTimeout       time.Duration `mapstructure:"webhook_timeout"`
	DatabaseDSN          string        `mapstructure:"database_dsn"`
	ListenAddress        string        `mapstructure:"listen_address"`
	LogLevel             string        `mapstructure:"log_level"`
}

// LoadOptions 控制配置来源
type LoadOptions struct {
	// ExplicitFilePath 为空时只读取环境变量
	ExplicitFilePath string
}

var keys = []string{
	"github_token",
	"github_api_url",
	"request_timeout",
	"traversal_concurrency",
	"webhook_timeout",
	"database_dsn",
	"listen_address",
	"log_level",
}

// Load 按 默认值 < 配置文件 < 环境变量 的优先级合并配置
func Load(options LoadOptions) (*Config, error) {
	reader := viper.New()
	reader.SetDefault("github_api_url", DefaultGitHubAPIURL)
	reader.SetDefault("request_timeout", DefaultRequestTimeout)
	reader.SetDefault("traversal_concurrency", DefaultTraversalConcurrency)
	reader.SetDefault("webhook_timeout", DefaultWebhookTimeout)
	reader.SetDefault("listen_address", DefaultListenAddress)
	reader.SetDefault("log_level", DefaultLogLevel)

	for _, key := range keys {
		if err := reader.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, "绑定环境变量失败", err)
		}
	}

	if options.ExplicitFilePath != "" {
		info, err := os.Stat(options.ExplicitFilePath)
		if err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, fmt.Sprintf("读取配置文件 %s 失败", options.ExplicitFilePath), err)
		}
		if info.IsDir() {
			return nil, common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("配置路径 %s 是目录", options.ExplicitFilePath))
		}
		reader.SetConfigFile(options.ExplicitFilePath)
		if err := reader.ReadInConfig(); err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, fmt.Sprintf("解析配置文件 %s 失败", options.ExplicitFilePath), err)
		}
	}

	var cfg Config
	if err := reader.Unmarshal(&cfg); err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "解码配置失败", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize 修正越界或缺失的值
func (c *Config) normalize() {
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = DefaultGitHubAPIURL
	}
	if !strings.HasSuffix(c.GitHubAPIURL, "/") {
		c.GitHubAPIURL += "/"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.WebhookTimeout <= 0 {
		c.WebhookTimeout = DefaultWebhookTimeout
	}
	c.TraversalConcurrency = ClampConcurrency(c.TraversalConcurrency)
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ClampConcurrency 把并发数限制在 [1, 8]，非正数回退到默认值
func ClampConcurrency(n int) int {
	switch {
	case n <= 0:
		return DefaultTraversalConcurrency
	case n < MinTraversalConcurrency:
		return MinTraversalConcurrency
	case n > MaxTraversalConcurrency:
		return MaxTraversalConcurrency
	}
	return n
}

// HasToken 是否配置了 GitHub token
func (c *Config) HasToken() bool {
	return strings.TrimSpace(c.GitHubToken) != ""
}

// HistoryEnabled 是否启用历史记录存储
func (c *Config) HistoryEnabled() bool {
	return strings.TrimSpace(c.DatabaseDSN) != ""
}
