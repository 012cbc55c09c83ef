package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/config"
	"github-readme-generator/internal/domain"
)

// anonymousHourlyLimit 未认证请求的每小时配额
const anonymousHourlyLimit = 60

// Client 实现了 port.HostingClient 接口
type Client struct {
	client  *github.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient 初始化 GitHub 客户端
// token 为空时匿名访问，限制 60 次/小时，启动时会打印警告
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var httpClient *http.Client
	if cfg.HasToken() {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHubToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		logger.Warn("⚠️ 未配置 GITHUB_TOKEN，使用匿名访问",
			zap.Int("hourly_limit", anonymousHourlyLimit))
	}

	client := github.NewClient(httpClient)
	if cfg.GitHubAPIURL != "" {
		baseURL, err := url.Parse(cfg.GitHubAPIURL)
		if err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, "无效的 GitHub API 地址", err)
		}
		client.BaseURL = baseURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}

	return &Client{client: client, timeout: timeout, logger: logger}, nil
}

// GetRepository 获取仓库元数据
func (c *Client) GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	repo, _, err := c.client.Repositories.Get(ctx, ref.Owner(), ref.Name())
	if err != nil {
		return nil, c.translate(fmt.Sprintf("获取仓库 %s 失败", ref), err)
	}

	license := repo.GetLicense().GetName()
	if license == "" {
		license = domain.DefaultLicense
	}
	owner := repo.GetOwner().GetLogin()
	if owner == "" {
		owner = ref.Owner()
	}
	name := repo.GetName()
	if name == "" {
		name = ref.Name()
	}

	return &domain.RepoMetadata{
		Name:          name,
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		License:       license,
		Owner:         owner,
		DefaultBranch: repo.GetDefaultBranch(),
		HTMLURL:       repo.GetHTMLURL(),
		Stars:         repo.GetStargazersCount(),
	}, nil
}

// ListDirectory 列出一层目录，保持 GitHub 返回的顺序
func (c *Client) ListDirectory(ctx context.Context, ref domain.RepoRef, path string) ([]domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	file, dir, _, err := c.client.Repositories.GetContents(ctx, ref.Owner(), ref.Name(), path, nil)
	if err != nil {
		return nil, c.translate(fmt.Sprintf("列出 %s:/%s 失败", ref, path), err)
	}
	if dir == nil && file != nil {
		return nil, common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("%s 不是目录", path))
	}

	entries := make([]domain.Entry, 0, len(dir))
	for _, item := range dir {
		kind := domain.EntryFile
		if item.GetType() == "dir" {
			kind = domain.EntryDir
		}
		entries = append(entries, domain.Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Kind: kind,
			Size: item.GetSize(),
		})
	}
	return entries, nil
}

// GetFile 读取单个文件，GitHub 返回 base64 编码内容，这里解码后返回
func (c *Client) GetFile(ctx context.Context, ref domain.RepoRef, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	file, _, _, err := c.client.Repositories.GetContents(ctx, ref.Owner(), ref.Name(), path, nil)
	if err != nil {
		return nil, c.translate(fmt.Sprintf("读取 %s:/%s 失败", ref, path), err)
	}
	if file == nil {
		return nil, common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("%s 不是文件", path))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, common.WrapError(common.ErrCodeUpstreamFetch, fmt.Sprintf("解码 %s 失败", path), err)
	}
	return []byte(content), nil
}

// translate 把 go-github 的错误映射到应用错误码
// 速率限制和 4xx 不可重试；5xx、网络错误和超时标记为临时错误
func (c *Client) translate(message string, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr) || errors.As(err, &abuseErr):
		c.logger.Warn("🚦 触发 GitHub 速率限制", zap.String("op", message))
		return common.WrapError(common.ErrCodeUpstreamFetch, message,
			common.WrapError(common.ErrCodeRateLimited, "GitHub API 速率限制", err))
	case errors.As(err, &respErr) && respErr.Response != nil:
		status := respErr.Response.StatusCode
		switch {
		case status == http.StatusTooManyRequests:
			return common.WrapError(common.ErrCodeUpstreamFetch, message,
				common.WrapError(common.ErrCodeRateLimited, "GitHub API 速率限制", err))
		case status >= http.StatusInternalServerError:
			return common.WrapError(common.ErrCodeUpstreamFetch, message,
				common.WrapError(common.ErrCodeUpstreamUnavailable, fmt.Sprintf("GitHub 返回 %d", status), err))
		case status == http.StatusNotFound:
			return common.WrapError(common.ErrCodeUpstreamFetch, message,
				common.WrapError(common.ErrCodeNotFound, "资源不存在", err))
		}
		return common.WrapError(common.ErrCodeUpstreamFetch, message, err)
	default:
		return common.WrapError(common.ErrCodeUpstreamFetch, message,
			common.WrapError(common.ErrCodeUpstreamUnavailable, "网络错误或超时", err))
	}
}
