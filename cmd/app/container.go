package main

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github-readme-generator/internal/adapter/analyzer"
	"github-readme-generator/internal/adapter/generator"
	"github-readme-generator/internal/adapter/github"
	"github-readme-generator/internal/adapter/repository"
	"github-readme-generator/internal/adapter/webhook"
	"github-readme-generator/internal/common"
	"github-readme-generator/internal/config"
	"github-readme-generator/internal/port"
	"github-readme-generator/internal/service"
	"github-readme-generator/internal/transport/mcp"
)

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	configPath string
	logLevel   string
	output     string
}

// buildContainer 注册全部依赖，构造函数在 Invoke 时才真正执行
func buildContainer(opts *globalOptions) (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() (*config.Config, error) {
			cfg, err := config.Load(config.LoadOptions{ExplicitFilePath: opts.configPath})
			if err != nil {
				return nil, err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			return cfg, nil
		},
		func(cfg *config.Config) (*zap.Logger, error) {
			return common.NewLogger(cfg.LogLevel)
		},
		func(cfg *config.Config, logger *zap.Logger) (port.HostingClient, error) {
			return github.NewClient(cfg, logger)
		},
		func(client port.HostingClient, cfg *config.Config, logger *zap.Logger) port.Analyzer {
			repoAnalyzer := analyzer.NewRepoAnalyzer(client, logger)
			repoAnalyzer.SetMaxGoroutines(cfg.TraversalConcurrency)
			return repoAnalyzer
		},
		func() port.Generator {
			return generator.NewReadmeGenerator()
		},
		func(cfg *config.Config, logger *zap.Logger) port.Notifier {
			return webhook.NewNotifier(cfg.WebhookTimeout, logger)
		},
		newHistoryStore,
		service.NewReadmeService,
		func(cfg *config.Config, svc *service.ReadmeService, logger *zap.Logger) *mcp.Server {
			return mcp.NewServer(mcp.Config{Address: cfg.ListenAddress}, svc, logger)
		},
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// newHistoryStore 未配置 DATABASE_DSN 时返回 nil，服务会跳过历史记录
func newHistoryStore(cfg *config.Config, logger *zap.Logger) (port.HistoryStore, error) {
	if !cfg.HistoryEnabled() {
		logger.Debug("未配置数据库，跳过历史记录")
		return nil, nil
	}
	store, err := repository.NewPostgresRepo(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	logger.Info("🗄️ 历史记录已启用")
	return store, nil
}
