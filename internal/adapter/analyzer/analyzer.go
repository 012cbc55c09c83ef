package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/config"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/port"
)

// RepoAnalyzer 实现了 port.Analyzer 接口
type RepoAnalyzer struct {
	client        port.HostingClient
	logger        *zap.Logger
	maxGoroutines int // 深度遍历时同时在途的请求数上限
	maxRetries    int
	retryDelay    time.Duration
	nowFunc       func() time.Time
}

// NewRepoAnalyzer 创建新的分析器实例
func NewRepoAnalyzer(client port.HostingClient, logger *zap.Logger) *RepoAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepoAnalyzer{
		client:        client,
		logger:        logger,
		maxGoroutines: config.DefaultTraversalConcurrency,
		maxRetries:    2,
		retryDelay:    500 * time.Millisecond,
		nowFunc:       time.Now, // 便于测试注入当前时间
	}
}

// SetMaxGoroutines 设置深度遍历的并发上限，取值限制在 [1, 8]
func (a *RepoAnalyzer) SetMaxGoroutines(max int) {
	if max > 0 {
		a.maxGoroutines = config.ClampConcurrency(max)
	}
}

// Analyze 分析仓库
// 元数据和顶层列表是必需的，任一失败则整体失败；manifest 和子目录失败只降级不报错
func (a *RepoAnalyzer) Analyze(ctx context.Context, repoRef string, deep bool) (*domain.Analysis, error) {
	ref, err := domain.ParseRepoRef(repoRef)
	if err != nil {
		return nil, err
	}

	log := a.logger.With(zap.String("repo", ref.FullName()), zap.Bool("deep", deep))
	log.Info("🔍 开始分析仓库")

	var (
		meta    *domain.RepoMetadata
		entries []domain.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.fetchMandatory(gctx, "仓库元数据", func(ctx context.Context) error {
			var err error
			meta, err = a.client.GetRepository(ctx, ref)
			return err
		})
	})
	g.Go(func() error {
		return a.fetchMandatory(gctx, "顶层目录", func(ctx context.Context) error {
			var err error
			entries, err = a.client.ListDirectory(ctx, ref, "")
			return err
		})
	})
	if err := g.Wait(); err != nil {
		log.Error("❌ 必需数据获取失败", zap.Error(err))
		return nil, err
	}

	var notes []string
	manifest, reason := a.loadManifest(ctx, ref, entries)
	if reason != "" {
		notes = append(notes, reason)
		log.Info("📦 未使用 package.json", zap.String("reason", reason))
	}

	var structure *domain.Node
	if deep {
		structure, err = a.traverse(ctx, ref, entries)
		if err != nil {
			return nil, err
		}
		_, _, unavailable := structure.Stats()
		if unavailable > 0 {
			notes = append(notes, collectUnavailable(structure)...)
			log.Warn("⚠️ 部分子目录不可用", zap.Int("count", unavailable))
		}
	} else {
		structure = domain.FlatTree(entries)
	}

	analysis := a.build(ref, meta, entries, manifest, structure, deep, notes)
	log.Info("✅ 分析完成",
		zap.Strings("technologies", analysis.Technologies),
		zap.String("project_type", string(analysis.ProjectType)))
	return analysis, nil
}

// fetchMandatory 只对临时错误 (5xx、网络、超时) 重试，其他错误立即返回
func (a *RepoAnalyzer) fetchMandatory(ctx context.Context, what string, fetch func(context.Context) error) error {
	err := common.Do(ctx,
		func() error { return fetch(ctx) },
		common.WithMaxRetries(a.maxRetries),
		common.WithInitialDelay(a.retryDelay),
		common.WithRetryIf(common.IsTransient),
	)
	if err == nil {
		return nil
	}
	if common.HasCode(err, common.ErrCodeUpstreamFetch) {
		return err
	}
	return common.WrapError(common.ErrCodeUpstreamFetch, fmt.Sprintf("获取%s失败", what), err)
}

// loadManifest 顶层有 package.json 时才去读取；任何失败都视为没有 manifest，返回原因
func (a *RepoAnalyzer) loadManifest(ctx context.Context, ref domain.RepoRef, entries []domain.Entry) (*domain.Manifest, string) {
	present := false
	for _, entry := range entries {
		if entry.Name == domain.ManifestFileName && entry.Kind == domain.EntryFile {
			present = true
			break
		}
	}
	if !present {
		return nil, fmt.Sprintf("%s: %s not found", common.ErrCodeManifestUnavailable, domain.ManifestFileName)
	}

	content, err := a.client.GetFile(ctx, ref, domain.ManifestFileName)
	if err != nil {
		return nil, fmt.Sprintf("%s: fetch failed: %s", common.ErrCodeManifestUnavailable, unavailableReason(err))
	}
	manifest, err := domain.ParseManifest(content)
	if err != nil {
		return nil, fmt.Sprintf("%s: invalid %s", common.ErrCodeManifestUnavailable, domain.ManifestFileName)
	}
	return manifest, ""
}

// build 组装不可变的分析结果，map 全部复制一份
func (a *RepoAnalyzer) build(
	ref domain.RepoRef,
	meta *domain.RepoMetadata,
	entries []domain.Entry,
	manifest *domain.Manifest,
	structure *domain.Node,
	deep bool,
	notes []string,
) *domain.Analysis {
	analysis := &domain.Analysis{
		Name:            meta.Name,
		FullName:        ref.FullName(),
		URL:             ref.URL(),
		Description:     meta.Description,
		Technologies:    DetectTechnologies(entries, manifest),
		ProjectType:     ClassifyProject(entries, manifest),
		HasTests:        HasTests(entries),
		HasCI:           HasCI(entries),
		PackageManager:  DetectPackageManager(entries, manifest),
		Structure:       structure,
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
		Scripts:         domain.Scripts{},
		License:         meta.License,
		Author:          meta.Owner,
		MainFile:        MainFile(manifest),
		DefaultBranch:   meta.DefaultBranch,
		Stars:           meta.Stars,
		Deep:            deep,
		Notes:           notes,
		AnalyzedAt:      a.nowFunc(),
	}
	if analysis.Name == "" {
		analysis.Name = ref.Name()
	}
	if analysis.Author == "" {
		analysis.Author = ref.Owner()
	}
	if analysis.License == "" {
		analysis.License = domain.DefaultLicense
	}
	if meta.HTMLURL != "" {
		analysis.URL = meta.HTMLURL
	}

	if manifest != nil {
		for name, version := range manifest.Dependencies {
			analysis.Dependencies[name] = version
		}
		for name, version := range manifest.DevDependencies {
			analysis.DevDependencies[name] = version
		}
		analysis.Scripts = append(analysis.Scripts, manifest.Scripts...)
	}
	return analysis
}
