package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/port"
)

// GenerateRequest generate_document 的参数，布尔选项为空时默认 true
type GenerateRequest struct {
	RepoRef       string          `json:"repoUrl"`
	Language      domain.Language `json:"language,omitempty"`
	Style         domain.Style    `json:"style,omitempty"`
	AIProvider    string          `json:"aiProvider,omitempty"`
	IncludeTree   *bool           `json:"includeTree,omitempty"`
	IncludeBadges *bool           `json:"includeBadges,omitempty"`
}

// RenderOptions 把请求参数和默认值合并
func (r GenerateRequest) RenderOptions() domain.RenderOptions {
	opts := domain.DefaultRenderOptions()
	if r.Language != "" {
		opts.Language = r.Language
	}
	if r.Style != "" {
		opts.Style = r.Style
	}
	if r.AIProvider != "" {
		opts.AIProvider = r.AIProvider
	}
	if r.IncludeTree != nil {
		opts.IncludeTree = *r.IncludeTree
	}
	if r.IncludeBadges != nil {
		opts.IncludeBadges = *r.IncludeBadges
	}
	return opts
}

// WorkflowConfig trigger_external_workflow 的生成配置，原样转发给外部工作流
type WorkflowConfig struct {
	Language domain.Language `json:"language"`
	Style    domain.Style    `json:"style"`
	Notify   *bool           `json:"notify,omitempty"`
}

func (c WorkflowConfig) withDefaults() WorkflowConfig {
	out := c
	if out.Language == "" {
		out.Language = domain.LanguageEnglish
	}
	if out.Style == "" {
		out.Style = domain.StyleModern
	}
	if out.Notify == nil {
		notify := true
		out.Notify = &notify
	}
	return out
}

// workflowPayload webhook 中 data 字段的内容
type workflowPayload struct {
	RepoURL  string           `json:"repoUrl"`
	Analysis *domain.Analysis `json:"analysis"`
	Document *domain.Document `json:"document"`
	Config   WorkflowConfig   `json:"config"`
}

// ReadmeService 对外的三个操作，每个操作都返回成功/失败信封，不向外抛错误
type ReadmeService struct {
	analyzer  port.Analyzer
	generator port.Generator
	notifier  port.Notifier
	history   port.HistoryStore // 可以为 nil
	logger    *zap.Logger
	nowFunc   func() time.Time
}

// NewReadmeService 创建服务，history 为 nil 时不记录历史
func NewReadmeService(
	analyzer port.Analyzer,
	generator port.Generator,
	notifier port.Notifier,
	history port.HistoryStore,
	logger *zap.Logger,
) *ReadmeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadmeService{
		analyzer:  analyzer,
		generator: generator,
		notifier:  notifier,
		history:   history,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// GenerateDocument 分析仓库并生成文档；includeTree 为 true 时做深度分析
func (s *ReadmeService) GenerateDocument(ctx context.Context, req GenerateRequest) domain.Result {
	opts := req.RenderOptions()

	analysis, err := s.analyzer.Analyze(ctx, req.RepoRef, opts.IncludeTree)
	if err != nil {
		return s.failure("generate_document", err, nil, nil)
	}

	document := s.generator.Render(analysis, opts)
	s.record(ctx, analysis, document)

	return domain.Result{
		Success:   true,
		Analysis:  analysis,
		Document:  document,
		Timestamp: s.nowFunc(),
	}
}

// AnalyzeRepository 只做分析
func (s *ReadmeService) AnalyzeRepository(ctx context.Context, repoRef string, deep bool) domain.Result {
	analysis, err := s.analyzer.Analyze(ctx, repoRef, deep)
	if err != nil {
		return s.failure("analyze_repository", err, nil, nil)
	}
	return domain.Result{
		Success:   true,
		Analysis:  analysis,
		Timestamp: s.nowFunc(),
	}
}

// TriggerExternalWorkflow 深度分析、生成文档并投递给外部工作流
// 投递失败时结果为失败，但仍然带上已经算好的分析结果和文档
func (s *ReadmeService) TriggerExternalWorkflow(ctx context.Context, callbackURL, repoRef string, cfg WorkflowConfig) domain.Result {
	if strings.TrimSpace(callbackURL) == "" {
		return s.failure("trigger_external_workflow", common.NewError(common.ErrCodeInvalidInput, "回调地址不能为空"), nil, nil)
	}
	cfg = cfg.withDefaults()

	analysis, err := s.analyzer.Analyze(ctx, repoRef, true)
	if err != nil {
		return s.failure("trigger_external_workflow", err, nil, nil)
	}

	document := s.generator.Render(analysis, domain.RenderOptions{
		Language:      cfg.Language,
		Style:         cfg.Style,
		IncludeBadges: true,
		IncludeTree:   true,
	})
	s.record(ctx, analysis, document)

	delivery, err := s.notifier.Notify(ctx, callbackURL, workflowPayload{
		RepoURL:  repoRef,
		Analysis: analysis,
		Document: document,
		Config:   cfg,
	})
	if err != nil {
		result := s.failure("trigger_external_workflow", err, analysis, document)
		result.Delivery = delivery
		return result
	}

	return domain.Result{
		Success:   true,
		Analysis:  analysis,
		Document:  document,
		Delivery:  delivery,
		Timestamp: s.nowFunc(),
	}
}

// History 查询某个仓库的历史文档，需要配置数据库
func (s *ReadmeService) History(ctx context.Context, repoRef string, limit int) ([]*domain.HistoryRecord, error) {
	if s.history == nil {
		return nil, common.NewError(common.ErrCodeNotFound, "未启用历史记录，请配置 DATABASE_DSN")
	}
	ref, err := domain.ParseRepoRef(repoRef)
	if err != nil {
		return nil, err
	}
	return s.history.ListByRepo(ctx, ref.FullName(), limit)
}

// record 写入历史记录，失败只记日志
func (s *ReadmeService) record(ctx context.Context, analysis *domain.Analysis, document *domain.Document) {
	if s.history == nil {
		return
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		s.logger.Warn("⚠️ 序列化分析结果失败", zap.Error(err))
		return
	}
	record := &domain.HistoryRecord{
		RepoFullName: analysis.FullName,
		Language:     string(document.Metadata.Language),
		Style:        string(document.Metadata.Style),
		AnalysisJSON: string(analysisJSON),
		Content:      document.Content,
		GeneratedAt:  document.Metadata.GeneratedAt,
	}
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Warn("⚠️ 保存历史记录失败", zap.String("repo", analysis.FullName), zap.Error(err))
	}
}

func (s *ReadmeService) failure(op string, err error, analysis *domain.Analysis, document *domain.Document) domain.Result {
	code := common.CodeOf(err)
	if code == "" {
		code = common.ErrCodeInternal
	}
	s.logger.Error("❌ 操作失败", zap.String("op", op), zap.String("code", code), zap.Error(err))
	return domain.Result{
		Success:   false,
		Error:     err.Error(),
		ErrorCode: code,
		Analysis:  analysis,
		Document:  document,
		Timestamp: s.nowFunc(),
	}
}
