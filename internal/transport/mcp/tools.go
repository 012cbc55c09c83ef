package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/service"
)

// 工具名称
const (
	ToolGenerateDocument        = "generate_document"
	ToolAnalyzeRepository       = "analyze_repository"
	ToolTriggerExternalWorkflow = "trigger_external_workflow"
)

// Service 传输层依赖的三个操作，由 service.ReadmeService 实现
type Service interface {
	GenerateDocument(ctx context.Context, req service.GenerateRequest) domain.Result
	AnalyzeRepository(ctx context.Context, repoRef string, deep bool) domain.Result
	TriggerExternalWorkflow(ctx context.Context, callbackURL, repoRef string, cfg service.WorkflowConfig) domain.Result
}

// Schema JSON Schema 的最小子集，足够描述工具参数
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Default     interface{}        `json:"default,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Tool 对外暴露的工具描述
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema *Schema `json:"inputSchema"`
}

func repoURLSchema() *Schema {
	return &Schema{Type: "string", Description: "GitHub repository URL"}
}

// Tools 返回三个工具的描述，顺序固定
func Tools() []Tool {
	return []Tool{
		{
			Name:        ToolGenerateDocument,
			Description: "Generate a project README document from a GitHub repository",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"repoUrl": repoURLSchema(),
					"language": {
						Type: "string", Description: "Output language", Default: string(domain.LanguageEnglish),
						Enum: []string{string(domain.LanguageTurkish), string(domain.LanguageEnglish), string(domain.LanguageMulti)},
					},
					"style": {
						Type: "string", Description: "Document style", Default: string(domain.StyleModern),
						Enum: []string{string(domain.StyleMinimal), string(domain.StyleModern), string(domain.StyleDetailed)},
					},
					"aiProvider": {
						Type: "string", Description: "Recorded in metadata only", Default: "openai",
						Enum: []string{"openai", "anthropic", "ollama"},
					},
					"includeTree":   {Type: "boolean", Description: "Include project structure tree", Default: true},
					"includeBadges": {Type: "boolean", Description: "Include technology badges", Default: true},
				},
				Required: []string{"repoUrl"},
			},
		},
		{
			Name:        ToolAnalyzeRepository,
			Description: "Analyze a GitHub repository structure and technologies",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"repoUrl": repoURLSchema(),
					"deep":    {Type: "boolean", Description: "Traverse the full directory tree", Default: false},
				},
				Required: []string{"repoUrl"},
			},
		},
		{
			Name:        ToolTriggerExternalWorkflow,
			Description: "Generate a README and deliver it to an external workflow webhook",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"callbackUrl": {Type: "string", Description: "Webhook URL of the external workflow"},
					"repoUrl":     repoURLSchema(),
					"config": {
						Type:        "object",
						Description: "Generation configuration, forwarded to the workflow",
						Properties: map[string]*Schema{
							"language": {Type: "string", Default: string(domain.LanguageEnglish)},
							"style":    {Type: "string", Default: string(domain.StyleModern)},
							"notify":   {Type: "boolean", Default: true},
						},
					},
				},
				Required: []string{"callbackUrl", "repoUrl"},
			},
		},
	}
}

type analyzeArgs struct {
	RepoURL string `json:"repoUrl"`
	Deep    bool   `json:"deep"`
}

type triggerArgs struct {
	CallbackURL string                 `json:"callbackUrl"`
	WebhookURL  string                 `json:"webhookUrl"` // 兼容旧的参数名
	RepoURL     string                 `json:"repoUrl"`
	Config      service.WorkflowConfig `json:"config"`
}

// toolHandler 解码参数并调用服务；只有参数无法解码时返回错误
type toolHandler func(ctx context.Context, svc Service, raw []byte) (domain.Result, error)

var handlers = map[string]toolHandler{
	ToolGenerateDocument: func(ctx context.Context, svc Service, raw []byte) (domain.Result, error) {
		var req service.GenerateRequest
		if err := decodeArgs(raw, &req); err != nil {
			return domain.Result{}, err
		}
		return svc.GenerateDocument(ctx, req), nil
	},
	ToolAnalyzeRepository: func(ctx context.Context, svc Service, raw []byte) (domain.Result, error) {
		var args analyzeArgs
		if err := decodeArgs(raw, &args); err != nil {
			return domain.Result{}, err
		}
		return svc.AnalyzeRepository(ctx, args.RepoURL, args.Deep), nil
	},
	ToolTriggerExternalWorkflow: func(ctx context.Context, svc Service, raw []byte) (domain.Result, error) {
		var args triggerArgs
		if err := decodeArgs(raw, &args); err != nil {
			return domain.Result{}, err
		}
		callback := args.CallbackURL
		if callback == "" {
			callback = args.WebhookURL
		}
		return svc.TriggerExternalWorkflow(ctx, callback, args.RepoURL, args.Config), nil
	},
}

// decodeArgs 空 body 视为空对象
func decodeArgs(raw []byte, target interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return common.WrapError(common.ErrCodeInvalidInput, fmt.Sprintf("参数解析失败: %v", err), err)
	}
	return nil
}
