package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/service"
	"github-readme-generator/internal/transport/mcp"
)

// errOperationFailed 结果信封已经输出，只需要让进程以非零状态退出
var errOperationFailed = errors.New("operation failed")

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "readme-gen",
		Short: "Generate README documents from GitHub repositories",
		Long: `Analyze a public GitHub repository (metadata, top-level listing, package.json)
and render a README document from the detected facts.

Configuration comes from environment variables (GITHUB_TOKEN, DATABASE_DSN, ...)
or an optional config file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(opts.output)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "配置文件路径 (yaml/toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "输出格式: text, json, yaml")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newGenerateCommand(opts),
		newTriggerCommand(opts),
		newServeCommand(opts),
		newHistoryCommand(opts),
	)
	return root
}

// invoke 构建容器并取出 ReadmeService
func invoke(opts *globalOptions, fn interface{}) error {
	container, err := buildContainer(opts)
	if err != nil {
		return err
	}
	return dig.RootCause(container.Invoke(fn))
}

func finish(cmd *cobra.Command, opts *globalOptions, result domain.Result) error {
	if err := writeResult(cmd.OutOrStdout(), opts.output, result); err != nil {
		return err
	}
	if !result.Success {
		return errOperationFailed
	}
	return nil
}

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "analyze <repo-url>",
		Short: "Analyze a repository and print the detected facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(svc *service.ReadmeService) error {
				return finish(cmd, opts, svc.AnalyzeRepository(cmd.Context(), args[0], deep))
			})
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "递归遍历整个目录树")
	return cmd
}

func newGenerateCommand(opts *globalOptions) *cobra.Command {
	var (
		language      string
		style         string
		aiProvider    string
		includeTree   bool
		includeBadges bool
		copyResult    bool
	)
	cmd := &cobra.Command{
		Use:   "generate <repo-url>",
		Short: "Generate a README document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.GenerateRequest{
				RepoRef:       args[0],
				Language:      domain.Language(language),
				Style:         domain.Style(style),
				AIProvider:    aiProvider,
				IncludeTree:   &includeTree,
				IncludeBadges: &includeBadges,
			}
			return invoke(opts, func(svc *service.ReadmeService, logger *zap.Logger) error {
				result := svc.GenerateDocument(cmd.Context(), req)
				if copyResult && result.Success {
					if err := copyToClipboard(result.Document.Content); err != nil {
						logger.Warn("⚠️ 复制到剪贴板失败", zap.Error(err))
					} else {
						logger.Info("📋 文档已复制到剪贴板")
					}
				}
				return finish(cmd, opts, result)
			})
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", string(domain.LanguageEnglish), "文档语言: en, tr, multi")
	cmd.Flags().StringVarP(&style, "style", "s", string(domain.StyleModern), "文档风格: minimal, modern, detailed")
	cmd.Flags().StringVar(&aiProvider, "ai-provider", "openai", "仅记录在元数据中")
	cmd.Flags().BoolVar(&includeTree, "tree", true, "包含项目结构树 (会进行深度分析)")
	cmd.Flags().BoolVar(&includeBadges, "badges", true, "包含技术徽章")
	cmd.Flags().BoolVar(&copyResult, "copy", false, "把生成的文档复制到剪贴板")
	return cmd
}

func newTriggerCommand(opts *globalOptions) *cobra.Command {
	var (
		language string
		style    string
		notify   bool
	)
	cmd := &cobra.Command{
		Use:   "trigger <callback-url> <repo-url>",
		Short: "Generate a README and deliver it to an external workflow webhook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := service.WorkflowConfig{
				Language: domain.Language(language),
				Style:    domain.Style(style),
				Notify:   &notify,
			}
			return invoke(opts, func(svc *service.ReadmeService) error {
				return finish(cmd, opts, svc.TriggerExternalWorkflow(cmd.Context(), args[0], args[1], cfg))
			})
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", string(domain.LanguageEnglish), "文档语言")
	cmd.Flags().StringVarP(&style, "style", "s", string(domain.StyleModern), "文档风格")
	cmd.Flags().BoolVar(&notify, "notify", true, "原样转发给工作流的 notify 字段")
	return cmd
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose the tools over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(server *mcp.Server) error {
				return server.Run(cmd.Context(), func(address string) {
					fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("🔌 listening on http://"+address+"/tools"))
				})
			})
		},
	}
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <repo-url>",
		Short: "List previously generated documents (requires DATABASE_DSN)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(svc *service.ReadmeService) error {
				records, err := svc.History(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return writeHistory(cmd.OutOrStdout(), opts.output, records)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多返回的记录数 (上限 100)")
	return cmd
}
