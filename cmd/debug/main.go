package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github-readme-generator/internal/adapter/analyzer"
	"github-readme-generator/internal/adapter/generator"
	"github-readme-generator/internal/adapter/github"
	"github-readme-generator/internal/common"
	"github-readme-generator/internal/config"
	"github-readme-generator/internal/domain"
)

func main() {
	repoURL := flag.String("repo", "https://github.com/facebook/react", "要调试的仓库地址")
	deep := flag.Bool("deep", false, "是否深度遍历")
	language := flag.String("lang", "en", "文档语言")
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	logger, err := common.NewLogger("debug")
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("🔍 调试模式：逐步执行分析流程")

	// 1. 解析仓库地址
	ref, err := domain.ParseRepoRef(*repoURL)
	if err != nil {
		fmt.Printf("❌ 地址解析失败 [%s]: %v\n", common.CodeOf(err), err)
		os.Exit(1)
	}
	fmt.Printf("✅ 仓库: %s\n", ref.FullName())

	client, err := github.NewClient(cfg, logger)
	if err != nil {
		log.Fatalf("❌ GitHub 客户端初始化失败: %v", err)
	}

	// 2. 单独调用每个接口，方便定位是哪一步失败
	meta, err := client.GetRepository(ctx, ref)
	if err != nil {
		fmt.Printf("❌ 获取元数据失败 [%s]: %v\n", common.CodeOf(err), err)
		os.Exit(1)
	}
	fmt.Printf("✅ 元数据: %s ⭐%d license=%q\n", meta.FullName, meta.Stars, meta.License)

	entries, err := client.ListDirectory(ctx, ref, "")
	if err != nil {
		fmt.Printf("❌ 列出顶层目录失败 [%s]: %v\n", common.CodeOf(err), err)
		os.Exit(1)
	}
	fmt.Printf("✅ 顶层共 %d 项\n", len(entries))
	for _, entry := range entries {
		fmt.Printf("   - %-5s %s\n", entry.Kind, entry.Name)
	}

	// 3. 完整分析
	repoAnalyzer := analyzer.NewRepoAnalyzer(client, logger)
	repoAnalyzer.SetMaxGoroutines(cfg.TraversalConcurrency)
	start := time.Now()
	analysis, err := repoAnalyzer.Analyze(ctx, *repoURL, *deep)
	if err != nil {
		fmt.Printf("❌ 分析失败 [%s]: %v\n", common.CodeOf(err), err)
		os.Exit(1)
	}
	files, dirs, unavailable := analysis.Structure.Stats()
	fmt.Printf("✅ 分析完成，耗时 %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   类型=%s 包管理器=%s 测试=%t CI=%t\n",
		analysis.ProjectType, analysis.PackageManager, analysis.HasTests, analysis.HasCI)
	fmt.Printf("   技术栈: %s\n", strings.Join(analysis.Technologies, ", "))
	fmt.Printf("   结构: %d 文件 %d 目录 %d 不可用\n", files, dirs, unavailable)
	for _, note := range analysis.Notes {
		logger.Warn("⚠️ 分析备注", zap.String("note", note))
	}

	// 4. 渲染文档
	document := generator.NewReadmeGenerator().Render(analysis, domain.RenderOptions{
		Language:      domain.Language(*language),
		Style:         domain.StyleModern,
		IncludeBadges: true,
		IncludeTree:   *deep,
	})
	fmt.Println("\n================ [ README ] ================")
	fmt.Println(document.Content)
	fmt.Println("============================================")
}
