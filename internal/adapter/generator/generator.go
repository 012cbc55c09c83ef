package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github-readme-generator/internal/domain"
)

// toolchain 每种包管理器的安装和运行方式
type toolchain struct {
	prerequisite string
	install      []string
	dev          []string // 存在 dev 脚本时使用
	start        []string // 只有 start 脚本时使用
	run          []string // 不依赖脚本的默认运行方式
	scriptPrefix []string
}

var toolchains = map[domain.PackageManager]toolchain{
	domain.PackageManagerNPM: {
		install:      []string{"npm", "install"},
		dev:          []string{"npm", "run", "dev"},
		start:        []string{"npm", "start"},
		scriptPrefix: []string{"npm", "run"},
	},
	domain.PackageManagerYarn: {
		prerequisite: "Yarn",
		install:      []string{"yarn", "install"},
		dev:          []string{"yarn", "dev"},
		start:        []string{"yarn", "start"},
		scriptPrefix: []string{"yarn"},
	},
	domain.PackageManagerPNPM: {
		prerequisite: "pnpm",
		install:      []string{"pnpm", "install"},
		dev:          []string{"pnpm", "dev"},
		start:        []string{"pnpm", "start"},
		scriptPrefix: []string{"pnpm", "run"},
	},
	domain.PackageManagerPip: {
		prerequisite: "Python 3",
		install:      []string{"pip", "install", "-r", "requirements.txt"},
	},
	domain.PackageManagerCargo: {
		prerequisite: "Rust (cargo)",
		install:      []string{"cargo", "build"},
		run:          []string{"cargo", "run"},
	},
	domain.PackageManagerGo: {
		prerequisite: "Go",
		install:      []string{"go", "mod", "download"},
		run:          []string{"go", "run", "."},
	},
}

// ReadmeGenerator 实现了 port.Generator 接口
type ReadmeGenerator struct {
	nowFunc func() time.Time
}

func NewReadmeGenerator() *ReadmeGenerator {
	return &ReadmeGenerator{nowFunc: time.Now}
}

// Render 生成说明文档
// 除了生成时间外是纯函数：不访问网络，不修改 analysis
func (g *ReadmeGenerator) Render(analysis *domain.Analysis, opts domain.RenderOptions) *domain.Document {
	language := NormalizeLanguage(opts.Language)
	style := NormalizeStyle(opts.Style)
	text := textFor(language)

	data := readmeData{
		Name:          analysis.Name,
		FullName:      analysis.Author + "/" + analysis.Name,
		Description:   strings.TrimSpace(analysis.Description),
		Features:      features(analysis, text),
		TechRows:      techRows(analysis, text),
		Prerequisites: prerequisites(analysis.PackageManager, text),
		InstallLines:  installLines(analysis, text),
		Scripts:       scriptLines(analysis),
		LicenseLine:   text.licenseLine(analysis.License),
		Text:          text,
	}
	if opts.IncludeBadges {
		data.Badges = Badges(analysis.Technologies, analysis.License)
	}
	if opts.IncludeTree && analysis.Structure != nil && len(analysis.Structure.Children) > 0 {
		data.Tree = RenderTree(analysis.Name, analysis.Structure)
	}

	return &domain.Document{
		Content: renderTemplate("readme.md.tmpl", data),
		Metadata: domain.DocumentMetadata{
			GeneratedAt: g.nowFunc(),
			Language:    language,
			Style:       style,
			AIProvider:  opts.AIProvider,
		},
	}
}

func features(analysis *domain.Analysis, text Text) []string {
	var lines []string
	if len(analysis.Technologies) > 0 {
		lines = append(lines, fmt.Sprintf(text.FeatureTech, strings.Join(analysis.Technologies, ", ")))
	}
	lines = append(lines, fmt.Sprintf(text.FeatureProject, capitalize(string(analysis.ProjectType))))
	if analysis.HasTests {
		lines = append(lines, text.FeatureTests)
	}
	if analysis.HasCI {
		lines = append(lines, text.FeatureCI)
	}
	return lines
}

func techRows(analysis *domain.Analysis, text Text) []techRow {
	var rows []techRow
	if len(analysis.Technologies) > 0 {
		cells := make([]string, 0, len(analysis.Technologies))
		for _, tech := range analysis.Technologies {
			cells = append(cells, techCell(tech))
		}
		rows = append(rows, techRow{Label: text.MainTech, Value: strings.Join(cells, " ")})
	}
	rows = append(rows,
		techRow{Label: text.ProjectType, Value: string(analysis.ProjectType)},
		techRow{Label: text.PackageManager, Value: string(analysis.PackageManager)},
	)
	return rows
}

func prerequisites(manager domain.PackageManager, text Text) []string {
	chain, ok := toolchains[manager]
	if !ok {
		return nil
	}
	var out []string
	if manager.IsNode() {
		out = append(out, text.NodePrerequisite)
		if chain.prerequisite == "" {
			out = append(out, string(manager))
		}
	}
	if chain.prerequisite != "" {
		out = append(out, chain.prerequisite)
	}
	return out
}

// installLines 克隆、安装依赖、启动；有 dev 脚本时优先 dev
func installLines(analysis *domain.Analysis, text Text) []string {
	cloneURL := fmt.Sprintf("https://github.com/%s/%s.git", analysis.Author, analysis.Name)
	lines := []string{
		text.CloneComment,
		shellquote.Join("git", "clone", cloneURL),
		shellquote.Join("cd", analysis.Name),
	}

	chain, ok := toolchains[analysis.PackageManager]
	if !ok {
		return lines
	}
	lines = append(lines, "", text.InstallComment, shellquote.Join(chain.install...))

	switch {
	case chain.dev != nil && analysis.Scripts.Has("dev"):
		lines = append(lines, "", text.DevComment, shellquote.Join(chain.dev...))
	case chain.start != nil && analysis.Scripts.Has("start"):
		lines = append(lines, "", text.StartComment, shellquote.Join(chain.start...))
	case chain.run != nil:
		lines = append(lines, "", text.RunComment, shellquote.Join(chain.run...))
	}
	return lines
}

// scriptLines 按 package.json 中的声明顺序列出 scripts
func scriptLines(analysis *domain.Analysis) []scriptLine {
	if len(analysis.Scripts) == 0 {
		return nil
	}
	prefix := []string{"npm", "run"}
	if chain, ok := toolchains[analysis.PackageManager]; ok && chain.scriptPrefix != nil {
		prefix = chain.scriptPrefix
	}
	lines := make([]scriptLine, 0, len(analysis.Scripts))
	for _, script := range analysis.Scripts {
		args := append(append([]string{}, prefix...), script.Name)
		lines = append(lines, scriptLine{
			Command:     shellquote.Join(args...),
			Description: script.Command,
		})
	}
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
